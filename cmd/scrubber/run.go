package main

import (
	"github.com/spf13/cobra"

	"scrubber/internal/normalizer"
	"scrubber/pkg/metadata"
)

func newRunCommand(g *globalOptions) *cobra.Command {
	var (
		input    string
		manifest string
		files    resultFiles
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Clean then validate a batch",
		Long: `Runs the full pipeline: records are cleaned, the cleaned records are
validated, and valid records are written to --output. With --manifest a
signed manifest records the run ID, counts and the hash of the output.

Example:
  scrubber run -i raw.json -o valid.jsonl --rejects rejects.jsonl \
    --report report.md --manifest manifest.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := readRecords(input, cmd.InOrStdin())
			if err != nil {
				return err
			}

			cleaner, err := normalizer.NewCleanerFromConfig(g.cfg, g.log, nil)
			if err != nil {
				return err
			}

			p := normalizer.NewProcessor(cleaner, newRecordValidator(g), g.log)

			result, err := p.Process(cmd.Context(), records)
			if err != nil {
				return err
			}

			data, err := writeResults(g, cmd, result.Validation, files)
			if err != nil {
				return err
			}

			if manifest == "" {
				return nil
			}

			stats := result.Validation.Stats

			m := metadata.New(version)
			m.Input = input
			m.Output = files.output
			m.SetCounts(stats.TotalRecords, stats.ValidRecords, stats.InvalidRecords)
			m.Sign(data)

			if err := m.Save(manifest); err != nil {
				return err
			}

			g.log.Info("Wrote manifest", "path", manifest, "run_id", m.RunID)

			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", stdio, "input file (JSON array, object or JSON Lines); - for stdin")
	cmd.Flags().StringVar(&manifest, "manifest", "", "write a signed run manifest (YAML) to this file")
	files.register(cmd)

	return cmd
}
