package main

import (
	"github.com/spf13/cobra"

	"scrubber/internal/normalizer"
)

func newCleanCommand(g *globalOptions) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Normalize text and date fields",
		Long: `Cleans every record of a batch. Text fields lose HTML artifacts, smart
punctuation, control characters and redundant whitespace; date fields are
rewritten to the configured layout. Fields are never dropped or renamed.

Example:
  scrubber clean -i raw.json -o cleaned.jsonl`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := readRecords(input, cmd.InOrStdin())
			if err != nil {
				return err
			}

			cleaner, err := normalizer.NewCleanerFromConfig(g.cfg, g.log, nil)
			if err != nil {
				return err
			}

			cleaned, err := cleaner.CleanBatch(cmd.Context(), records)
			if err != nil {
				return err
			}

			data, err := encodeOutput(cleaned, g.cfg.Output)
			if err != nil {
				return err
			}

			if err := writeOutput(output, data, cmd.OutOrStdout()); err != nil {
				return err
			}

			g.log.Info("Cleaned records", "records", len(cleaned), "output", output)

			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", stdio, "input file (JSON array, object or JSON Lines); - for stdin")
	cmd.Flags().StringVarP(&output, "output", "o", stdio, "output file; - for stdout")

	return cmd
}
