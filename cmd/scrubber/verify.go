package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scrubber/internal/models"
	"scrubber/pkg/metadata"
)

func newVerifyCommand(g *globalOptions) *cobra.Command {
	var manifest, input string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check an output file against its run manifest",
		Long: `Recomputes the hash of a pipeline output file and compares it, and its
record count, with the manifest written by "scrubber run".

Example:
  scrubber verify --manifest manifest.yaml -i valid.jsonl`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := metadata.Load(manifest)
			if err != nil {
				return err
			}

			if input == "" {
				input = m.Output
			}

			if input == "" || input == stdio {
				return fmt.Errorf("manifest %s does not name an output file; pass -i", manifest)
			}

			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", input, err)
			}

			if err := m.Verify(data); err != nil {
				return err
			}

			records, err := models.DecodeRecords(data)
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", input, err)
			}

			if err := m.VerifyCount(len(records)); err != nil {
				return err
			}

			g.log.Debug("Verified output", "run_id", m.RunID, "path", input)
			fmt.Fprintf(cmd.OutOrStdout(), "OK %s: %d records match run %s\n", input, len(records), m.RunID)

			return nil
		},
	}

	cmd.Flags().StringVar(&manifest, "manifest", "", "manifest written by scrubber run (required)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "output file to check; defaults to the manifest's output")

	if err := cmd.MarkFlagRequired("manifest"); err != nil {
		panic(err)
	}

	return cmd
}
