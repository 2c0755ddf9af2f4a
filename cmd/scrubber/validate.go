package main

import (
	"github.com/spf13/cobra"

	"scrubber/internal/formatter"
	"scrubber/internal/validator"
)

// resultFiles are the optional destinations for a validated batch.
type resultFiles struct {
	output  string
	rejects string
	report  string
}

func (f *resultFiles) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", stdio, "file for valid records; - for stdout")
	cmd.Flags().StringVar(&f.rejects, "rejects", "", "JSON Lines file for rejected records with reasons")
	cmd.Flags().StringVar(&f.report, "report", "", "markdown summary of the batch")
}

func newRecordValidator(g *globalOptions) *validator.RecordValidator {
	cfg := g.cfg.Validation
	cfg.FieldAliases = g.cfg.FieldAliases()

	return validator.NewRecordValidator(cfg,
		validator.WithWorkers(g.cfg.Advanced.Workers),
		validator.WithLogger(g.log))
}

func newValidateCommand(g *globalOptions) *cobra.Command {
	var (
		input string
		files resultFiles
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Split records into valid and rejected",
		Long: `Checks every record for required fields, an http(s) URL and minimum
content length. Valid records go to --output; rejected ones, with every
reason they failed, go to --rejects.

Example:
  scrubber validate -i cleaned.jsonl -o valid.jsonl --rejects rejects.jsonl`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := readRecords(input, cmd.InOrStdin())
			if err != nil {
				return err
			}

			result, err := newRecordValidator(g).ValidateBatch(cmd.Context(), records)
			if err != nil {
				return err
			}

			if _, err := writeResults(g, cmd, result, files); err != nil {
				return err
			}

			g.log.Info("Validated records",
				"records", result.Stats.TotalRecords,
				"valid", result.Stats.ValidRecords,
				"invalid", result.Stats.InvalidRecords)

			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", stdio, "input file (JSON array, object or JSON Lines); - for stdin")
	files.register(cmd)

	return cmd
}

// writeResults writes valid records, rejects and the report, and returns the
// encoded valid output.
func writeResults(g *globalOptions, cmd *cobra.Command, result *validator.BatchResult, files resultFiles) ([]byte, error) {
	data, err := encodeOutput(result.Valid, g.cfg.Output)
	if err != nil {
		return nil, err
	}

	if err := writeOutput(files.output, data, cmd.OutOrStdout()); err != nil {
		return nil, err
	}

	if files.rejects != "" {
		rejects, err := encodeRejects(result.Invalid)
		if err != nil {
			return nil, err
		}

		if err := writeOutput(files.rejects, rejects, cmd.OutOrStdout()); err != nil {
			return nil, err
		}
	}

	if files.report != "" {
		opts := formatter.DefaultReportOptions()
		opts.Aliases = g.cfg.FieldAliases()

		report := formatter.FormatReport(result, opts)
		if err := writeOutput(files.report, []byte(report), cmd.OutOrStdout()); err != nil {
			return nil, err
		}
	}

	return data, nil
}
