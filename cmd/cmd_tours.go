package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/manzanit0/tourplanner/pkg/files"
)

var toursCmd = &cobra.Command{
	Use:   "tours",
	Short: "Export, import and report on tours",
}

var exportOutput string

var toursExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every tour with its logs as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		var b bytes.Buffer
		if err := a.files.Export(cmd.Context(), &b); err != nil {
			return err
		}

		return writeOutput(exportOutput, b.Bytes())
	},
}

var toursImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Create tours and logs from an export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer f.Close()

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		var opts []files.ImportOption
		if isatty.IsTerminal(os.Stderr.Fd()) {
			var bar *progressbar.ProgressBar
			opts = append(opts, files.WithProgress(func(done, total int) {
				if bar == nil {
					bar = progressbar.NewOptions(total,
						progressbar.OptionSetDescription("Importing tours"),
						progressbar.OptionSetWriter(os.Stderr),
						progressbar.OptionShowCount(),
						progressbar.OptionClearOnFinish(),
					)
				}
				_ = bar.Set(done)
			}))
		}

		res, err := a.files.Import(cmd.Context(), f, opts...)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "imported %d tours and %d logs\n", res.Tours, res.Logs)
		return nil
	},
}

var reportOptions struct {
	tourID string
	output string
}

var toursReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the summary report, or a single tour's with --tour",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		var report string
		output := reportOptions.output

		if reportOptions.tourID != "" {
			id, err := strconv.ParseInt(reportOptions.tourID, 10, 64)
			if err != nil {
				return fmt.Errorf("parse tour id: %w", err)
			}

			if report, err = a.files.TourReport(cmd.Context(), id); err != nil {
				return err
			}

			if output == "" {
				output = files.TourReportFilename(id)
			}
		} else {
			if report, err = a.files.SummaryReport(cmd.Context()); err != nil {
				return err
			}

			if output == "" {
				output = files.SummaryFilename
			}
		}

		return writeOutput(output, []byte(report))
	},
}

// writeOutput writes b to path, or to stdout when path is "-".
func writeOutput(path string, b []byte) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if path != "-" {
		slog.Info("file written", "path", path, "bytes", len(b))
	}

	return nil
}

func init() {
	toursExportCmd.Flags().StringVarP(&exportOutput, "output", "o", files.ExportFilename, `output file, "-" for stdout`)
	toursReportCmd.Flags().StringVar(&reportOptions.tourID, "tour", "", "tour id to report on")
	toursReportCmd.Flags().StringVarP(&reportOptions.output, "output", "o", "", `output file, "-" for stdout (default tour-<id>.md or summary.md)`)

	toursCmd.AddCommand(toursExportCmd, toursImportCmd, toursReportCmd)
	rootCmd.AddCommand(toursCmd)
}
