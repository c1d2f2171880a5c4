package main

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arloliu/declinecurve/internal/logging"
)

var (
	docPath   string
	logLevel  string
	logFormat string
	logOutput string

	predictFrom float64
	predictTo   float64
	predictStep float64
	predictFill float64

	eurWellLife float64

	cumIndices []float64

	rangeSegment int
	rangeField   string

	exportWell        string
	exportCompression string
	exportOut         string
	exportFrom        float64
	exportTo          float64

	logger    = zerolog.Nop()
	logCloser io.Closer

	rootCmd = &cobra.Command{
		Use:           "declinecalc",
		Short:         "Evaluate decline-curve forecasts",
		Long:          "declinecalc reads a YAML document of domain bounds, forecast segments and history, and evaluates it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, c, err := logging.New(logging.Config{Level: logLevel, Format: logFormat, Output: logOutput})
			if err != nil {
				return err
			}
			logger, logCloser = l, c

			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if logCloser == nil {
				return nil
			}

			return logCloser.Close()
		},
	}

	predictCmd = &cobra.Command{
		Use:   "predict",
		Short: "Print the forecast rate over a range of day indices",
		RunE:  runPredict, // cmd_predict.go
	}
	eurCmd = &cobra.Command{
		Use:   "eur",
		Short: "Print the estimated ultimate recovery",
		RunE:  runEur, // cmd_eur.go
	}
	cumCmd = &cobra.Command{
		Use:   "cum",
		Short: "Print the cumulative volume at day indices",
		RunE:  runCum, // cmd_eur.go
	}
	rangeCmd = &cobra.Command{
		Use:   "range",
		Short: "Print the admissible interval of a segment field",
		RunE:  runRange, // cmd_range.go
	}
	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Write the daily forecast as a compressed series blob",
		RunE:  runExport, // cmd_export.go
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&docPath, "file", "f", "forecast.yaml", "YAML forecast document")
	pf.StringVar(&logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error, disabled)")
	pf.StringVar(&logFormat, "log-format", "console", "Log format (console, json)")
	pf.StringVar(&logOutput, "log-output", "stderr", "Log destination (stderr, stdout or a file path)")

	rootCmd.AddCommand(predictCmd)
	predictCmd.Flags().Float64Var(&predictFrom, "from", 0, "First day index (default: start of the first segment)")
	predictCmd.Flags().Float64Var(&predictTo, "to", 0, "Last day index (default: end of the last segment)")
	predictCmd.Flags().Float64Var(&predictStep, "step", 1, "Days between samples")
	predictCmd.Flags().Float64Var(&predictFill, "fill", 0, "Rate printed outside every segment")

	rootCmd.AddCommand(eurCmd)
	eurCmd.Flags().Float64Var(&eurWellLife, "well-life", 0, "Last produced day index (default: domain well life)")

	rootCmd.AddCommand(cumCmd)
	bindCumFlags()

	rootCmd.AddCommand(rangeCmd)
	rangeCmd.Flags().IntVar(&rangeSegment, "segment", 0, "Zero-based segment position")
	rangeCmd.Flags().StringVar(&rangeField, "field", "q_end", "Field name, e.g. q_end, D_eff, b, end_idx")

	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportWell, "well", "", "Well name hashed into the blob header")
	exportCmd.Flags().StringVar(&exportCompression, "compression", "zstd", "Payload compression (none, zstd, s2, lz4)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file")
	exportCmd.Flags().Float64Var(&exportFrom, "from", 0, "First day index (default: start of the first segment)")
	exportCmd.Flags().Float64Var(&exportTo, "to", 0, "Last day index (default: end of the last segment)")
	_ = exportCmd.MarkFlagRequired("well")
	_ = exportCmd.MarkFlagRequired("out")
}

// bindCumFlags registers the cum flags. Slice flags append on every Set once
// changed, so a reused command needs them bound afresh.
func bindCumFlags() {
	cumIndices = nil
	cumCmd.Flags().Float64SliceVar(&cumIndices, "at", nil, "Day indices to report")
}
