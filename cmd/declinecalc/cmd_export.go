package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arloliu/declinecurve/series"
)

func runExport(cmd *cobra.Command, args []string) error {
	c, err := series.ParseCompression(exportCompression)
	if err != nil {
		return err
	}
	w, err := loadDocument(docPath)
	if err != nil {
		return err
	}

	from, to := w.span(exportFrom, exportTo)
	days, err := steps(from, to, 1)
	if err != nil {
		return err
	}

	blob, err := series.Encode(series.New(exportWell, days, w.f.Predict(days, w.segments, 0)), c)
	if err != nil {
		return err
	}
	if err := os.WriteFile(exportOut, blob, 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("write series: %w", err)
	}

	logger.Info().
		Str("well", exportWell).
		Stringer("compression", c).
		Int("days", len(days)).
		Int("bytes", len(blob)).
		Msg("series exported")
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d days in %d bytes to %s\n", len(days), len(blob), exportOut)

	return nil
}
