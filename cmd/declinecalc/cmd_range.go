package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/declinecurve/segment"
)

func runRange(cmd *cobra.Command, args []string) error {
	w, err := loadDocument(docPath)
	if err != nil {
		return err
	}
	if rangeSegment < 0 || rangeSegment >= len(w.segments) {
		return fmt.Errorf("segment %d out of [0, %d)", rangeSegment, len(w.segments))
	}

	seg := w.segments[rangeSegment]
	rg, err := w.f.Engine().GetFormCalcRange(seg, segment.Field(rangeField))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s [%.6g, %.6g]\n", seg.Kind, rangeField, rg.Min, rg.Max)

	return nil
}
