package main

import (
	"os"

	"github.com/pkg/errors"

	"github.com/james-lawrence/rbcbench/cmd/rbcbench/cmdopts"
	"github.com/james-lawrence/rbcbench/latency"
	"github.com/james-lawrence/rbcbench/ux"
)

type cmdSummarize struct {
	Files []string `arg:"" help:"average files written by previous runs" predictor:"file"`
	Table bool     `name:"table" help:"render the combined averages as a table"`
}

func (t cmdSummarize) Run(gctx *cmdopts.Global) (err error) {
	var (
		reports = make([][]latency.Stat, 0, len(t.Files))
	)

	for _, path := range t.Files {
		var (
			stats []latency.Stat
			src   *os.File
		)

		if src, err = os.Open(path); err != nil {
			return errors.WithStack(err)
		}

		stats, err = latency.ParseAverages(src)
		src.Close()
		if err != nil {
			return errors.Wrapf(err, "invalid averages: %s", path)
		}

		reports = append(reports, stats)
	}

	combined := latency.Combine(reports...)

	if !t.Table {
		return latency.WriteAverages(os.Stdout, combined)
	}

	table, err := latency.Table(combined)
	if err != nil {
		return err
	}

	ux.New().Info("%s", table)
	return nil
}
