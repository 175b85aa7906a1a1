package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/logrusorgru/aurora"
	"github.com/mattn/go-isatty"

	"github.com/james-lawrence/rbcbench/cmd/rbcbench/cmdopts"
)

type cmdVersion struct{}

func (t cmdVersion) Run(gctx *cmdopts.Global) (err error) {
	var (
		ok    bool
		info  *debug.BuildInfo
		ts    time.Time
		id    string
		dirty bool
	)

	if info, ok = debug.ReadBuildInfo(); !ok {
		return errors.New("unable to detect build information")
	}

	for _, v := range info.Settings {
		switch v.Key {
		case "vcs.modified":
			if dirty, err = strconv.ParseBool(v.Value); err != nil {
				return err
			}
		case "vcs.revision":
			id = v.Value
		case "vcs.time":
			if ts, err = time.Parse(time.RFC3339, v.Value); err != nil {
				return err
			}
		}
	}

	if _, err = fmt.Println(info.Main.Path, info.GoVersion, ts.Format("2006-01-02"), id); err != nil {
		return err
	}

	if dirty {
		au := aurora.NewAurora(isatty.IsTerminal(os.Stdout.Fd()))
		_, err = fmt.Println(au.Yellow("modified build, results may not be reproducible"))
	}

	return err
}
