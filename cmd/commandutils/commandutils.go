// Package commandutils provides common utility functions for CLI interfaces.
package commandutils

import (
	"log"
	"os"
	"strconv"

	"github.com/james-lawrence/rbcbench"
	"github.com/james-lawrence/rbcbench/internal/x/envx"
	"github.com/james-lawrence/rbcbench/internal/x/errorsx"
)

// LogEnv configures logging based on the verbosity counter.
// 0: errors only, 1: verbose logging, 2+: verbose logging and configuration dumps.
func LogEnv(verbosity int) {
	log.SetFlags(log.Flags() | log.Lshortfile)

	if verbosity >= 1 {
		errorsx.MaybeLog(os.Setenv(rbcbench.EnvLogsVerbose, strconv.FormatBool(true)))
	}

	if verbosity >= 2 {
		errorsx.MaybeLog(os.Setenv(rbcbench.EnvLogsConfiguration, strconv.FormatBool(true)))
	}
}

// LogCause logs the error, with its stack when verbose logging is enabled and the
// error is not user friendly.
func LogCause(err error) error {
	if err == nil {
		return nil
	}

	if errorsx.IsUserFriendly(err) {
		log.Println(err)
		return err
	}

	if envx.Boolean(false, rbcbench.EnvLogsVerbose) {
		log.Printf("%s: %+v\n", rbcbench.KindOf(err), err)
		return err
	}

	log.Println(err)
	return err
}
