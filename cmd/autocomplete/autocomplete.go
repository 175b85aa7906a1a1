// Package autocomplete shell completion predictors.
package autocomplete

import (
	"context"
	"log"
	"strings"

	"github.com/posener/complete"

	"github.com/james-lawrence/rbcbench"
	"github.com/james-lawrence/rbcbench/fleet"
	"github.com/james-lawrence/rbcbench/internal/x/envx"
)

// Hosts predicts the statically configured hosts of the fleet settings.
func Hosts(args complete.Args) (results []string) {
	var (
		err   error
		s     fleet.Settings
		hosts fleet.Hosts
		path  = envx.String(rbcbench.DefaultSettingsFile, rbcbench.EnvSettings)
	)

	if s, err = fleet.LoadSettings(path); err != nil {
		log.Println("unable to load settings", err)
		return nil
	}

	if hosts, err = fleet.Static(s.Hosts).Hosts(context.Background()); err != nil {
		return nil
	}

	for _, h := range hosts.Flatten() {
		if strings.HasPrefix(h, args.Last) {
			results = append(results, h)
		}
	}

	return results
}
