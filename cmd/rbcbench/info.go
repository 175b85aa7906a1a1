package main

import (
	"strings"

	"github.com/pterm/pterm"

	"github.com/james-lawrence/rbcbench"
	"github.com/james-lawrence/rbcbench/cmd/rbcbench/cmdopts"
	"github.com/james-lawrence/rbcbench/fleet"
	"github.com/james-lawrence/rbcbench/topology"
	"github.com/james-lawrence/rbcbench/ux"
)

type cmdInfo struct {
	FleetOptions
	Snapshot string `name:"snapshot" help:"write the discovered hosts into a yaml file usable as a static host list" placeholder:"PATH"`
}

func (t cmdInfo) Run(gctx *cmdopts.Global) (err error) {
	var (
		s     fleet.Settings
		hosts fleet.Hosts
		out   string
		p     = ux.New()
	)

	if s, err = t.settings(); err != nil {
		return err
	}

	if hosts, err = fleet.NewProvider(s).Hosts(gctx.Context); err != nil {
		return err
	}

	data := pterm.TableData{{"Region", "Address"}}
	for _, r := range hosts {
		for _, a := range r.Addresses {
			data = append(data, []string{r.Name, a})
		}
	}

	if out, err = pterm.DefaultTable.WithHasHeader().WithData(data).Srender(); err != nil {
		return err
	}

	p.Heading("%d host(s) across %d region(s): %s", hosts.Total(), len(hosts), strings.Join(hosts.Regions(), ", "))
	p.Info("%s", out)

	if s.Repository.URL != "" {
		p.Info("deploying %s (%s)", s.Repository.URL, s.Repository.Branch)
	}

	if params, perr := rbcbench.LoadParameters(t.Parameters); perr == nil {
		topo := topology.Select(topology.PolicyFromCollocate(params.Bench.Collocate), params.Bench.MaxNodes(), params.Bench.Workers, hosts)
		p.Info("selection for %d node(s): %s", params.Bench.MaxNodes(), topo)
	}

	if t.Snapshot == "" {
		return nil
	}

	return fleet.File{Path: t.Snapshot}.Snapshot(hosts)
}
