// Package fleet describes the machines available to a benchmark and the settings
// required to reach them. machines are grouped by region, the region order is the
// order hosts are handed out in.
package fleet

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"

	"github.com/james-lawrence/rbcbench"
	"github.com/james-lawrence/rbcbench/internal/x/envx"
)

// Repository the source repository checked out on every machine.
type Repository struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Branch string `yaml:"branch"`
}

// Bundles artifacts staged on every machine.
type Bundles struct {
	Keys     string `yaml:"keys"`     // shared test keys tarball.
	KeysDir  string `yaml:"keys_dir"` // directory packed into the keys tarball when it is missing.
	Testdata string `yaml:"testdata"` // message vectors consumed by the syncer.
	Staged   string `yaml:"staged"`   // pre-staged tarball extracted at boot.
}

// EC2Settings discover the fleet from running ec2 instances.
type EC2Settings struct {
	Regions []string `yaml:"regions"`
	Tag     string   `yaml:"tag"`     // value of the Name tag of the testbed instances.
	Private bool     `yaml:"private"` // use private addresses instead of public ones.
}

// Settings of the testbed.
type Settings struct {
	User           string      `yaml:"user"`
	KeyPath        string      `yaml:"key_path"`
	SSHPort        int         `yaml:"ssh_port"`
	Repository     Repository  `yaml:"repository"`
	Toolchain      string      `yaml:"toolchain"`
	BasePort       int         `yaml:"base_port"`
	ClientBasePort int         `yaml:"client_base_port"`
	ClientRunPort  int         `yaml:"client_run_port"`
	NodeCrate      string      `yaml:"node_crate"`
	LocalBinaries  string      `yaml:"local_binaries"`
	LocalCompile   bool        `yaml:"local_compile"`
	Environ        string      `yaml:"environ"`
	Bundles        Bundles     `yaml:"bundles"`
	Hosts          Hosts       `yaml:"hosts"`
	EC2            EC2Settings `yaml:"ec2"`
}

// BinaryPath the directory holding the release binaries, relative to the repository
// parent directory.
func (t Settings) BinaryPath() string {
	return filepath.Join(t.Repository.Name, "target", "release")
}

// Validate the settings.
func (t Settings) Validate() error {
	switch {
	case t.User == "":
		return rbcbench.Configuration(errors.New("ssh user is required"))
	case t.SSHPort <= 0:
		return rbcbench.Configuration(errors.Errorf("invalid ssh port: %d", t.SSHPort))
	case t.Repository.Name == "" || t.Repository.URL == "" || t.Repository.Branch == "":
		return rbcbench.Configuration(errors.New("repository requires a name, url and branch"))
	case t.BasePort <= 0 || t.ClientBasePort <= 0 || t.ClientRunPort <= 0:
		return rbcbench.Configuration(errors.Errorf("invalid ports: %d %d %d", t.BasePort, t.ClientBasePort, t.ClientRunPort))
	case t.Bundles.Keys == "" || t.Bundles.Testdata == "" || t.Bundles.Staged == "":
		return rbcbench.Configuration(errors.New("bundles require keys, testdata and staged archives"))
	}

	return nil
}

// SettingsOption modifies the settings.
type SettingsOption func(*Settings)

// SettingsOptionKeyPath set the private key used for ssh.
func SettingsOptionKeyPath(path string) SettingsOption {
	return func(s *Settings) {
		if path == "" {
			return
		}
		s.KeyPath = path
	}
}

// SettingsOptionHosts replace the statically configured hosts.
func SettingsOptionHosts(h Hosts) SettingsOption {
	return func(s *Settings) {
		s.Hosts = h
	}
}

// NewSettings default settings.
func NewSettings(options ...SettingsOption) Settings {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Println("unable to determine home directory", err)
	}

	s := Settings{
		User:    "ec2-user",
		KeyPath: filepath.Join(home, ".ssh", "aws"),
		SSHPort: 22,
		Repository: Repository{
			Name:   "reliable-broadcast-protocols",
			Branch: "main",
		},
		Toolchain:      "1.83.0",
		BasePort:       8500,
		ClientBasePort: 7000,
		ClientRunPort:  9000,
		NodeCrate:      filepath.Join("..", "node"),
		LocalBinaries:  filepath.Join("..", "target", "release"),
		LocalCompile:   true,
		Bundles: Bundles{
			Keys:     "tkeys.tar.gz",
			KeysDir:  "tkeys",
			Testdata: "testdata.txt",
			Staged:   "data.tar.gz",
		},
	}

	for _, opt := range options {
		opt(&s)
	}

	return s
}

// LoadSettings from the given path, a missing file results in the default settings.
// the settings are not validated, local runs only need a subset of them.
func LoadSettings(path string, options ...SettingsOption) (s Settings, err error) {
	s = NewSettings()

	if err = rbcbench.ExpandAndDecodeFile(path, &s); err != nil {
		return s, rbcbench.Configuration(err)
	}

	s.SSHPort = envx.Int(s.SSHPort, rbcbench.EnvSSHPort)

	for _, opt := range options {
		opt(&s)
	}

	if envx.Boolean(false, rbcbench.EnvLogsConfiguration) {
		log.Printf("settings %s\n%s\n", path, spew.Sdump(s))
	}

	return s, nil
}

// Provider of the hosts within the testbed. providers are read only, they never
// create or destroy machines.
type Provider interface {
	Hosts(ctx context.Context) (Hosts, error)
}

// NewProvider selects the host source for the settings, ec2 discovery when regions are
// configured, the static host list otherwise.
func NewProvider(s Settings) Provider {
	if len(s.EC2.Regions) > 0 {
		return EC2{Regions: s.EC2.Regions, Tag: s.EC2.Tag, Private: s.EC2.Private}
	}

	return Static(s.Hosts)
}
