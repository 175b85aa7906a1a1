package fleet_test

import (
	"context"
	"os"
	"path/filepath"

	"github.com/james-lawrence/rbcbench"
	. "github.com/james-lawrence/rbcbench/fleet"
	"github.com/james-lawrence/rbcbench/internal/x/testingx"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Hosts", func() {
	hosts := Hosts{
		{Name: "us-east-1", Addresses: []string{"10.0.0.1", "10.0.0.2"}},
		{Name: "eu-west-1", Addresses: []string{"10.1.0.1"}},
	}

	It("should flatten region by region", func() {
		Expect(hosts.Flatten()).To(Equal([]string{"10.0.0.1", "10.0.0.2", "10.1.0.1"}))
		Expect(hosts.Total()).To(Equal(3))
		Expect(hosts.Regions()).To(Equal([]string{"us-east-1", "eu-west-1"}))
	})

	It("should add addresses to existing regions", func() {
		h := Hosts(nil).Add("a", "1").Add("b", "2").Add("a", "3")
		Expect(h).To(Equal(Hosts{
			{Name: "a", Addresses: []string{"1", "3"}},
			{Name: "b", Addresses: []string{"2"}},
		}))
	})

	It("should round trip through a snapshot file", func() {
		f := File{Path: filepath.Join(testingx.TempDir(), "snapshot", "hosts.yml")}
		Expect(f.Snapshot(hosts)).To(Succeed())
		loaded, err := f.Hosts(context.Background())
		Expect(err).To(Succeed())
		Expect(loaded).To(Equal(hosts))
	})

	It("should fail on a missing snapshot", func() {
		_, err := File{Path: filepath.Join(testingx.TempDir(), "missing.yml")}.Hosts(context.Background())
		Expect(err).To(HaveOccurred())
	})

	It("static provider returns the configured hosts", func() {
		loaded, err := NewProvider(NewSettings(SettingsOptionHosts(hosts))).Hosts(context.Background())
		Expect(err).To(Succeed())
		Expect(loaded).To(Equal(hosts))
	})

	It("ec2 provider is selected when regions are configured", func() {
		s := NewSettings()
		s.EC2.Regions = []string{"us-east-1"}
		Expect(NewProvider(s)).To(BeAssignableToTypeOf(EC2{}))
	})
})

var _ = Describe("Settings", func() {
	It("should load the settings from a file", func() {
		path := filepath.Join(testingx.TempDir(), "settings.yml")
		Expect(os.WriteFile(path, []byte(`
user: ubuntu
repository:
  name: rbc
  url: https://example.com/rbc.git
  branch: main
hosts:
  - region: local
    addresses: [127.0.0.1, 127.0.0.2]
`), 0600)).To(Succeed())

		s, err := LoadSettings(path, SettingsOptionKeyPath("id_ed25519"))
		Expect(err).To(Succeed())
		Expect(s.Validate()).To(Succeed())
		Expect(s.User).To(Equal("ubuntu"))
		Expect(s.KeyPath).To(Equal("id_ed25519"))
		Expect(s.SSHPort).To(Equal(22))
		Expect(s.BinaryPath()).To(Equal(filepath.Join("rbc", "target", "release")))
		Expect(s.Hosts.Flatten()).To(Equal([]string{"127.0.0.1", "127.0.0.2"}))
	})

	It("should use defaults when the file is missing", func() {
		s, err := LoadSettings(filepath.Join(testingx.TempDir(), "missing.yml"))
		Expect(err).To(Succeed())
		Expect(s).To(Equal(NewSettings()))
	})

	It("should override the ssh port from the environment", func() {
		GinkgoT().Setenv(rbcbench.EnvSSHPort, "2222")
		s, err := LoadSettings(filepath.Join(testingx.TempDir(), "missing.yml"))
		Expect(err).To(Succeed())
		Expect(s.SSHPort).To(Equal(2222))
	})

	It("should reject unknown fields as configuration errors", func() {
		path := filepath.Join(testingx.TempDir(), "settings.yml")
		Expect(os.WriteFile(path, []byte("unknown: true\n"), 0600)).To(Succeed())
		_, err := LoadSettings(path)
		Expect(rbcbench.KindOf(err)).To(Equal(rbcbench.ErrKindConfiguration))
	})

	It("should require a repository url", func() {
		Expect(rbcbench.KindOf(NewSettings().Validate())).To(Equal(rbcbench.ErrKindConfiguration))
	})
})
