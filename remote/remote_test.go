package remote_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/james-lawrence/rbcbench"
	"github.com/james-lawrence/rbcbench/internal/x/sshx"
	"github.com/james-lawrence/rbcbench/internal/x/testingx"
	. "github.com/james-lawrence/rbcbench/remote"
	"github.com/james-lawrence/rbcbench/remote/remotetestutil"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Executor", func() {
	var (
		ctx   = context.Background()
		hosts = []string{"h1", "h2", "h3", "h4"}
	)

	Context("Run", func() {
		It("should return stdout", func() {
			fleet := remotetestutil.New(remotetestutil.OptionResponder(func(host, cmd string) (string, string, error) {
				return "hello " + host, "", nil
			}))
			out, err := New(fleet).Run(ctx, "h1", "echo hello")
			Expect(err).To(Succeed())
			Expect(out).To(Equal("hello h1"))
		})

		It("should fail on stderr output", func() {
			fleet := remotetestutil.New(remotetestutil.OptionResponder(func(host, cmd string) (string, string, error) {
				return "", "duplicate session: primary-0", nil
			}))
			_, err := New(fleet).Run(ctx, "h1", "tmux new")
			Expect(rbcbench.KindOf(err)).To(Equal(rbcbench.ErrKindExecution))
			Expect(err).To(MatchError("h1: duplicate session: primary-0"))
		})

		It("output should tolerate stderr", func() {
			fleet := remotetestutil.New(remotetestutil.OptionResponder(func(host, cmd string) (string, string, error) {
				return "ID 1 | 256 bytes | 1.0 | 1 latencies", "grep: warning", nil
			}))
			out, err := New(fleet).Output(ctx, "h1", "./latencies.sh 4")
			Expect(err).To(Succeed())
			Expect(out).To(ContainSubstring("ID 1"))
		})

		It("should fail on unreachable hosts", func() {
			_, err := New(remotetestutil.New(remotetestutil.OptionUnreachable("h1"))).Run(ctx, "h1", "true")
			Expect(rbcbench.KindOf(err)).To(Equal(rbcbench.ErrKindExecution))
		})
	})

	Context("Group", func() {
		It("should run the command on every host", func() {
			fleet := remotetestutil.New()
			Expect(New(fleet).Group(ctx, hosts, "uptime")).To(Succeed())
			Expect(fleet.Hosts()).To(Equal(hosts))
			Expect(fleet.Matching("uptime")).To(HaveLen(len(hosts)))
		})

		It("should succeed for an empty group", func() {
			Expect(New(remotetestutil.New()).Group(ctx, nil, "uptime")).To(Succeed())
		})

		It("should aggregate failures while completing every host", func() {
			fleet := remotetestutil.New(remotetestutil.OptionResponder(func(host, cmd string) (string, string, error) {
				if host == "h2" || host == "h4" {
					return "", "boom " + host, errors.New("exit status 1")
				}
				return "", "", nil
			}))

			err := New(fleet, OptionPartitioner(rbcbench.ConstantPartitioner(1))).Group(ctx, hosts, "false")
			Expect(rbcbench.KindOf(err)).To(Equal(rbcbench.ErrKindGroupExecution))
			Expect(fleet.Hosts()).To(Equal(hosts))

			var gerr *GroupError
			Expect(errors.As(err, &gerr)).To(BeTrue())
			Expect(gerr.Errors()).To(HaveLen(2))
			Expect([]string{"h2: boom h2", "h4: boom h4"}).To(ContainElement(err.Error()))
			Expect(gerr.Details()).To(ContainSubstring("boom h2"))
			Expect(gerr.Details()).To(ContainSubstring("boom h4"))
		})

		It("should ignore stderr when requested", func() {
			fleet := remotetestutil.New(remotetestutil.OptionResponder(func(host, cmd string) (string, string, error) {
				return "", "Compiling node v0.1.0", nil
			}))
			e := New(fleet)
			Expect(e.Group(ctx, hosts, "cargo build")).ToNot(Succeed())
			Expect(e.Group(ctx, hosts, "cargo build", GroupOptionIgnoreStderr)).To(Succeed())
		})
	})

	Context("Detached", func() {
		It("should launch a named session teeing into the log", func() {
			fleet := remotetestutil.New()
			Expect(New(fleet).Detached(ctx, "h1", "./node --config nodes-0.json", "logs/primary-0.log")).To(Succeed())
			Expect(fleet.Commands("h1")).To(Equal([]string{
				`tmux new -d -s "primary-0" "./node --config nodes-0.json |& tee logs/primary-0.log"`,
			}))
		})
	})

	Context("Transfers", func() {
		It("should push files by basename", func() {
			dir := testingx.TempDir()
			path := filepath.Join(dir, "ip_file")
			Expect(os.WriteFile(path, []byte("h1:8500\n"), 0600)).To(Succeed())

			fleet := remotetestutil.New()
			Expect(New(fleet).Push(ctx, "h1", path)).To(Succeed())
			content, ok := fleet.File("h1", "ip_file")
			Expect(ok).To(BeTrue())
			Expect(content).To(Equal("h1:8500\n"))
		})

		It("should fail to push missing files", func() {
			err := New(remotetestutil.New()).Push(ctx, "h1", filepath.Join(testingx.TempDir(), "missing"))
			Expect(rbcbench.KindOf(err)).To(Equal(rbcbench.ErrKindTransfer))
		})

		It("should pull remote files", func() {
			fleet := remotetestutil.New(remotetestutil.OptionFile("h1", "logs/syncer.log", "ID 1 | 256 bytes | 1.0 | 1 latencies\n"))
			local := filepath.Join(testingx.TempDir(), "logs", "syncer.log")
			Expect(New(fleet).Pull(ctx, "h1", "logs/syncer.log", local)).To(Succeed())
			content, err := os.ReadFile(local)
			Expect(err).To(Succeed())
			Expect(strings.TrimSpace(string(content))).To(Equal("ID 1 | 256 bytes | 1.0 | 1 latencies"))
		})

		It("should fail pulls from unreachable hosts", func() {
			err := New(remotetestutil.New(remotetestutil.OptionUnreachable("h1"))).Pull(ctx, "h1", "x", filepath.Join(testingx.TempDir(), "x"))
			Expect(rbcbench.KindOf(err)).To(Equal(rbcbench.ErrKindTransfer))
		})
	})

	It("should fail to build an ssh dialer without a key", func() {
		_, err := NewSSHDialer("ec2-user", filepath.Join(testingx.TempDir(), "missing"))
		Expect(err).To(MatchError(ContainSubstring("failed to load SSH key")))
	})

	It("should build an ssh dialer from a private key", func() {
		pkey, err := sshx.UnsafeAuto()
		Expect(err).To(Succeed())
		path := filepath.Join(testingx.TempDir(), "id_rsa")
		Expect(os.WriteFile(path, pkey, 0600)).To(Succeed())

		_, err = NewSSHDialer("ec2-user", path, SSHOptionPort(2222))
		Expect(err).To(Succeed())
	})
})
