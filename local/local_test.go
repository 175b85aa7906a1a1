package local_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/james-lawrence/rbcbench"
	"github.com/james-lawrence/rbcbench/archive"
	"github.com/james-lawrence/rbcbench/fleet"
	"github.com/james-lawrence/rbcbench/internal/x/testingx"
	. "github.com/james-lawrence/rbcbench/local"
	"github.com/james-lawrence/rbcbench/shell"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recorder struct {
	commands []string
	fail     string
}

func (t *recorder) Execute(ctx context.Context, cmds ...shell.Exec) error {
	for _, c := range cmds {
		t.commands = append(t.commands, c.Command)
		if t.fail != "" && strings.Contains(c.Command, t.fail) && !c.Lenient {
			return errors.New("boom")
		}
	}
	return nil
}

func (t *recorder) matching(fragment string) (matched []string) {
	for _, c := range t.commands {
		if strings.Contains(c, fragment) {
			matched = append(matched, c)
		}
	}
	return matched
}

var _ = Describe("Local", func() {
	var (
		ctx    = context.Background()
		params = rbcbench.NewParameters(rbcbench.ParametersOptionNodes(4))
	)

	It("should launch the syncer before every primary", func() {
		dir := testingx.TempDir()
		r := &recorder{}
		Expect(New(fleet.NewSettings(), r, params, OptionDir(dir)).Run(ctx)).To(Succeed())

		Expect(r.commands[0]).To(Equal("tmux kill-server"))
		launches := r.matching("tmux new -d -s")
		Expect(launches).To(HaveLen(5))
		Expect(launches[0]).To(HavePrefix(`tmux new -d -s "syncer"`))
		Expect(launches[0]).To(HaveSuffix(`> logs/syncer.log"`))
		for i, l := range launches[1:] {
			Expect(l).To(ContainSubstring(rbcbench.KeyFile(i)))
			Expect(l).To(ContainSubstring("--protocol addrbc"))
		}

		Expect(r.matching("./genconfig")).To(Equal([]string{
			"./genconfig --blocksize 100 --delay 100 --base_port 9000 --client_base_port 10000 --NumNodes 4 --target . --client_run_port 9500 --local true",
		}))

		ipfile, err := os.ReadFile(filepath.Join(dir, rbcbench.IPFile))
		Expect(err).To(Succeed())
		Expect(string(ipfile)).To(Equal("127.0.0.1:9000\n127.0.0.1:9001\n127.0.0.1:9002\n127.0.0.1:9003\n127.0.0.1:9500\n"))
	})

	It("should extract the staged bundle before launching", func() {
		dir := testingx.TempDir()
		data := filepath.Join(testingx.TempDir(), "data")
		Expect(os.MkdirAll(data, 0755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(data, "msgs.txt"), []byte("hello"), 0600)).To(Succeed())
		Expect(archive.Bundle(filepath.Join(dir, fleet.NewSettings().Bundles.Staged), data)).To(Succeed())

		Expect(New(fleet.NewSettings(), &recorder{}, params, OptionDir(dir)).Run(ctx)).To(Succeed())
		content, err := os.ReadFile(filepath.Join(dir, "data", "msgs.txt"))
		Expect(err).To(Succeed())
		Expect(string(content)).To(Equal("hello"))
	})

	It("should kill the sessions on failure", func() {
		r := &recorder{fail: "./genconfig"}
		err := New(fleet.NewSettings(), r, params, OptionDir(testingx.TempDir())).Run(ctx)
		Expect(err).To(MatchError(ContainSubstring("failed to run benchmark")))
		Expect(r.commands[len(r.commands)-1]).To(Equal("tmux kill-server"))
		Expect(r.matching("tmux new")).To(BeEmpty())
	})

	It("should reject invalid parameters", func() {
		invalid := rbcbench.NewParameters(rbcbench.ParametersOptionNodes(0))
		r := &recorder{}
		err := New(fleet.NewSettings(), r, invalid).Run(ctx)
		Expect(rbcbench.KindOf(err)).To(Equal(rbcbench.ErrKindConfiguration))
		Expect(r.commands).To(BeEmpty())
	})
})
