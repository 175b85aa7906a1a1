// Package remotetestutil an in memory fleet for exercising remote execution.
package remotetestutil

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/james-lawrence/rbcbench/remote"
)

// Invocation a command executed on a host.
type Invocation struct {
	Host    string
	Command string
}

// Responder determines the outcome of a command.
type Responder func(host, cmd string) (stdout, stderr string, err error)

// Succeed every command succeeds without output.
func Succeed(host, cmd string) (string, string, error) {
	return "", "", nil
}

// Option customize the fleet.
type Option func(*Fleet)

// OptionResponder set the responder for commands.
func OptionResponder(r Responder) Option {
	return func(f *Fleet) {
		f.responder = r
	}
}

// OptionUnreachable hosts that refuse connections.
func OptionUnreachable(hosts ...string) Option {
	return func(f *Fleet) {
		for _, h := range hosts {
			f.unreachable[h] = struct{}{}
		}
	}
}

// OptionFile stage a file on a host, served by pulls.
func OptionFile(host, path, content string) Option {
	return func(f *Fleet) {
		f.file(host, path, content)
	}
}

// New in memory fleet.
func New(options ...Option) *Fleet {
	f := &Fleet{
		responder:   Succeed,
		unreachable: map[string]struct{}{},
		files:       map[string]map[string]string{},
	}

	for _, opt := range options {
		opt(f)
	}

	return f
}

// Fleet implements remote.Dialer, recording every command and file it receives.
type Fleet struct {
	m           sync.Mutex
	responder   Responder
	unreachable map[string]struct{}
	invocations []Invocation
	pushes      []Invocation
	files       map[string]map[string]string
}

// Dial implements remote.Dialer.
func (t *Fleet) Dial(ctx context.Context, host string) (remote.Conn, error) {
	t.m.Lock()
	defer t.m.Unlock()

	if _, ok := t.unreachable[host]; ok {
		return nil, errors.Errorf("connection refused: %s", host)
	}

	return conn{host: host, fleet: t}, nil
}

func (t *Fleet) file(host, path, content string) {
	if _, ok := t.files[host]; !ok {
		t.files[host] = map[string]string{}
	}
	t.files[host][path] = content
}

// Invocations every command executed, in the order they were received.
func (t *Fleet) Invocations() []Invocation {
	t.m.Lock()
	defer t.m.Unlock()
	return append([]Invocation(nil), t.invocations...)
}

// Commands executed on the host, in order.
func (t *Fleet) Commands(host string) (cmds []string) {
	for _, i := range t.Invocations() {
		if i.Host == host {
			cmds = append(cmds, i.Command)
		}
	}
	return cmds
}

// Matching every invocation whose command contains the fragment.
func (t *Fleet) Matching(fragment string) (matched []Invocation) {
	for _, i := range t.Invocations() {
		if strings.Contains(i.Command, fragment) {
			matched = append(matched, i)
		}
	}
	return matched
}

// Pushes every file pushed, the command holds the file name, in order.
func (t *Fleet) Pushes() []Invocation {
	t.m.Lock()
	defer t.m.Unlock()
	return append([]Invocation(nil), t.pushes...)
}

// File the content of a file on the host.
func (t *Fleet) File(host, path string) (string, bool) {
	t.m.Lock()
	defer t.m.Unlock()
	content, ok := t.files[host][path]
	return content, ok
}

// Hosts that received at least one command, sorted.
func (t *Fleet) Hosts() []string {
	seen := map[string]struct{}{}
	for _, i := range t.Invocations() {
		seen[i.Host] = struct{}{}
	}

	hosts := make([]string, 0, len(seen))
	for h := range seen {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

type conn struct {
	host  string
	fleet *Fleet
}

func (t conn) Run(ctx context.Context, cmd string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	f := t.fleet

	if name, ok := strings.CutPrefix(cmd, "cat > "); ok && stdin != nil {
		var content []byte
		if content, err = io.ReadAll(stdin); err != nil {
			return err
		}

		f.m.Lock()
		f.pushes = append(f.pushes, Invocation{Host: t.host, Command: name})
		f.file(t.host, name, string(content))
		f.m.Unlock()
		return nil
	}

	f.m.Lock()
	f.invocations = append(f.invocations, Invocation{Host: t.host, Command: cmd})
	responder := f.responder
	f.m.Unlock()

	if path, ok := strings.CutPrefix(cmd, "cat "); ok {
		if content, found := f.File(t.host, path); found {
			_, err = io.WriteString(stdout, content)
			return err
		}
	}

	sout, serr, err := responder(t.host, cmd)
	if _, werr := io.WriteString(stdout, sout); werr != nil {
		return werr
	}

	if _, werr := io.WriteString(stderr, serr); werr != nil {
		return werr
	}

	return err
}

func (t conn) Close() error {
	return nil
}
