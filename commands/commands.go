// Package commands renders the shell commands used to build, configure and run the protocol
// binaries. every function is pure: the same arguments always produce the same command.
// arguments are checked before rendering, a violation is a programming error and panics
// with a Precondition error. callers validate user input before reaching this package.
package commands

import (
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/james-lawrence/rbcbench"
)

// Precondition describes an invalid argument passed to a command builder.
type Precondition string

func (t Precondition) Error() string {
	return string(t)
}

func require(ok bool, format string, args ...interface{}) {
	if !ok {
		panic(Precondition(fmt.Sprintf(format, args...)))
	}
}

func nonblank(name, value string) {
	require(strings.TrimSpace(value) != "", "%s must not be blank", name)
}

// And joins the commands so each runs only if the previous succeeded.
func And(cmds ...string) string {
	return strings.Join(cmds, " && ")
}

// Sequence joins the commands so each runs regardless of the previous result.
func Sequence(cmds ...string) string {
	return strings.Join(cmds, " ; ")
}

// Lenient never fails.
func Lenient(cmd string) string {
	return fmt.Sprintf("(%s || true)", cmd)
}

// InDir runs the command within the given directory using a subshell.
func InDir(dir, cmd string) string {
	nonblank("directory", dir)
	return fmt.Sprintf("(cd %s && %s)", dir, cmd)
}

// Export renders environment assignments (KEY=value) as exports.
func Export(environ ...string) string {
	exports := make([]string, 0, len(environ))
	for _, kv := range environ {
		require(strings.Contains(kv, "="), "invalid environment assignment: %s", kv)
		exports = append(exports, "export "+kv)
	}

	return And(exports...)
}

// Cleanup removes the stores and json configuration left over from previous runs.
func Cleanup() string {
	return fmt.Sprintf("rm -r .db-* ; rm .*.json ; mkdir -p %s", rbcbench.DefaultResultsDir)
}

// CleanLogs empties the logs directory.
func CleanLogs() string {
	return fmt.Sprintf("rm -r %s ; mkdir -p %s", rbcbench.DefaultLogsDir, rbcbench.DefaultLogsDir)
}

// Compile builds the release binaries.
func Compile() string {
	return "cargo build --quiet --release"
}

// GenerateKey generates a key file for a single node.
func GenerateKey(filename string) string {
	nonblank("filename", filename)
	return fmt.Sprintf("./%s generate_keys --filename %s", rbcbench.BinaryNode, filename)
}

// GenerateConfigFiles generates the key files, committee and parameters of a run of n nodes.
func GenerateConfigFiles(bport, clientBport, clientRunPort, n int) string {
	require(bport > 0, "base port must be positive: %d", bport)
	require(clientBport > 0, "client base port must be positive: %d", clientBport)
	require(clientRunPort > 0, "client run port must be positive: %d", clientRunPort)
	require(n > 0, "number of nodes must be positive: %d", n)

	return fmt.Sprintf(
		"./%s --blocksize 100 --delay 100 --base_port %d --client_base_port %d --NumNodes %d --target . --client_run_port %d --local true",
		rbcbench.BinaryGenconfig, bport, clientBport, n, clientRunPort,
	)
}

// RunPrimary starts a primary running the given protocol.
func RunPrimary(key, protocol, bfile string, byzantine, crash bool) string {
	nonblank("key", key)
	nonblank("protocol", protocol)
	nonblank("bfile", bfile)

	return fmt.Sprintf(
		"ulimit -n 8500; ./%s --config %s --ip %s --protocol %s --input xx --syncer %s --bfile %s --byzantine %s --crash %s",
		rbcbench.BinaryNode, key, rbcbench.IPFile, protocol, rbcbench.SyncerFile, bfile,
		strconv.FormatBool(byzantine), strconv.FormatBool(crash),
	)
}

// RunSyncer starts the syncer, the node running the synchronization protocol.
func RunSyncer(key, bfile string, byzantine bool) string {
	nonblank("key", key)
	nonblank("bfile", bfile)

	return fmt.Sprintf(
		"ulimit -n 8500; ./%s --config %s --ip %s --protocol sync --input xx --syncer %s --bfile %s --byzantine %s",
		rbcbench.BinaryNode, key, rbcbench.IPFile, rbcbench.SyncerFile, bfile, strconv.FormatBool(byzantine),
	)
}

// RunWorker starts the id-th worker of an authority.
func RunWorker(keys, committee, store, parameters string, id int, debug bool) string {
	nonblank("keys", keys)
	nonblank("committee", committee)
	nonblank("store", store)
	nonblank("parameters", parameters)
	require(id >= 0, "worker id must not be negative: %d", id)

	v := "-vv"
	if debug {
		v = "-vvv"
	}

	return fmt.Sprintf(
		"./%s %s run --keys %s --committee %s --store %s --parameters %s worker --id %d",
		rbcbench.BinaryNode, v, keys, committee, store, parameters, id,
	)
}

// RunClient starts the load generator against address.
func RunClient(address string, size, rate int, nodes []string) string {
	nonblank("address", address)
	require(size > 0, "size must be positive: %d", size)
	require(rate >= 0, "rate must not be negative: %d", rate)
	for _, n := range nodes {
		nonblank("node address", n)
	}

	cmd := fmt.Sprintf("./%s %s --size %d --rate %d", rbcbench.BinaryClient, address, size, rate)
	if len(nodes) > 0 {
		cmd = fmt.Sprintf("%s --nodes %s", cmd, strings.Join(nodes, " "))
	}

	return cmd
}

// Unzip extracts a gzipped tarball into the current directory.
func Unzip(path string) string {
	nonblank("path", path)
	return fmt.Sprintf("tar -xvzf %s", path)
}

// Kill terminates the tmux server along with every session it hosts.
func Kill() string {
	return "tmux kill-server"
}

// AliasBinaries replaces the binaries in the current directory with links into origin.
func AliasBinaries(origin string) string {
	nonblank("origin", origin)

	var (
		node      = path.Join(origin, rbcbench.BinaryNode)
		client    = path.Join(origin, rbcbench.BinaryClient)
		genconfig = path.Join(origin, rbcbench.BinaryGenconfig)
	)

	return fmt.Sprintf(
		"rm %s ; rm %s ; rm %s ; ln -s %s . ; ln -s %s . ; ln -s %s .",
		rbcbench.BinaryNode, rbcbench.BinaryClient, rbcbench.BinaryGenconfig,
		node, client, genconfig,
	)
}

// SessionName the tmux session name for a process logging into logfile.
func SessionName(logfile string) string {
	nonblank("logfile", logfile)
	base := filepath.Base(logfile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Detached runs the command inside a new detached tmux session named after the log file,
// stdout and stderr are copied into the log file. the command is embedded within double
// quotes without escaping, it must not contain double quotes.
func Detached(command, logfile string) string {
	nonblank("command", command)
	unquoted(command)
	return fmt.Sprintf("tmux new -d -s \"%s\" \"%s |& tee %s\"", SessionName(logfile), command, logfile)
}

// Background runs the command inside a new detached tmux session on the local machine,
// stdout is redirected into the log file. the command must not contain double quotes,
// see Detached.
func Background(command, logfile string) string {
	nonblank("command", command)
	unquoted(command)
	return fmt.Sprintf("tmux new -d -s \"%s\" \"%s > %s\"", SessionName(logfile), command, logfile)
}

func unquoted(command string) {
	require(!strings.Contains(command, `"`), "command must not contain double quotes: %s", command)
}

// LatencySummary runs the latency summary script of the repository for n nodes.
func LatencySummary(repo string, n int) string {
	nonblank("repository", repo)
	require(n > 0, "number of nodes must be positive: %d", n)
	return fmt.Sprintf("./%s/benchmark/latencies.sh %d", repo, n)
}
