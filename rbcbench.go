// Package rbcbench drives benchmark runs of the reliable broadcast protocols across a fleet of
// machines. the subpackages implement the individual phases, this package holds the shared
// parameters, file layout and error classification.
package rbcbench

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/uuid"
)

const (
	// DefaultSettingsFile location of the fleet settings.
	DefaultSettingsFile = "settings.yml"
	// DefaultParametersFile location of the benchmark parameters.
	DefaultParametersFile = "bench.yml"
	// DefaultLogsDir directory holding process logs, local and remote.
	DefaultLogsDir = "logs"
	// DefaultResultsDir directory holding latency summaries.
	DefaultResultsDir = "results"
	// IPFile address book consumed by every node, one address:port per line.
	IPFile = "ip_file"
	// SyncerFile syncer address book, only pushed to the first node.
	SyncerFile = "syncer"
	// CommitteeFile committee descriptor, consumed locally.
	CommitteeFile = ".committee.json"
	// ParametersFile shared protocol parameters, consumed locally.
	ParametersFile = ".parameters.json"
	// UnzipLog log of the bundle extraction session.
	UnzipLog = "unzip.log"
)

// Well known binaries produced by the protocol repository.
const (
	BinaryNode      = "node"
	BinaryClient    = "benchmark_client"
	BinaryGenconfig = "genconfig"
)

// KeyFile returns the key/config file generated for the i-th node.
func KeyFile(i int) string {
	return fmt.Sprintf("nodes-%d.json", i)
}

// PrimaryLogFile log file of the i-th primary.
func PrimaryLogFile(i int) string {
	return filepath.Join(DefaultLogsDir, fmt.Sprintf("primary-%d.log", i))
}

// SyncerLogFile log file of the syncer.
func SyncerLogFile() string {
	return filepath.Join(DefaultLogsDir, "syncer.log")
}

// ResultFile latency summary for the given run.
func ResultFile(runid string) string {
	return filepath.Join(DefaultResultsDir, fmt.Sprintf("latency-%s.txt", runid))
}

// NewRunID generates an identifier for a single invocation.
func NewRunID() string {
	return uuid.Must(uuid.NewV4()).String()
}
