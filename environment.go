package rbcbench

// defines available environment variables for configuration
const (
	EnvLogsVerbose       = "RBCBENCH_LOGS_VERBOSE"       // enable verbose logging. boolean, see strconv.ParseBool for valid values.
	EnvLogsConfiguration = "RBCBENCH_LOGS_CONFIGURATION" // dump the loaded configuration. boolean, see strconv.ParseBool for valid values.
	EnvSettings          = "RBCBENCH_SETTINGS"           // path to the fleet settings file.
	EnvParameters        = "RBCBENCH_PARAMETERS"         // path to the benchmark parameters file.
	EnvSSHKey            = "RBCBENCH_SSH_KEY"            // overrides the private key used to reach the fleet.
	EnvSSHPort           = "RBCBENCH_SSH_PORT"           // overrides the ssh port of the fleet. integer.
)
