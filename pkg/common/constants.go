package common

// Regions the control plane is reachable in. Anything else is coerced
// to DefaultRegion during settings completion.
const (
	RegionUSEast1 = "us-east-1"
	RegionSAEast1 = "sa-east-1"
	RegionUSWest2 = "us-west-2"

	DefaultRegion = RegionUSEast1
)

// SupportedRegions lists the regions ecsctl will talk to.
var SupportedRegions = []string{RegionUSEast1, RegionSAEast1, RegionUSWest2}

// IsSupportedRegion reports whether region is one of SupportedRegions.
func IsSupportedRegion(region string) bool {
	for _, r := range SupportedRegions {
		if r == region {
			return true
		}
	}
	return false
}

// Subcommand names accepted by --execute.
const (
	OpListServices    = "list_services"
	OpListTasks       = "list_tasks"
	OpListTaskArns    = "list_task_arns"
	OpListAllTaskArns = "list_all_task_arns"
	OpStart           = "start"
	OpStop            = "stop"
	OpStartAll        = "start_all"
	OpStopAll         = "stop_all"
)

// Process exit codes.
const (
	// ExitSuccess is returned on success and for --help.
	ExitSuccess = 0
	// ExitUsage is returned for argument/usage errors and for failures
	// reaching or bootstrapping the control plane.
	ExitUsage = 1
	// ExitOperation is returned when a service-scoped subcommand is
	// missing its service, or the subcommand itself is unrecognized.
	ExitOperation = 99
)

// Desired counts used by the start/stop family of subcommands.
const (
	DesiredCountRunning = 1
	DesiredCountStopped = 0
)

// Locations of the optional defaults file, relative to $HOME.
const (
	DefaultConfigDir  = ".ecsctl"
	DefaultConfigFile = "config.yaml"
)
