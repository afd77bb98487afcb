package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ecsops/ecsctl/pkg/common"
	"github.com/ecsops/ecsctl/pkg/config"
	"github.com/ecsops/ecsctl/pkg/controlplane"
	"github.com/ecsops/ecsctl/pkg/logger"
)

// options holds the raw flag values for one invocation.
type options struct {
	region  string
	cluster string
	service string
	execute string
	debug   bool
}

// exitError carries the process exit code for a failed invocation, and
// whether usage text should follow the diagnostic.
type exitError struct {
	code  int
	usage bool
	err   error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit code %d", e.code)
}

func (e *exitError) Unwrap() error { return e.err }

// newClient builds the control-plane client; tests swap in a fake.
var newClient = controlplane.New

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ecsctl -c <cluster> -e <subcommand> [-r <region>] [-s <service>] [-d]",
		Short: "ecsctl inspects and controls ECS cluster services.",
		Long: `ecsctl is an operator tool for ECS clusters: list services, list
running tasks, list task-definition references, and start or stop the
desired capacity of one service or of every service in a cluster.

Subcommands for --execute:
  list_services       list service names in the cluster
  list_tasks          list task names for a service
  list_task_arns      print a service's task-definition reference
  list_all_task_arns  print every service's task-definition reference
  start, stop         set a service's desired count to 1 or 0
  start_all, stop_all set every service's desired count to 1 or 0`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.region, "region", "r", "", "Control-plane region (us-east-1, sa-east-1 or us-west-2; default us-east-1)")
	f.StringVarP(&opts.cluster, "cluster", "c", "", "Name of the cluster to operate on (required)")
	f.StringVarP(&opts.service, "service", "s", "", "Name of the service, for service-scoped subcommands")
	f.StringVarP(&opts.execute, "execute", "e", "", "Subcommand to execute (required)")
	f.BoolVarP(&opts.debug, "debug", "d", false, "Enable debug output")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &exitError{code: common.ExitUsage, usage: true, err: err}
	})

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	settings, err := config.Load()
	if err != nil {
		return &exitError{code: common.ExitUsage, err: err}
	}

	// Flags override environment and file defaults.
	if cmd.Flags().Changed("region") {
		settings.Region = opts.region
	}
	if cmd.Flags().Changed("cluster") {
		settings.Cluster = opts.cluster
	}
	settings.Service = opts.service
	settings.Operation = opts.execute
	settings.Debug = settings.Debug || opts.debug

	settings.Complete()
	if err := settings.Validate(); err != nil {
		return &exitError{code: common.ExitUsage, usage: true, err: err}
	}

	logOpts := logger.DefaultOptions()
	if settings.Debug {
		logOpts.ConsoleLevel = logger.DebugLevel
	}
	if settings.LogFile != "" {
		logOpts.FileOutput = true
		logOpts.LogFilePath = settings.LogFile
	}
	log, err := logger.NewLogger(logOpts)
	if err != nil {
		return &exitError{code: common.ExitUsage, err: err}
	}
	defer log.Sync()

	log.Debugf("resolved configuration: region=%s cluster=%s service=%s operation=%s",
		settings.Region, settings.Cluster, settings.Service, settings.Operation)

	op, ok := operations[settings.Operation]
	if !ok {
		return &exitError{code: common.ExitOperation, err: fmt.Errorf("invalid subcommand %q", settings.Operation)}
	}
	if op.requiresService && settings.Service == "" {
		return &exitError{code: common.ExitOperation, err: fmt.Errorf("no service specified for subcommand %q", settings.Operation)}
	}

	// Client construction resolves credentials and region eagerly,
	// before any operation runs.
	cp, err := newClient(cmd.Context(), settings.Region, settings.Cluster, settings.EndpointURL, log)
	if err != nil {
		return &exitError{code: common.ExitUsage, err: err}
	}

	return op.run(cmd.Context(), &settings, cp, cmd.OutOrStdout())
}

// Run parses args, executes the selected subcommand and returns the
// process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	opts := &options{}
	root := newRootCmd(opts)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	if len(args) == 0 {
		fmt.Fprint(stderr, root.UsageString())
		return common.ExitUsage
	}

	err := root.Execute()
	if err == nil {
		return common.ExitSuccess
	}

	red := color.New(color.FgRed)
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			red.Fprintf(stderr, "Error: %v\n", ee.err)
		}
		if ee.usage {
			fmt.Fprint(stderr, root.UsageString())
		}
		return ee.code
	}

	// Anything else is a transport failure surfaced by an operation.
	red.Fprintf(stderr, "Error: %v\n", err)
	return common.ExitUsage
}
