package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/ecsops/ecsctl/pkg/common"
	"github.com/ecsops/ecsctl/pkg/config"
	"github.com/ecsops/ecsctl/pkg/controlplane"
	"github.com/ecsops/ecsctl/pkg/util"
)

type operationFunc func(ctx context.Context, s *config.Settings, cp *controlplane.Client, out io.Writer) error

type operation struct {
	requiresService bool
	run             operationFunc
}

// operations is the fixed dispatch table for --execute. Note that
// list_all_task_arns requires a service even though it operates
// cluster-wide; the value is unused but the validation is kept.
var operations = map[string]operation{
	common.OpListServices:    {run: runListServices},
	common.OpStartAll:        {run: runStartAll},
	common.OpStopAll:         {run: runStopAll},
	common.OpListTasks:       {requiresService: true, run: runListTasks},
	common.OpListTaskArns:    {requiresService: true, run: runListTaskArns},
	common.OpListAllTaskArns: {requiresService: true, run: runListAllTaskArns},
	common.OpStart:           {requiresService: true, run: runStart},
	common.OpStop:            {requiresService: true, run: runStop},
}

func runListServices(ctx context.Context, s *config.Settings, cp *controlplane.Client, out io.Writer) error {
	arns, err := cp.ListServiceNames(ctx)
	if err != nil {
		return err
	}
	for _, name := range util.SortedShortNames(arns) {
		fmt.Fprintln(out, name)
	}
	return nil
}

func runListTasks(ctx context.Context, s *config.Settings, cp *controlplane.Client, out io.Writer) error {
	arns, err := cp.ListTaskNames(ctx, s.Service)
	if err != nil {
		return err
	}
	for _, name := range util.SortedShortNames(arns) {
		fmt.Fprintln(out, name)
	}
	return nil
}

func runListTaskArns(ctx context.Context, s *config.Settings, cp *controlplane.Client, out io.Writer) error {
	defs, err := cp.TaskDefinitions(ctx, []string{s.Service})
	if err != nil {
		return err
	}
	fmt.Fprintln(out, util.ShortName(defs[s.Service]))
	return nil
}

func runListAllTaskArns(ctx context.Context, s *config.Settings, cp *controlplane.Client, out io.Writer) error {
	arns, err := cp.ListServiceNames(ctx)
	if err != nil {
		return err
	}
	services := util.SortedShortNames(arns)
	defs, err := cp.TaskDefinitions(ctx, services)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"SERVICE", "TASK DEFINITION"})
	table.SetBorder(false)
	table.SetColumnSeparator(" ")
	for _, svc := range services {
		table.Append([]string{svc, util.ShortName(defs[svc])})
	}
	table.Render()
	return nil
}

func runStart(ctx context.Context, s *config.Settings, cp *controlplane.Client, out io.Writer) error {
	return cp.SetDesiredCount(ctx, s.Service, common.DesiredCountRunning)
}

func runStop(ctx context.Context, s *config.Settings, cp *controlplane.Client, out io.Writer) error {
	return cp.SetDesiredCount(ctx, s.Service, common.DesiredCountStopped)
}

func runStartAll(ctx context.Context, s *config.Settings, cp *controlplane.Client, out io.Writer) error {
	return setAllDesiredCounts(ctx, cp, common.DesiredCountRunning)
}

func runStopAll(ctx context.Context, s *config.Settings, cp *controlplane.Client, out io.Writer) error {
	return setAllDesiredCounts(ctx, cp, common.DesiredCountStopped)
}

// setAllDesiredCounts updates every service in the cluster, one call
// at a time; the first failure halts the loop.
func setAllDesiredCounts(ctx context.Context, cp *controlplane.Client, count int32) error {
	arns, err := cp.ListServiceNames(ctx)
	if err != nil {
		return err
	}
	for _, name := range util.SortedShortNames(arns) {
		if err := cp.SetDesiredCount(ctx, name, count); err != nil {
			return err
		}
	}
	return nil
}
