package controlplane

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/pkg/errors"
)

// fakeAPI records every call and serves canned responses.
type fakeAPI struct {
	serviceArns []string
	taskArns    []string
	err         error

	// describeFn, when set, computes describe responses per call.
	describeFn func(params *ecs.DescribeServicesInput) (*ecs.DescribeServicesOutput, error)

	listServicesCalls []*ecs.ListServicesInput
	listTasksCalls    []*ecs.ListTasksInput
	describeCalls     []*ecs.DescribeServicesInput
	updateCalls       []*ecs.UpdateServiceInput
}

func (f *fakeAPI) ListServices(ctx context.Context, params *ecs.ListServicesInput, optFns ...func(*ecs.Options)) (*ecs.ListServicesOutput, error) {
	f.listServicesCalls = append(f.listServicesCalls, params)
	if f.err != nil {
		return nil, f.err
	}
	return &ecs.ListServicesOutput{ServiceArns: f.serviceArns}, nil
}

func (f *fakeAPI) ListTasks(ctx context.Context, params *ecs.ListTasksInput, optFns ...func(*ecs.Options)) (*ecs.ListTasksOutput, error) {
	f.listTasksCalls = append(f.listTasksCalls, params)
	if f.err != nil {
		return nil, f.err
	}
	return &ecs.ListTasksOutput{TaskArns: f.taskArns}, nil
}

func (f *fakeAPI) DescribeServices(ctx context.Context, params *ecs.DescribeServicesInput, optFns ...func(*ecs.Options)) (*ecs.DescribeServicesOutput, error) {
	f.describeCalls = append(f.describeCalls, params)
	if f.err != nil {
		return nil, f.err
	}
	if f.describeFn != nil {
		return f.describeFn(params)
	}
	return &ecs.DescribeServicesOutput{}, nil
}

func (f *fakeAPI) UpdateService(ctx context.Context, params *ecs.UpdateServiceInput, optFns ...func(*ecs.Options)) (*ecs.UpdateServiceOutput, error) {
	f.updateCalls = append(f.updateCalls, params)
	if f.err != nil {
		return nil, f.err
	}
	return &ecs.UpdateServiceOutput{}, nil
}

// echoDescribe answers a describe call with one service per requested
// name, each pointing at a task definition derived from the name.
func echoDescribe(params *ecs.DescribeServicesInput) (*ecs.DescribeServicesOutput, error) {
	out := &ecs.DescribeServicesOutput{}
	for _, svc := range params.Services {
		out.Services = append(out.Services, types.Service{
			ServiceName:    aws.String(svc),
			TaskDefinition: aws.String("arn:aws:ecs:us-east-1:123456789012:task-definition/" + svc + ":7"),
		})
	}
	return out, nil
}

func TestListServiceNames(t *testing.T) {
	fake := &fakeAPI{serviceArns: []string{
		"arn:aws:ecs:us-east-1:123456789012:service/prod/svcB",
		"arn:aws:ecs:us-east-1:123456789012:service/prod/svcA",
	}}
	c := NewFromAPI(fake, "prod", nil)

	got, err := c.ListServiceNames(context.Background())
	if err != nil {
		t.Fatalf("ListServiceNames() error = %v", err)
	}
	if !reflect.DeepEqual(got, fake.serviceArns) {
		t.Errorf("ListServiceNames() = %v, want raw ARNs %v", got, fake.serviceArns)
	}
	if len(fake.listServicesCalls) != 1 {
		t.Fatalf("ListServices called %d times, want 1", len(fake.listServicesCalls))
	}
	if aws.ToString(fake.listServicesCalls[0].Cluster) != "prod" {
		t.Errorf("ListServices cluster = %q, want prod", aws.ToString(fake.listServicesCalls[0].Cluster))
	}
}

func TestListServiceNamesError(t *testing.T) {
	fake := &fakeAPI{err: errors.New("AccessDeniedException")}
	c := NewFromAPI(fake, "prod", nil)

	_, err := c.ListServiceNames(context.Background())
	if err == nil {
		t.Fatal("ListServiceNames() = nil, want error")
	}
	if !strings.Contains(err.Error(), "failed to list services in cluster prod") {
		t.Errorf("ListServiceNames() error = %v, want wrapped cluster context", err)
	}
	if !strings.Contains(err.Error(), "AccessDeniedException") {
		t.Errorf("ListServiceNames() error = %v, want cause preserved", err)
	}
}

func TestListTaskNames(t *testing.T) {
	fake := &fakeAPI{taskArns: []string{
		"arn:aws:ecs:us-east-1:123456789012:task/prod/abc123",
	}}
	c := NewFromAPI(fake, "prod", nil)

	got, err := c.ListTaskNames(context.Background(), "web")
	if err != nil {
		t.Fatalf("ListTaskNames() error = %v", err)
	}
	if !reflect.DeepEqual(got, fake.taskArns) {
		t.Errorf("ListTaskNames() = %v, want %v", got, fake.taskArns)
	}
	if len(fake.listTasksCalls) != 1 {
		t.Fatalf("ListTasks called %d times, want 1", len(fake.listTasksCalls))
	}
	call := fake.listTasksCalls[0]
	if aws.ToString(call.Cluster) != "prod" || aws.ToString(call.ServiceName) != "web" {
		t.Errorf("ListTasks called with cluster=%q service=%q, want prod/web",
			aws.ToString(call.Cluster), aws.ToString(call.ServiceName))
	}
}

func TestTaskDefinitions(t *testing.T) {
	t.Run("SingleService", func(t *testing.T) {
		fake := &fakeAPI{describeFn: echoDescribe}
		c := NewFromAPI(fake, "prod", nil)

		defs, err := c.TaskDefinitions(context.Background(), []string{"web"})
		if err != nil {
			t.Fatalf("TaskDefinitions() error = %v", err)
		}
		want := "arn:aws:ecs:us-east-1:123456789012:task-definition/web:7"
		if defs["web"] != want {
			t.Errorf("TaskDefinitions()[web] = %q, want %q", defs["web"], want)
		}
	})

	t.Run("ChunksAtAPILimit", func(t *testing.T) {
		fake := &fakeAPI{describeFn: echoDescribe}
		c := NewFromAPI(fake, "prod", nil)

		var services []string
		for i := 0; i < 12; i++ {
			services = append(services, fmt.Sprintf("svc%02d", i))
		}
		defs, err := c.TaskDefinitions(context.Background(), services)
		if err != nil {
			t.Fatalf("TaskDefinitions() error = %v", err)
		}
		if len(defs) != 12 {
			t.Errorf("TaskDefinitions() returned %d entries, want 12", len(defs))
		}
		if len(fake.describeCalls) != 2 {
			t.Fatalf("DescribeServices called %d times, want 2", len(fake.describeCalls))
		}
		if got := len(fake.describeCalls[0].Services); got != 10 {
			t.Errorf("first describe batch size = %d, want 10", got)
		}
		if got := len(fake.describeCalls[1].Services); got != 2 {
			t.Errorf("second describe batch size = %d, want 2", got)
		}
	})

	t.Run("FailureEntry", func(t *testing.T) {
		fake := &fakeAPI{describeFn: func(params *ecs.DescribeServicesInput) (*ecs.DescribeServicesOutput, error) {
			return &ecs.DescribeServicesOutput{Failures: []types.Failure{{
				Arn:    aws.String("arn:aws:ecs:us-east-1:123456789012:service/prod/gone"),
				Reason: aws.String("MISSING"),
			}}}, nil
		}}
		c := NewFromAPI(fake, "prod", nil)

		_, err := c.TaskDefinitions(context.Background(), []string{"gone"})
		if err == nil {
			t.Fatal("TaskDefinitions() = nil, want failure error")
		}
		if !strings.Contains(err.Error(), "gone") || !strings.Contains(err.Error(), "MISSING") {
			t.Errorf("TaskDefinitions() error = %v, want service and reason", err)
		}
	})
}

func TestSetDesiredCount(t *testing.T) {
	fake := &fakeAPI{}
	c := NewFromAPI(fake, "prod", nil)

	if err := c.SetDesiredCount(context.Background(), "web", 1); err != nil {
		t.Fatalf("SetDesiredCount() error = %v", err)
	}
	if len(fake.updateCalls) != 1 {
		t.Fatalf("UpdateService called %d times, want 1", len(fake.updateCalls))
	}
	call := fake.updateCalls[0]
	if aws.ToString(call.Cluster) != "prod" {
		t.Errorf("UpdateService cluster = %q, want prod", aws.ToString(call.Cluster))
	}
	if aws.ToString(call.Service) != "web" {
		t.Errorf("UpdateService service = %q, want web", aws.ToString(call.Service))
	}
	if aws.ToInt32(call.DesiredCount) != 1 {
		t.Errorf("UpdateService desired count = %d, want 1", aws.ToInt32(call.DesiredCount))
	}
}

func TestSetDesiredCountError(t *testing.T) {
	fake := &fakeAPI{err: errors.New("ServiceNotFoundException")}
	c := NewFromAPI(fake, "prod", nil)

	err := c.SetDesiredCount(context.Background(), "web", 0)
	if err == nil {
		t.Fatal("SetDesiredCount() = nil, want error")
	}
	if !strings.Contains(err.Error(), "failed to set desired count of service web to 0") {
		t.Errorf("SetDesiredCount() error = %v, want wrapped context", err)
	}
}
