// Package controlplane is a thin adapter over the ECS control-plane
// API: four remote calls, structured results, no business logic.
// Failures are wrapped with context and propagated; there is no retry.
package controlplane

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/pkg/errors"

	"github.com/ecsops/ecsctl/pkg/logger"
	"github.com/ecsops/ecsctl/pkg/util"
)

// describeBatchSize is the control plane's cap on services per
// describe call.
const describeBatchSize = 10

// API is the subset of the ECS client the adapter uses. Tests
// substitute a fake.
type API interface {
	ListServices(ctx context.Context, params *ecs.ListServicesInput, optFns ...func(*ecs.Options)) (*ecs.ListServicesOutput, error)
	ListTasks(ctx context.Context, params *ecs.ListTasksInput, optFns ...func(*ecs.Options)) (*ecs.ListTasksOutput, error)
	DescribeServices(ctx context.Context, params *ecs.DescribeServicesInput, optFns ...func(*ecs.Options)) (*ecs.DescribeServicesOutput, error)
	UpdateService(ctx context.Context, params *ecs.UpdateServiceInput, optFns ...func(*ecs.Options)) (*ecs.UpdateServiceOutput, error)
}

// Client issues control-plane calls scoped to a single cluster.
type Client struct {
	api     API
	cluster string
	log     *logger.Logger
}

// New builds a client for the given region and cluster, loading the
// default AWS configuration. When endpointURL is non-empty the client
// targets it with static test credentials, for local simulators.
func New(ctx context.Context, region, cluster, endpointURL string, log *logger.Logger) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if endpointURL != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("test", "test", ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS configuration")
	}

	var api API
	if endpointURL != "" {
		api = ecs.NewFromConfig(cfg, func(o *ecs.Options) { o.BaseEndpoint = aws.String(endpointURL) })
	} else {
		api = ecs.NewFromConfig(cfg)
	}
	return NewFromAPI(api, cluster, log), nil
}

// NewFromAPI builds a client around an existing API implementation.
func NewFromAPI(api API, cluster string, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Get()
	}
	return &Client{api: api, cluster: cluster, log: log}
}

// ListServiceNames returns the fully-qualified identifiers of every
// service in the cluster.
func (c *Client) ListServiceNames(ctx context.Context) ([]string, error) {
	c.log.Debugf("listing services in cluster %s", c.cluster)
	out, err := c.api.ListServices(ctx, &ecs.ListServicesInput{
		Cluster: aws.String(c.cluster),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list services in cluster %s", c.cluster)
	}
	return out.ServiceArns, nil
}

// ListTaskNames returns the fully-qualified identifiers of the tasks
// currently running for the given service.
func (c *Client) ListTaskNames(ctx context.Context, service string) ([]string, error) {
	c.log.Debugf("listing tasks for service %s in cluster %s", service, c.cluster)
	out, err := c.api.ListTasks(ctx, &ecs.ListTasksInput{
		Cluster:     aws.String(c.cluster),
		ServiceName: aws.String(service),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list tasks for service %s", service)
	}
	return out.TaskArns, nil
}

// TaskDefinitions describes the given services and maps each service
// name to its current task-definition identifier. Describe calls are
// chunked to the control plane's per-call cap.
func (c *Client) TaskDefinitions(ctx context.Context, services []string) (map[string]string, error) {
	defs := make(map[string]string, len(services))
	for start := 0; start < len(services); start += describeBatchSize {
		end := start + describeBatchSize
		if end > len(services) {
			end = len(services)
		}
		batch := services[start:end]
		c.log.Debugf("describing %d service(s) in cluster %s", len(batch), c.cluster)
		out, err := c.api.DescribeServices(ctx, &ecs.DescribeServicesInput{
			Cluster:  aws.String(c.cluster),
			Services: batch,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to describe services in cluster %s", c.cluster)
		}
		for _, f := range out.Failures {
			return nil, errors.Errorf("failed to describe service %s: %s",
				util.ShortName(aws.ToString(f.Arn)), aws.ToString(f.Reason))
		}
		for _, svc := range out.Services {
			defs[aws.ToString(svc.ServiceName)] = aws.ToString(svc.TaskDefinition)
		}
	}
	return defs, nil
}

// SetDesiredCount updates the desired replica count of the service.
func (c *Client) SetDesiredCount(ctx context.Context, service string, count int32) error {
	c.log.Debugf("setting desired count of service %s in cluster %s to %d", service, c.cluster, count)
	_, err := c.api.UpdateService(ctx, &ecs.UpdateServiceInput{
		Cluster:      aws.String(c.cluster),
		Service:      aws.String(service),
		DesiredCount: aws.Int32(count),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to set desired count of service %s to %d", service, count)
	}
	return nil
}
