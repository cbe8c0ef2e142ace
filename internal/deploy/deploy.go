// Package deploy provisions the hosted real-time inference endpoint: it
// uploads the model artifact, registers a model, creates an endpoint config
// and creates the endpoint.
package deploy

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/google/uuid"

	"github.com/DebasishMaji/ecommerce-personalization/internal/config"
)

// SageMakerAPI is the subset of the SageMaker client used to deploy.
type SageMakerAPI interface {
	CreateModel(ctx context.Context, in *sagemaker.CreateModelInput, optFns ...func(*sagemaker.Options)) (*sagemaker.CreateModelOutput, error)
	CreateEndpointConfig(ctx context.Context, in *sagemaker.CreateEndpointConfigInput, optFns ...func(*sagemaker.Options)) (*sagemaker.CreateEndpointConfigOutput, error)
	CreateEndpoint(ctx context.Context, in *sagemaker.CreateEndpointInput, optFns ...func(*sagemaker.Options)) (*sagemaker.CreateEndpointOutput, error)
	DescribeEndpoint(ctx context.Context, in *sagemaker.DescribeEndpointInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DescribeEndpointOutput, error)
}

// ObjectUploader is the subset of the S3 client used to upload the artifact.
type ObjectUploader interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Result names the resources a deployment created.
type Result struct {
	ModelName          string
	EndpointConfigName string
	EndpointName       string
	EndpointArn        string
	ModelData          string
}

// Deployer drives the hosting service's API.
type Deployer struct {
	sm     SageMakerAPI
	s3     ObjectUploader
	logger *slog.Logger

	now   func() time.Time
	newID func() string
}

// New returns a Deployer over the given clients.
func New(sm SageMakerAPI, up ObjectUploader, logger *slog.Logger) *Deployer {
	return &Deployer{
		sm:     sm,
		s3:     up,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.NewString()[:8] },
	}
}

// NewFromConfig builds SageMaker and S3 clients from the default AWS
// credential chain.
func NewFromConfig(ctx context.Context, cfg config.DeployConfig, logger *slog.Logger) (*Deployer, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return New(sagemaker.NewFromConfig(awsCfg), s3.NewFromConfig(awsCfg), logger), nil
}

// Deploy uploads the artifact (when cfg.Upload is set) and provisions the
// endpoint. Errors from the service are returned wrapped with the step.
func (d *Deployer) Deploy(ctx context.Context, cfg config.DeployConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if p := cfg.Placeholders(); len(p) > 0 {
		d.logger.Warn("deploy settings still hold placeholder values", "fields", strings.Join(p, ","))
	}

	res := &Result{ModelData: cfg.ModelData}
	if cfg.Upload {
		if err := d.upload(ctx, cfg.ModelPath, cfg.ModelData); err != nil {
			return nil, err
		}
	}

	res.ModelName = d.nameFromBase(cfg.BaseName)
	_, err := d.sm.CreateModel(ctx, &sagemaker.CreateModelInput{
		ModelName:        aws.String(res.ModelName),
		ExecutionRoleArn: aws.String(cfg.RoleARN),
		PrimaryContainer: &types.ContainerDefinition{
			Image:        aws.String(cfg.ImageURI),
			ModelDataUrl: aws.String(cfg.ModelData),
			Environment: map[string]string{
				"SM_MODEL_DIR": "/opt/ml/model",
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create model %s: %w", res.ModelName, err)
	}
	d.logger.Info("model registered", "model", res.ModelName, "model_data", cfg.ModelData)

	res.EndpointConfigName = res.ModelName
	_, err = d.sm.CreateEndpointConfig(ctx, &sagemaker.CreateEndpointConfigInput{
		EndpointConfigName: aws.String(res.EndpointConfigName),
		ProductionVariants: []types.ProductionVariant{{
			VariantName:          aws.String("AllTraffic"),
			ModelName:            aws.String(res.ModelName),
			InitialInstanceCount: aws.Int32(cfg.InstanceCount),
			InstanceType:         types.ProductionVariantInstanceType(cfg.InstanceType),
			InitialVariantWeight: aws.Float32(1),
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("create endpoint config %s: %w", res.EndpointConfigName, err)
	}

	res.EndpointName = cfg.EndpointName
	if res.EndpointName == "" {
		res.EndpointName = res.ModelName
	}
	out, err := d.sm.CreateEndpoint(ctx, &sagemaker.CreateEndpointInput{
		EndpointName:       aws.String(res.EndpointName),
		EndpointConfigName: aws.String(res.EndpointConfigName),
	})
	if err != nil {
		return nil, fmt.Errorf("create endpoint %s: %w", res.EndpointName, err)
	}
	res.EndpointArn = aws.ToString(out.EndpointArn)
	d.logger.Info("endpoint creating", "endpoint", res.EndpointName, "instance_type", cfg.InstanceType, "instances", cfg.InstanceCount)

	if cfg.Wait {
		timeout := cfg.WaitTimeout
		if timeout <= 0 {
			timeout = defaultWaitTimeout
		}
		waiter := sagemaker.NewEndpointInServiceWaiter(d.sm)
		err := waiter.Wait(ctx, &sagemaker.DescribeEndpointInput{EndpointName: aws.String(res.EndpointName)}, timeout)
		if err != nil {
			return res, fmt.Errorf("wait for endpoint %s: %w", res.EndpointName, err)
		}
		d.logger.Info("endpoint in service", "endpoint", res.EndpointName)
	}
	return res, nil
}

func (d *Deployer) upload(ctx context.Context, modelPath, s3URI string) error {
	bucket, key, err := parseS3Path(s3URI)
	if err != nil {
		return err
	}
	body, err := PackageModel(modelPath)
	if err != nil {
		return fmt.Errorf("package model: %w", err)
	}
	_, err = d.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/gzip"),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", s3URI, err)
	}
	d.logger.Info("model artifact uploaded", "uri", s3URI, "bytes", len(body))
	return nil
}

const (
	// maxNameLen is the hosting service's limit on resource names.
	maxNameLen         = 63
	defaultWaitTimeout = 30 * time.Minute
)

// nameFromBase appends a timestamp and short random suffix to base.
func (d *Deployer) nameFromBase(base string) string {
	suffix := d.now().UTC().Format("2006-01-02-15-04-05") + "-" + d.newID()
	if room := maxNameLen - len(suffix) - 1; len(base) > room {
		base = strings.TrimRight(base[:room], "-")
	}
	return base + "-" + suffix
}
