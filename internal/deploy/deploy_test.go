package deploy

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DebasishMaji/ecommerce-personalization/internal/config"
	"github.com/DebasishMaji/ecommerce-personalization/internal/logging"
)

type fakeSageMaker struct {
	calls          []string
	model          *sagemaker.CreateModelInput
	endpointConfig *sagemaker.CreateEndpointConfigInput
	endpoint       *sagemaker.CreateEndpointInput
	failOn         string
}

func (f *fakeSageMaker) record(call string) error {
	f.calls = append(f.calls, call)
	if call == f.failOn {
		return errors.New("access denied")
	}
	return nil
}

func (f *fakeSageMaker) CreateModel(_ context.Context, in *sagemaker.CreateModelInput, _ ...func(*sagemaker.Options)) (*sagemaker.CreateModelOutput, error) {
	f.model = in
	if err := f.record("CreateModel"); err != nil {
		return nil, err
	}
	return &sagemaker.CreateModelOutput{}, nil
}

func (f *fakeSageMaker) CreateEndpointConfig(_ context.Context, in *sagemaker.CreateEndpointConfigInput, _ ...func(*sagemaker.Options)) (*sagemaker.CreateEndpointConfigOutput, error) {
	f.endpointConfig = in
	if err := f.record("CreateEndpointConfig"); err != nil {
		return nil, err
	}
	return &sagemaker.CreateEndpointConfigOutput{}, nil
}

func (f *fakeSageMaker) CreateEndpoint(_ context.Context, in *sagemaker.CreateEndpointInput, _ ...func(*sagemaker.Options)) (*sagemaker.CreateEndpointOutput, error) {
	f.endpoint = in
	if err := f.record("CreateEndpoint"); err != nil {
		return nil, err
	}
	return &sagemaker.CreateEndpointOutput{EndpointArn: aws.String("arn:aws:sagemaker:us-east-1:123:endpoint/" + aws.ToString(in.EndpointName))}, nil
}

func (f *fakeSageMaker) DescribeEndpoint(_ context.Context, in *sagemaker.DescribeEndpointInput, _ ...func(*sagemaker.Options)) (*sagemaker.DescribeEndpointOutput, error) {
	if err := f.record("DescribeEndpoint"); err != nil {
		return nil, err
	}
	return &sagemaker.DescribeEndpointOutput{
		EndpointName:   in.EndpointName,
		EndpointStatus: types.EndpointStatusInService,
	}, nil
}

type fakeUploader struct {
	in   *s3.PutObjectInput
	body []byte
}

func (f *fakeUploader) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	raw, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = raw
	return &s3.PutObjectOutput{}, nil
}

func newTestDeployer(sm SageMakerAPI, up ObjectUploader) *Deployer {
	d := New(sm, up, logging.Discard())
	d.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	d.newID = func() string { return "abcd1234" }
	return d
}

func testDeployConfig() config.DeployConfig {
	cfg := config.Default().Deploy
	cfg.RoleARN = "arn:aws:iam::123:role/sm"
	cfg.ModelData = "s3://models/ecomml/model.tar.gz"
	cfg.ImageURI = "123.dkr.ecr.us-east-1.amazonaws.com/ecomml:latest"
	cfg.Wait = false
	return cfg
}

func TestDeploy_CreatesResourcesInOrder(t *testing.T) {
	sm := &fakeSageMaker{}
	d := newTestDeployer(sm, &fakeUploader{})

	res, err := d.Deploy(context.Background(), testDeployConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"CreateModel", "CreateEndpointConfig", "CreateEndpoint"}, sm.calls)
	name := "ecommerce-personalization-2024-01-02-03-04-05-abcd1234"
	assert.Equal(t, name, res.ModelName)
	assert.Equal(t, name, res.EndpointConfigName)
	assert.Equal(t, name, res.EndpointName)
	assert.Equal(t, "arn:aws:sagemaker:us-east-1:123:endpoint/"+name, res.EndpointArn)

	assert.Equal(t, "arn:aws:iam::123:role/sm", aws.ToString(sm.model.ExecutionRoleArn))
	assert.Equal(t, "s3://models/ecomml/model.tar.gz", aws.ToString(sm.model.PrimaryContainer.ModelDataUrl))
	assert.Equal(t, map[string]string{"SM_MODEL_DIR": "/opt/ml/model"}, sm.model.PrimaryContainer.Environment)
	assert.Equal(t, "123.dkr.ecr.us-east-1.amazonaws.com/ecomml:latest", aws.ToString(sm.model.PrimaryContainer.Image))

	require.Len(t, sm.endpointConfig.ProductionVariants, 1)
	v := sm.endpointConfig.ProductionVariants[0]
	assert.Equal(t, name, aws.ToString(v.ModelName))
	assert.Equal(t, int32(1), aws.ToInt32(v.InitialInstanceCount))
	assert.Equal(t, types.ProductionVariantInstanceType("ml.m4.xlarge"), v.InstanceType)
	assert.Equal(t, name, aws.ToString(sm.endpoint.EndpointConfigName))
}

func TestDeploy_NamedEndpoint(t *testing.T) {
	sm := &fakeSageMaker{}
	cfg := testDeployConfig()
	cfg.EndpointName = "ecomml-prod"

	res, err := newTestDeployer(sm, &fakeUploader{}).Deploy(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "ecomml-prod", res.EndpointName)
	assert.Equal(t, "ecomml-prod", aws.ToString(sm.endpoint.EndpointName))
	assert.NotEqual(t, res.EndpointName, res.ModelName)
}

func TestDeploy_WaitsForInService(t *testing.T) {
	sm := &fakeSageMaker{}
	cfg := testDeployConfig()
	cfg.Wait = true

	_, err := newTestDeployer(sm, &fakeUploader{}).Deploy(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "DescribeEndpoint", sm.calls[len(sm.calls)-1])
}

func TestDeploy_ErrorStopsPipeline(t *testing.T) {
	sm := &fakeSageMaker{failOn: "CreateEndpointConfig"}
	_, err := newTestDeployer(sm, &fakeUploader{}).Deploy(context.Background(), testDeployConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create endpoint config")
	assert.Contains(t, err.Error(), "access denied")
	assert.Equal(t, []string{"CreateModel", "CreateEndpointConfig"}, sm.calls)
}

func TestDeploy_InvalidConfig(t *testing.T) {
	sm := &fakeSageMaker{}
	cfg := testDeployConfig()
	cfg.ImageURI = ""
	_, err := newTestDeployer(sm, &fakeUploader{}).Deploy(context.Background(), cfg)
	assert.ErrorContains(t, err, "image_uri")
	assert.Empty(t, sm.calls)
}

func TestDeploy_Upload(t *testing.T) {
	modelPath := filepath.Join(t.TempDir(), "model.bin")
	require.NoError(t, os.WriteFile(modelPath, []byte("booster-bytes"), 0o644))

	cfg := testDeployConfig()
	cfg.Upload = true
	cfg.ModelPath = modelPath
	up := &fakeUploader{}

	_, err := newTestDeployer(&fakeSageMaker{}, up).Deploy(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "models", aws.ToString(up.in.Bucket))
	assert.Equal(t, "ecomml/model.tar.gz", aws.ToString(up.in.Key))
	assert.Equal(t, map[string]string{ArtifactFile: "booster-bytes"}, untar(t, up.body))
}

func TestPackageModel_MissingFile(t *testing.T) {
	_, err := PackageModel(filepath.Join(t.TempDir(), "absent.bin"))
	assert.Error(t, err)
}

func TestParseS3Path(t *testing.T) {
	bucket, key, err := parseS3Path("s3://b/k/model.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, "b", bucket)
	assert.Equal(t, "k/model.tar.gz", key)

	_, _, err = parseS3Path("https://b/k")
	assert.Error(t, err)
	_, _, err = parseS3Path("s3://b/")
	assert.Error(t, err)
}

func TestNameFromBase_Truncates(t *testing.T) {
	d := newTestDeployer(&fakeSageMaker{}, &fakeUploader{})
	name := d.nameFromBase(strings.Repeat("a", 80))
	assert.LessOrEqual(t, len(name), maxNameLen)
	assert.True(t, strings.HasSuffix(name, "-2024-01-02-03-04-05-abcd1234"))
}

func untar(t *testing.T, raw []byte) map[string]string {
	t.Helper()
	gz, err := gzip.NewReader(bytes.NewReader(raw))
	require.NoError(t, err)
	tr := tar.NewReader(gz)
	files := map[string]string{}
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		body, err := io.ReadAll(tr)
		require.NoError(t, err)
		files[hdr.Name] = string(body)
	}
	return files
}
