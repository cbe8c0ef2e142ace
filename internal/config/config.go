// Package config holds the pipeline's paths, hyperparameters and cloud
// settings. Values start from hard-coded defaults and can be overridden by a
// YAML file, then by environment variables, then by command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// PreprocessConfig configures the raw → processed stage.
type PreprocessConfig struct {
	RawPath            string   `yaml:"raw_path"`
	OutputPath         string   `yaml:"output_path"`
	CategoricalColumns []string `yaml:"categorical_columns"`
}

// TrainConfig configures the processed → model stage.
type TrainConfig struct {
	DataPath       string  `yaml:"data_path"`
	ModelPath      string  `yaml:"model_path"`
	TargetColumn   string  `yaml:"target_column"` // empty => first column
	TestRatio      float64 `yaml:"test_ratio"`
	Seed           int64   `yaml:"seed"`
	MaxDepth       int     `yaml:"max_depth"`
	Eta            float64 `yaml:"eta"`
	Rounds         int     `yaml:"rounds"`
	Objective      string  `yaml:"objective"`
	Lambda         float64 `yaml:"lambda"`
	Gamma          float64 `yaml:"gamma"`
	MinChildWeight float64 `yaml:"min_child_weight"`
	Workers        int     `yaml:"workers"`
}

// EvaluateConfig configures the placeholder evaluation stage.
type EvaluateConfig struct {
	ModelPath string `yaml:"model_path"`
	PlotPath  string `yaml:"plot_path"`
}

// DeployConfig configures the hosted endpoint.
type DeployConfig struct {
	Region        string        `yaml:"region"`
	RoleARN       string        `yaml:"role_arn"`
	ModelData     string        `yaml:"model_data"` // s3:// URI of model.tar.gz
	ImageURI      string        `yaml:"image_uri"`
	InstanceType  string        `yaml:"instance_type"`
	InstanceCount int32         `yaml:"instance_count"`
	BaseName      string        `yaml:"base_name"`
	EndpointName  string        `yaml:"endpoint_name"` // empty => generated
	ModelPath     string        `yaml:"model_path"`
	Upload        bool          `yaml:"upload"`
	Wait          bool          `yaml:"wait"`
	WaitTimeout   time.Duration `yaml:"wait_timeout"`
}

// ServeConfig configures the hosted-side inference container.
type ServeConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	ModelDir   string `yaml:"model_dir"`
}

// ProxyConfig configures the serverless proxy.
type ProxyConfig struct {
	EndpointName string `yaml:"endpoint_name"`
	ContentType  string `yaml:"content_type"`
}

// Config is the full pipeline configuration.
type Config struct {
	LogLevel   string           `yaml:"log_level"` // debug, info, warn, error (default "info")
	Preprocess PreprocessConfig `yaml:"preprocess"`
	Train      TrainConfig      `yaml:"train"`
	Evaluate   EvaluateConfig   `yaml:"evaluate"`
	Deploy     DeployConfig     `yaml:"deploy"`
	Serve      ServeConfig      `yaml:"serve"`
	Proxy      ProxyConfig      `yaml:"proxy"`
}

// Placeholder identifiers that must be edited before deploying.
const (
	PlaceholderRoleARN   = "arn:aws:iam::YOUR_ACCOUNT_ID:role/YourSageMakerRole"
	PlaceholderModelData = "s3://your-s3-bucket/ecommerce-personalization/model/model.tar.gz"
	PlaceholderImageURI  = "YOUR_ACCOUNT_ID.dkr.ecr.us-east-1.amazonaws.com/ecomml-inference:latest"
)

// Default returns the hard-coded pipeline settings.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Preprocess: PreprocessConfig{
			RawPath:            "data/raw/ecommerce_data.csv",
			OutputPath:         "data_preprocessing/processed_data.csv",
			CategoricalColumns: []string{"product_category", "brand"},
		},
		Train: TrainConfig{
			DataPath:       "data_preprocessing/processed_data.csv",
			ModelPath:      "model_training/model.bin",
			TestRatio:      0.2,
			Seed:           42,
			MaxDepth:       5,
			Eta:            0.2,
			Rounds:         100,
			Objective:      "binary:logistic",
			Lambda:         1,
			MinChildWeight: 1,
		},
		Evaluate: EvaluateConfig{
			ModelPath: "model_training/model.bin",
			PlotPath:  "model_training/loss_curve.png",
		},
		Deploy: DeployConfig{
			RoleARN:       PlaceholderRoleARN,
			ModelData:     PlaceholderModelData,
			ImageURI:      PlaceholderImageURI,
			InstanceType:  "ml.m4.xlarge",
			InstanceCount: 1,
			BaseName:      "ecommerce-personalization",
			ModelPath:     "model_training/model.bin",
			Wait:          true,
			WaitTimeout:   30 * time.Minute,
		},
		Serve: ServeConfig{
			ListenAddr: ":8080",
			ModelDir:   "/opt/ml/model",
		},
		Proxy: ProxyConfig{
			ContentType: "text/csv",
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path (skipped when
// path is empty) and then with environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment. Missing files are ignored and variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv() error {
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.Preprocess.RawPath, "ECOMML_RAW_PATH")
	setString(&c.Preprocess.OutputPath, "ECOMML_PROCESSED_PATH")
	setString(&c.Train.DataPath, "ECOMML_PROCESSED_PATH")
	setString(&c.Train.ModelPath, "ECOMML_MODEL_PATH")
	setString(&c.Evaluate.ModelPath, "ECOMML_MODEL_PATH")
	setString(&c.Deploy.ModelPath, "ECOMML_MODEL_PATH")
	setString(&c.Train.TargetColumn, "ECOMML_TARGET_COLUMN")
	setString(&c.Deploy.Region, "AWS_REGION")
	setString(&c.Deploy.RoleARN, "ECOMML_ROLE_ARN")
	setString(&c.Deploy.ModelData, "ECOMML_MODEL_DATA")
	setString(&c.Deploy.ImageURI, "ECOMML_IMAGE_URI")
	setString(&c.Deploy.EndpointName, "ECOMML_ENDPOINT_NAME")
	setString(&c.Serve.ListenAddr, "ECOMML_LISTEN_ADDR")
	setString(&c.Serve.ModelDir, "SM_MODEL_DIR")
	setString(&c.Proxy.EndpointName, "ENDPOINT_NAME")

	if v := os.Getenv("ECOMML_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("ECOMML_SEED: %w", err)
		}
		c.Train.Seed = n
	}
	if v := os.Getenv("ECOMML_UPLOAD"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ECOMML_UPLOAD: %w", err)
		}
		c.Deploy.Upload = b
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks the deploy settings are present.
func (d *DeployConfig) Validate() error {
	switch {
	case d.RoleARN == "":
		return errors.New("deploy: role_arn is required")
	case d.ModelData == "":
		return errors.New("deploy: model_data is required")
	case d.ImageURI == "":
		return errors.New("deploy: image_uri is required")
	case d.InstanceType == "":
		return errors.New("deploy: instance_type is required")
	case d.InstanceCount < 1:
		return errors.New("deploy: instance_count must be at least 1")
	}
	return nil
}

// Placeholders lists the deploy fields still holding the shipped placeholder
// values.
func (d *DeployConfig) Placeholders() []string {
	var out []string
	if d.RoleARN == PlaceholderRoleARN {
		out = append(out, "role_arn")
	}
	if d.ModelData == PlaceholderModelData {
		out = append(out, "model_data")
	}
	if d.ImageURI == PlaceholderImageURI {
		out = append(out, "image_uri")
	}
	return out
}
