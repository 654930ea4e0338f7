// Package config loads deployment parameters from the project's YAML file.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/a-pavithraa/lambda-alias-deploy/common"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	DefaultPath = "bin/.lambda-deploy.yml"
	EnvPrefix   = "LAMBDA_DEPLOY"
)

var requiredKeys = []string{
	"function_name",
	"runtime",
	"description",
	"timeout",
	"memory_size",
	"iam_role",
	"handler",
	"omit_directories",
	"omit_files",
	"region",
}

var optionalKeys = []string{"source_dir", "output_dir"}

var integerKeys = []string{"timeout", "memory_size"}

type fileConfig struct {
	FunctionName    string   `mapstructure:"function_name" validate:"required"`
	Runtime         string   `mapstructure:"runtime" validate:"required"`
	Description     string   `mapstructure:"description"`
	Timeout         int      `mapstructure:"timeout" validate:"min=1,max=900"`
	MemorySize      int      `mapstructure:"memory_size" validate:"min=128,max=10240"`
	IAMRole         string   `mapstructure:"iam_role" validate:"required"`
	Handler         string   `mapstructure:"handler" validate:"required"`
	OmitDirectories []string `mapstructure:"omit_directories"`
	OmitFiles       []string `mapstructure:"omit_files"`
	Region          string   `mapstructure:"region" validate:"required"`
	SourceDir       string   `mapstructure:"source_dir"`
	OutputDir       string   `mapstructure:"output_dir"`
}

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
	})
}

// Load reads the file at path and combines it with the target environment.
// LAMBDA_DEPLOY_<KEY> variables override values from the file.
func Load(path string, env string) (common.DeploymentConfig, error) {
	environment, ok := common.ParseEnvironment(strings.TrimSpace(env))
	if !ok {
		return common.DeploymentConfig{}, &common.ConfigError{
			Message: fmt.Sprintf("unknown environment %q, expected one of %s", env, environmentNames()),
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("source_dir", ".")
	v.SetDefault("output_dir", "bin")

	if err := v.ReadInConfig(); err != nil {
		var parseErr viper.ConfigParseError
		if errors.As(err, &parseErr) {
			return common.DeploymentConfig{}, &common.ConfigError{Message: "malformed config file " + path, Err: err}
		}
		return common.DeploymentConfig{}, &common.ConfigError{Message: "cannot read config file " + path, Err: err}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// Unmarshal only decodes keys viper knows about, so a key set only in
	// the environment has to be bound explicitly.
	for _, key := range slices.Concat(requiredKeys, optionalKeys) {
		if err := v.BindEnv(key); err != nil {
			return common.DeploymentConfig{}, &common.ConfigError{Message: "cannot bind " + key, Err: err}
		}
	}

	var errorMessage strings.Builder
	for _, key := range requiredKeys {
		if !v.IsSet(key) {
			errorMessage.WriteString(fmt.Sprintf("%s is required.\n", key))
		}
	}
	for _, key := range integerKeys {
		if v.IsSet(key) && !isInteger(v.Get(key)) {
			errorMessage.WriteString(fmt.Sprintf("%s must be an integer.\n", key))
		}
	}
	if errorMessage.Len() > 0 {
		return common.DeploymentConfig{}, &common.ConfigError{Message: strings.TrimSpace(errorMessage.String())}
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return common.DeploymentConfig{}, &common.ConfigError{Message: "invalid config values", Err: err}
	}
	if err := validate.Struct(fc); err != nil {
		return common.DeploymentConfig{}, &common.ConfigError{Message: describe(err)}
	}

	return common.DeploymentConfig{
		FunctionName:  strings.TrimSpace(fc.FunctionName),
		Runtime:       strings.TrimSpace(fc.Runtime),
		Description:   fc.Description,
		Timeout:       fc.Timeout,
		MemorySize:    fc.MemorySize,
		IAMRole:       strings.TrimSpace(fc.IAMRole),
		Handler:       strings.TrimSpace(fc.Handler),
		Region:        strings.TrimSpace(fc.Region),
		ExcludedDirs:  fc.OmitDirectories,
		ExcludedFiles: fc.OmitFiles,
		Environment:   environment,
		SourceDir:     fc.SourceDir,
		OutputDir:     fc.OutputDir,
	}, nil
}

// isInteger accepts YAML integers and, for environment overrides, strings
// holding a base-10 integer.
func isInteger(value any) bool {
	switch val := value.(type) {
	case int, int32, int64, uint, uint32, uint64:
		return true
	case string:
		_, err := strconv.Atoi(strings.TrimSpace(val))
		return err == nil
	default:
		return false
	}
}

func describe(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}
	var b strings.Builder
	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "required":
			b.WriteString(fmt.Sprintf("%s cannot be empty.\n", fe.Field()))
		case "min":
			b.WriteString(fmt.Sprintf("%s must be at least %s.\n", fe.Field(), fe.Param()))
		case "max":
			b.WriteString(fmt.Sprintf("%s must be at most %s.\n", fe.Field(), fe.Param()))
		default:
			b.WriteString(fmt.Sprintf("%s is invalid (%s).\n", fe.Field(), fe.Tag()))
		}
	}
	return strings.TrimSpace(b.String())
}

func environmentNames() string {
	names := make([]string, 0, len(common.Environments))
	for _, env := range common.Environments {
		names = append(names, string(env))
	}
	return strings.Join(names, ", ")
}
