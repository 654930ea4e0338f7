package lambda

import (
	"context"
	"errors"
	"fmt"

	"github.com/a-pavithraa/lambda-alias-deploy/common"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/smithy-go"
)

func Client(ctx context.Context, region string) (*lambda.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return lambda.NewFromConfig(cfg), nil
}

// checkExistence maps the result of a Get call onto the three outcomes.
func checkExistence(err error) common.CheckResult {
	if err == nil {
		return common.Found()
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.(type) {
		case *types.ResourceNotFoundException:
			return common.Missing()
		}
	}
	return common.Failed(err)
}

func (wrapper ServiceWrapper) FunctionExists(ctx context.Context, name string) common.CheckResult {
	_, err := wrapper.Client.GetFunction(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(name),
	})
	return checkExistence(err)
}

func (wrapper ServiceWrapper) AliasExists(ctx context.Context, name string, environment string) common.CheckResult {
	_, err := wrapper.Client.GetAlias(ctx, &lambda.GetAliasInput{
		FunctionName: aws.String(name),
		Name:         aws.String(environment),
	})
	return checkExistence(err)
}

// CreateFunction creates the function with its full configuration and
// publishes version 1 in the same call.
func (wrapper ServiceWrapper) CreateFunction(ctx context.Context, cfg common.DeploymentConfig, code []byte) (string, error) {
	output, err := wrapper.Client.CreateFunction(ctx, &lambda.CreateFunctionInput{
		FunctionName: aws.String(cfg.FunctionName),
		Runtime:      types.Runtime(cfg.Runtime),
		Role:         aws.String(cfg.IAMRole),
		Handler:      aws.String(cfg.Handler),
		Description:  aws.String(cfg.Description),
		Timeout:      aws.Int32(int32(cfg.Timeout)),
		MemorySize:   aws.Int32(int32(cfg.MemorySize)),
		Code:         &types.FunctionCode{ZipFile: code},
		Publish:      true,
	})
	if err != nil {
		return "", &common.RemoteError{Op: "CreateFunction", Err: err}
	}
	return aws.ToString(output.Version), nil
}

// UpdateFunctionCode uploads new code and publishes it. The platform returns
// the latest existing version when the code is unchanged.
func (wrapper ServiceWrapper) UpdateFunctionCode(ctx context.Context, name string, code []byte) (string, error) {
	output, err := wrapper.Client.UpdateFunctionCode(ctx, &lambda.UpdateFunctionCodeInput{
		FunctionName: aws.String(name),
		ZipFile:      code,
		Publish:      true,
	})
	if err != nil {
		return "", &common.RemoteError{Op: "UpdateFunctionCode", Err: err}
	}
	version := aws.ToString(output.Version)
	if version == "" || version == latestVersion {
		return wrapper.PublishVersion(ctx, name)
	}
	return version, nil
}

func (wrapper ServiceWrapper) PublishVersion(ctx context.Context, name string) (string, error) {
	output, err := wrapper.Client.PublishVersion(ctx, &lambda.PublishVersionInput{
		FunctionName: aws.String(name),
	})
	if err != nil {
		return "", &common.RemoteError{Op: "PublishVersion", Err: err}
	}
	return aws.ToString(output.Version), nil
}

// WaitForUpdate blocks until the last update of the function has finished,
// so that a configuration update does not conflict with a code update.
func (wrapper ServiceWrapper) WaitForUpdate(ctx context.Context, name string) error {
	maxWait := wrapper.UpdateWait
	if maxWait <= 0 {
		maxWait = DefaultUpdateWait
	}
	waiter := lambda.NewFunctionUpdatedV2Waiter(wrapper.Client)
	err := waiter.Wait(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(name),
	}, maxWait)
	if err != nil {
		return &common.RemoteError{Op: "WaitForUpdate", Err: err}
	}
	return nil
}

// UpdateFunctionConfiguration applies role, handler, description, timeout and
// memory. Code is left untouched.
func (wrapper ServiceWrapper) UpdateFunctionConfiguration(ctx context.Context, cfg common.DeploymentConfig) error {
	_, err := wrapper.Client.UpdateFunctionConfiguration(ctx, &lambda.UpdateFunctionConfigurationInput{
		FunctionName: aws.String(cfg.FunctionName),
		Role:         aws.String(cfg.IAMRole),
		Handler:      aws.String(cfg.Handler),
		Description:  aws.String(cfg.Description),
		Timeout:      aws.Int32(int32(cfg.Timeout)),
		MemorySize:   aws.Int32(int32(cfg.MemorySize)),
	})
	if err != nil {
		return &common.RemoteError{Op: "UpdateFunctionConfiguration", Err: err}
	}
	return nil
}

func (wrapper ServiceWrapper) CreateAlias(ctx context.Context, name string, environment string, version string) error {
	_, err := wrapper.Client.CreateAlias(ctx, &lambda.CreateAliasInput{
		FunctionName:    aws.String(name),
		Name:            aws.String(environment),
		FunctionVersion: aws.String(version),
	})
	if err != nil {
		return &common.RemoteError{Op: "CreateAlias", Err: err}
	}
	return nil
}

func (wrapper ServiceWrapper) UpdateAlias(ctx context.Context, name string, environment string, version string) error {
	_, err := wrapper.Client.UpdateAlias(ctx, &lambda.UpdateAliasInput{
		FunctionName:    aws.String(name),
		Name:            aws.String(environment),
		FunctionVersion: aws.String(version),
	})
	if err != nil {
		return &common.RemoteError{Op: "UpdateAlias", Err: err}
	}
	return nil
}

// ListAliases returns every alias of the function. A non-empty version
// restricts the listing to aliases routing to that version.
func (wrapper ServiceWrapper) ListAliases(ctx context.Context, name string, version string) ([]common.AliasBinding, error) {
	input := &lambda.ListAliasesInput{
		FunctionName: aws.String(name),
	}
	if version != "" {
		input.FunctionVersion = aws.String(version)
	}

	var aliases []common.AliasBinding
	paginator := lambda.NewListAliasesPaginator(wrapper.Client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &common.RemoteError{Op: "ListAliases", Err: err}
		}
		for _, alias := range page.Aliases {
			aliases = append(aliases, common.AliasBinding{
				Name:            aws.ToString(alias.Name),
				FunctionVersion: aws.ToString(alias.FunctionVersion),
			})
		}
	}
	return aliases, nil
}

// ListVersions returns the published versions of the function, oldest first.
func (wrapper ServiceWrapper) ListVersions(ctx context.Context, name string) ([]string, error) {
	var versions []string
	paginator := lambda.NewListVersionsByFunctionPaginator(wrapper.Client, &lambda.ListVersionsByFunctionInput{
		FunctionName: aws.String(name),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &common.RemoteError{Op: "ListVersionsByFunction", Err: err}
		}
		for _, fn := range page.Versions {
			if v := aws.ToString(fn.Version); v != latestVersion {
				versions = append(versions, v)
			}
		}
	}
	return versions, nil
}
