package iam

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/a-pavithraa/lambda-alias-deploy/common"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"
)

func Client(ctx context.Context, region string) (*iam.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return iam.NewFromConfig(cfg), nil
}

// ResolveRoleArn returns role unchanged when it is already an ARN and looks
// the role up by name otherwise.
func (wrapper ServiceWrapper) ResolveRoleArn(ctx context.Context, role string) (string, error) {
	if common.TrimAndCheckEmptyString(&role) {
		return "", &common.ConfigError{Message: "iam_role cannot be empty"}
	}
	if strings.HasPrefix(role, "arn:") {
		return role, nil
	}

	result, err := wrapper.Client.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(role)})
	if err != nil {
		var noSuchEntity *types.NoSuchEntityException
		if errors.As(err, &noSuchEntity) {
			return "", &common.ConfigError{Message: fmt.Sprintf("iam role %s does not exist", role), Err: err}
		}
		return "", &common.RemoteError{Op: "GetRole", Err: err}
	}
	if result.Role == nil || result.Role.Arn == nil {
		return "", &common.RemoteError{Op: "GetRole", Err: fmt.Errorf("role %s has no arn", role)}
	}
	slog.Debug("resolved iam role", "role", role, "arn", *result.Role.Arn)
	return *result.Role.Arn, nil
}
