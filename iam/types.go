package iam

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/iam"
)

type Api interface {
	GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error)
}

type ServiceWrapper struct {
	Client Api
}
