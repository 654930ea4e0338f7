package iam

import (
	"context"
	"errors"
	"testing"

	"github.com/a-pavithraa/lambda-alias-deploy/common"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockIAMClient struct {
	err   error
	calls int
}

func (m *mockIAMClient) GetRole(ctx context.Context, input *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &iam.GetRoleOutput{
		Role: &types.Role{
			RoleName: input.RoleName,
			Arn:      aws.String("arn:aws:iam::123456789012:role/" + *input.RoleName),
		},
	}, nil
}

func TestResolveRoleArnPassesArnThrough(t *testing.T) {
	mock := &mockIAMClient{}
	sw := ServiceWrapper{Client: mock}

	arn, err := sw.ResolveRoleArn(context.TODO(), " arn:aws:iam::123456789012:role/test ")
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:iam::123456789012:role/test", arn)
	assert.Zero(t, mock.calls)
}

func TestResolveRoleArnLooksUpName(t *testing.T) {
	mock := &mockIAMClient{}
	sw := ServiceWrapper{Client: mock}

	arn, err := sw.ResolveRoleArn(context.TODO(), "test")
	require.NoError(t, err)
	assert.EqualValues(t, "arn:aws:iam::123456789012:role/test", arn)
	assert.Equal(t, 1, mock.calls)
}

func TestResolveRoleArnMissingRole(t *testing.T) {
	sw := ServiceWrapper{Client: &mockIAMClient{err: &types.NoSuchEntityException{}}}

	_, err := sw.ResolveRoleArn(context.TODO(), "test")
	var configErr *common.ConfigError
	assert.True(t, errors.As(err, &configErr))
}

func TestResolveRoleArnRemoteFailure(t *testing.T) {
	sw := ServiceWrapper{Client: &mockIAMClient{err: &types.ServiceFailureException{}}}

	_, err := sw.ResolveRoleArn(context.TODO(), "test")
	var remoteErr *common.RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, "GetRole", remoteErr.Op)
}

func TestResolveRoleArnEmpty(t *testing.T) {
	sw := ServiceWrapper{Client: &mockIAMClient{}}

	_, err := sw.ResolveRoleArn(context.TODO(), "  ")
	var configErr *common.ConfigError
	assert.True(t, errors.As(err, &configErr))
}
