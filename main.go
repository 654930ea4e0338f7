package main

import (
	"log/slog"
	"os"

	"github.com/a-pavithraa/lambda-alias-deploy/config"
	"github.com/a-pavithraa/lambda-alias-deploy/deploy"
	"github.com/a-pavithraa/lambda-alias-deploy/iam"
	"github.com/a-pavithraa/lambda-alias-deploy/lambda"
	"github.com/a-pavithraa/lambda-alias-deploy/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	logger.Initialize(os.Stdout, logger.ParseLevel(os.Getenv(logger.LevelEnv)))

	if err := NewApp().Run(os.Args); err != nil {
		slog.Error("Not able to deploy the function", "reason", err)
		os.Exit(1)
	}
}

func NewApp() *cli.App {
	return &cli.App{
		Name:  "lambda-deploy",
		Usage: "Deploy Lambda Function to Specific Environment",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "env",
				Usage:    "Environment to Deploy Lambda Function: dev, stage, prod",
				Required: true,
			},
			&cli.StringFlag{
				Name:   "config",
				Value:  config.DefaultPath,
				Usage:  "yaml config file name",
				Hidden: true,
			},
		},
		Action: DeployLambda,
	}
}

func DeployLambda(cCtx *cli.Context) error {
	cfg, err := config.Load(cCtx.String("config"), cCtx.String("env"))
	if err != nil {
		return err
	}
	ctx := cCtx.Context

	iamClient, err := iam.Client(ctx, cfg.Region)
	if err != nil {
		return err
	}
	roleArn, err := iam.ServiceWrapper{Client: iamClient}.ResolveRoleArn(ctx, cfg.IAMRole)
	if err != nil {
		return err
	}
	cfg = cfg.WithRole(roleArn)

	lambdaClient, err := lambda.Client(ctx, cfg.Region)
	if err != nil {
		return err
	}
	deployer := deploy.Deployer{
		Client:   lambda.ServiceWrapper{Client: lambdaClient},
		Reporter: deploy.LogReporter{Logger: slog.Default()},
	}
	_, err = deployer.Run(ctx, cfg)
	return err
}
