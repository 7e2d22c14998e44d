// Package main provides a basic example using the CustomModelDeployment component.
package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"go.uber.org/zap"

	"github.com/derluke/pulumi-datarobot-tests/pkg/datarobot"
	"github.com/derluke/pulumi-datarobot-tests/pkg/datarobot/config"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	pulumi.Run(func(ctx *pulumi.Context) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		llmCredentials, err := cfg.ToLLMCredentials()
		if err != nil {
			return err
		}

		var credentials []*datarobot.DRCredential
		if llmCredentials != nil {
			credential, err := datarobot.NewDRCredential(ctx, "example-llm-credential", llmCredentials, &datarobot.CredentialArgs{
				ResourceName: "example-llm-credential",
				Name:         cfg.ModelName + " LLM credential",
			})
			if err != nil {
				return err
			}
			credentials = append(credentials, credential)
			ctx.Export("credentialId", credential.CredentialID())
		}

		args, err := cfg.ToCustomModelDeploymentArgs(credentials...)
		if err != nil {
			return err
		}

		modelDeployment, err := datarobot.NewCustomModelDeployment(ctx, "example-custom-model", args)
		if err != nil {
			return err
		}

		ctx.Export("customModelId", modelDeployment.GetCustomModel().ID())
		ctx.Export("customModelVersionId", modelDeployment.GetCustomModel().VersionId)
		if modelDeployment.Deployed {
			ctx.Export("deploymentId", modelDeployment.GetDeployment().ID())
		}

		return nil
	})
}
