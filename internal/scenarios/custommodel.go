// Package scenarios holds the run-indexed Pulumi programs replayed by the
// lifecycle tests, together with the output expectations of every run.
package scenarios

import (
	"errors"
	"fmt"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	datarobotsdk "github.com/datarobot-community/pulumi-datarobot/sdk/go/datarobot"

	"github.com/derluke/pulumi-datarobot-tests/internal/fixtures"
	"github.com/derluke/pulumi-datarobot-tests/pkg/datarobot"
)

// ErrUnknownRun is returned for run numbers a scenario does not define.
var ErrUnknownRun = errors.New("unknown run")

// Variant selects the flavour of the custom model scenario.
type Variant int

const (
	// WithDeployment registers and deploys the custom model.
	WithDeployment Variant = iota
	// WithoutDeployment creates the custom model only.
	WithoutDeployment
)

func (v Variant) String() string {
	switch v {
	case WithDeployment:
		return "custom-model"
	case WithoutDeployment:
		return "custom-model-no-deployment"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

const (
	customModelMemoryMB = 4096
	customModelRuns     = 8
)

// CustomModel declares the custom model scenario at the given run.
//
//  1. create from a folder
//  2. identical
//  3. memory raised to 4096 MB
//  4. credential runtime parameter added
//  5. identical
//  6. explicit file list (with deployment) or another folder (without)
//  7. updated folder
//  8. identical
func CustomModel(ctx *pulumi.Context, run int, variant Variant, fx *fixtures.Fixtures) error {
	if run < 1 || run > customModelRuns {
		return fmt.Errorf("%w %d for %s", ErrUnknownRun, run, variant)
	}

	model := datarobot.CustomModelArgs{
		ResourceName:        "test-custom-model",
		Name:                "pytest custom model",
		Description:         "pytest custom model",
		BaseEnvironmentID:   fixtures.SklearnDropInEnvironmentID,
		BaseEnvironmentName: fixtures.SklearnDropInEnvironmentName,
		TargetType:          datarobot.TargetTypeRegression,
		TargetName:          "dummy",
	}

	var err error
	switch {
	case run <= 5:
		model.FolderPath, err = fx.ModelFolder()
	case run == 6 && variant == WithDeployment:
		model.Files, err = fx.ModelFiles()
	case run == 6:
		model.FolderPath, err = fx.AnotherModelFolder()
	default:
		model.FolderPath, err = fx.UpdatedModelFolder()
	}
	if err != nil {
		return fmt.Errorf("failed to prepare model files for run %d: %w", run, err)
	}

	if run >= 3 {
		memory := customModelMemoryMB
		model.MemoryMB = &memory
	}

	if run >= 4 {
		params, err := dummyCredentialParameters(ctx)
		if err != nil {
			return err
		}
		model.RuntimeParameterValues = params
	}

	args := &datarobot.CustomModelDeploymentArgs{
		CustomModel: model,
	}
	if variant == WithDeployment {
		args.Deploy = true
		args.RegisteredModel = &datarobot.RegisteredModelArgs{
			ResourceName: "test-registered-model",
			Name:         "pytest registered model",
		}
		args.PredictionEnvironment = &datarobot.PredictionEnvironmentArgs{
			ResourceName: "test-prediction-environment",
			Name:         "pytest prediction environment",
			Platform:     datarobot.PlatformDataRobotServerless,
		}
		args.Deployment = &datarobot.DeploymentArgs{
			ResourceName: "test-deployment",
			Label:        "pytest deployment",
		}
	}

	modelDeployment, err := datarobot.NewCustomModelDeployment(ctx, "pytest", args)
	if err != nil {
		return fmt.Errorf("failed to declare custom model for run %d: %w", run, err)
	}

	ctx.Export(OutputCustomModelID, modelDeployment.GetCustomModel().ID())
	ctx.Export(OutputCustomModelVersionID, modelDeployment.GetCustomModel().VersionId)
	if modelDeployment.Deployed {
		ctx.Export(OutputRegisteredModelVersionID, modelDeployment.GetRegisteredModel().VersionId)
		ctx.Export(OutputDeploymentID, modelDeployment.GetDeployment().ID())
	}

	return nil
}

// dummyCredentialParameters creates a throwaway API token credential and binds it to
// the runtime parameter declared in the model metadata.
func dummyCredentialParameters(ctx *pulumi.Context) ([]datarobot.RuntimeParameter, error) {
	credential, err := datarobotsdk.NewApiTokenCredential(ctx, "test-credential", &datarobotsdk.ApiTokenCredentialArgs{
		Name:     pulumi.String(fixtures.CredentialParameterName),
		ApiToken: pulumi.String("foobar"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create dummy credential: %w", err)
	}

	return []datarobot.RuntimeParameter{
		{
			Key:   fixtures.CredentialParameterName,
			Type:  datarobot.RuntimeParameterTypeCredential,
			Value: credential.ID().ToStringOutput(),
		},
	}, nil
}
