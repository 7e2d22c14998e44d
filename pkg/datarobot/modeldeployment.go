package datarobot

import (
	"fmt"

	namer "github.com/davidmontoyago/commodity-namer"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	datarobotsdk "github.com/datarobot-community/pulumi-datarobot/sdk/go/datarobot"
)

// CustomModelDeploymentArgs contains configuration arguments for a custom model and,
// optionally, its registration and deployment.
type CustomModelDeploymentArgs struct {
	// Custom model to create. Required.
	CustomModel CustomModelArgs
	// Credentials whose runtime parameters are added to the custom model.
	Credentials []*DRCredential
	// Whether to register and deploy the custom model. When false, only the custom model is created.
	Deploy bool
	// Registry entry for the model version. Defaults to "<model name> registered model".
	RegisteredModel *RegisteredModelArgs
	// Prediction environment to create. Ignored when PredictionEnvironmentID is set.
	// Defaults to a serverless environment named "<model name> prediction environment".
	PredictionEnvironment *PredictionEnvironmentArgs
	// Existing prediction environment to deploy to. Optional.
	PredictionEnvironmentID pulumi.StringInput
	// Deployment settings. Defaults to a deployment labelled with the model name.
	Deployment *DeploymentArgs
}

// CustomModelDeployment represents a DataRobot custom model with its registered model
// version, prediction environment and deployment.
type CustomModelDeployment struct {
	pulumi.ResourceState
	namer.Namer

	ModelName string
	Deployed  bool

	customModel           *datarobotsdk.CustomModel
	registeredModel       *datarobotsdk.RegisteredModel
	predictionEnvironment *datarobotsdk.PredictionEnvironment
	deployment            *datarobotsdk.Deployment

	predictionEnvironmentID pulumi.StringOutput
	runtimeParameters       []RuntimeParameter
}

// NewCustomModelDeployment creates a new CustomModelDeployment with the provided configuration.
func NewCustomModelDeployment(ctx *pulumi.Context, name string, args *CustomModelDeploymentArgs, opts ...pulumi.ResourceOption) (*CustomModelDeployment, error) {
	if args == nil {
		return nil, fmt.Errorf("custom model deployment args are required")
	}
	if args.CustomModel.FolderPath == "" && len(args.CustomModel.Files) == 0 {
		return nil, fmt.Errorf("custom model folder path or files are required")
	}

	modelNamer := namer.New(name, namer.WithReplace())
	model := args.CustomModel
	model.ResourceName = setDefaultString(model.ResourceName, modelNamer.NewResourceName("custom-model", "", 63))
	if err := Validate(model); err != nil {
		return nil, err
	}

	runtimeParameters := append([]RuntimeParameter(nil), args.CustomModel.RuntimeParameterValues...)
	for _, credential := range args.Credentials {
		if credential == nil {
			return nil, fmt.Errorf("credential is nil")
		}
		runtimeParameters = append(runtimeParameters, credential.RuntimeParameters()...)
	}
	for _, param := range runtimeParameters {
		if param.Value == nil {
			return nil, fmt.Errorf("runtime parameter %s has no value", param.Key)
		}
	}

	modelDeployment := &CustomModelDeployment{
		Namer:             modelNamer,
		ModelName:         model.Name,
		Deployed:          args.Deploy,
		runtimeParameters: runtimeParameters,
	}

	err := ctx.RegisterComponentResource("pulumi-datarobot:datarobot:CustomModelDeployment", name, modelDeployment, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to register component resource: %w", err)
	}

	err = modelDeployment.deploy(ctx, model, args)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy custom model: %w", err)
	}

	outputs := pulumi.Map{
		"custom_model_id":         modelDeployment.customModel.ID(),
		"custom_model_version_id": modelDeployment.customModel.VersionId,
	}
	if modelDeployment.Deployed {
		outputs["registered_model_version_id"] = modelDeployment.registeredModel.VersionId
		outputs["prediction_environment_id"] = modelDeployment.predictionEnvironmentID
		outputs["deployment_id"] = modelDeployment.deployment.ID()
	}

	err = ctx.RegisterResourceOutputs(modelDeployment, outputs)
	if err != nil {
		return nil, fmt.Errorf("failed to register resource outputs: %w", err)
	}

	return modelDeployment, nil
}

// deploy provisions the custom model and, when requested, its serving resources.
func (m *CustomModelDeployment) deploy(ctx *pulumi.Context, model CustomModelArgs, args *CustomModelDeploymentArgs) error {
	customModel, err := m.createCustomModel(ctx, model)
	if err != nil {
		return fmt.Errorf("failed to create custom model: %w", err)
	}
	m.customModel = customModel

	if !args.Deploy {
		_ = ctx.Log.Debug("deployment disabled, provisioning the custom model only", &pulumi.LogArgs{Resource: m})

		return nil
	}

	registeredModel, err := m.registerModel(ctx, args.RegisteredModel)
	if err != nil {
		return fmt.Errorf("failed to register model: %w", err)
	}
	m.registeredModel = registeredModel

	if args.PredictionEnvironmentID != nil {
		m.predictionEnvironmentID = args.PredictionEnvironmentID.ToStringOutput()
	} else {
		predictionEnvironment, err := m.createPredictionEnvironment(ctx, args.PredictionEnvironment)
		if err != nil {
			return fmt.Errorf("failed to create prediction environment: %w", err)
		}
		m.predictionEnvironment = predictionEnvironment
		m.predictionEnvironmentID = predictionEnvironment.ID().ToStringOutput()
	}

	deployment, err := m.createDeployment(ctx, args.Deployment)
	if err != nil {
		return fmt.Errorf("failed to create deployment: %w", err)
	}
	m.deployment = deployment

	return nil
}

func (m *CustomModelDeployment) createCustomModel(ctx *pulumi.Context, model CustomModelArgs) (*datarobotsdk.CustomModel, error) {
	_ = ctx.Log.Debug(fmt.Sprintf("custom model %q runs on %s (%s)", model.Name, model.BaseEnvironmentName, model.BaseEnvironmentID), &pulumi.LogArgs{Resource: m})

	customModelArgs := &datarobotsdk.CustomModelArgs{
		Name:                     pulumi.String(model.Name),
		Description:              optionalString(model.Description),
		BaseEnvironmentId:        pulumi.String(model.BaseEnvironmentID),
		BaseEnvironmentVersionId: optionalString(model.BaseEnvironmentVersionID),
		TargetName:               optionalString(model.TargetName),
		TargetType:               optionalString(string(model.TargetType)),
		NegativeClassLabel:       optionalString(model.NegativeClassLabel),
		PositiveClassLabel:       optionalString(model.PositiveClassLabel),
	}
	if model.FolderPath != "" {
		customModelArgs.FolderPath = pulumi.String(model.FolderPath)
	} else {
		customModelArgs.Files = toProviderFiles(model.Files)
	}
	if len(model.ClassLabels) > 0 {
		customModelArgs.ClassLabels = pulumi.ToStringArray(model.ClassLabels)
	}
	if len(m.runtimeParameters) > 0 {
		customModelArgs.RuntimeParameterValues = toRuntimeParameterValueArray(m.runtimeParameters)
	}
	if model.MemoryMB != nil {
		customModelArgs.ResourceSettings = &datarobotsdk.CustomModelResourceSettingsArgs{
			MemoryMb: optionalInt(model.MemoryMB),
		}
	}
	if len(model.GuardConfigurations) > 0 {
		guards, err := toGuardConfigurationArray(model.GuardConfigurations)
		if err != nil {
			return nil, err
		}
		customModelArgs.GuardConfigurations = guards
	}

	return datarobotsdk.NewCustomModel(ctx, model.ResourceName, customModelArgs, pulumi.Parent(m))
}

func (m *CustomModelDeployment) registerModel(ctx *pulumi.Context, args *RegisteredModelArgs) (*datarobotsdk.RegisteredModel, error) {
	if args == nil {
		args = &RegisteredModelArgs{}
	}
	registered := *args
	registered.Name = setDefaultString(registered.Name, m.ModelName+" registered model")
	registered.ResourceName = setDefaultString(registered.ResourceName, m.NewResourceName("registered-model", "", 63))
	if err := Validate(registered); err != nil {
		return nil, err
	}

	return datarobotsdk.NewRegisteredModel(ctx, registered.ResourceName, &datarobotsdk.RegisteredModelArgs{
		Name:                 pulumi.String(registered.Name),
		CustomModelVersionId: m.customModel.VersionId,
	}, pulumi.Parent(m))
}

func (m *CustomModelDeployment) createPredictionEnvironment(ctx *pulumi.Context, args *PredictionEnvironmentArgs) (*datarobotsdk.PredictionEnvironment, error) {
	if args == nil {
		args = &PredictionEnvironmentArgs{}
	}
	environment := *args
	environment.Name = setDefaultString(environment.Name, m.ModelName+" prediction environment")
	if environment.Platform == "" {
		environment.Platform = PlatformDataRobotServerless
	}
	environment.ResourceName = setDefaultString(environment.ResourceName, m.NewResourceName("prediction-environment", "", 63))
	if err := Validate(environment); err != nil {
		return nil, err
	}

	return datarobotsdk.NewPredictionEnvironment(ctx, environment.ResourceName, &datarobotsdk.PredictionEnvironmentArgs{
		Name:     pulumi.String(environment.Name),
		Platform: pulumi.String(string(environment.Platform)),
	}, pulumi.Parent(m))
}

func (m *CustomModelDeployment) createDeployment(ctx *pulumi.Context, args *DeploymentArgs) (*datarobotsdk.Deployment, error) {
	if args == nil {
		args = &DeploymentArgs{}
	}
	deployment := *args
	deployment.Label = setDefaultString(deployment.Label, m.ModelName)
	deployment.ResourceName = setDefaultString(deployment.ResourceName, m.NewResourceName("deployment", "", 63))
	if err := Validate(deployment); err != nil {
		return nil, err
	}

	dependencies := []pulumi.Resource{m.registeredModel}
	if m.predictionEnvironment != nil {
		dependencies = append(dependencies, m.predictionEnvironment)
	}

	return datarobotsdk.NewDeployment(ctx, deployment.ResourceName, &datarobotsdk.DeploymentArgs{
		Label:                             pulumi.String(deployment.Label),
		RegisteredModelVersionId:          m.registeredModel.VersionId,
		PredictionEnvironmentId:           m.predictionEnvironmentID,
		Importance:                        optionalString(deployment.Importance),
		AssociationIdSettings:             deployment.AssociationIDSettings,
		BiasAndFairnessSettings:           deployment.BiasAndFairnessSettings,
		ChallengerModelsSettings:          deployment.ChallengerModelsSettings,
		ChallengerReplaySettings:          deployment.ChallengerReplaySettings,
		DriftTrackingSettings:             deployment.DriftTrackingSettings,
		HealthSettings:                    deployment.HealthSettings,
		PredictionIntervalsSettings:       deployment.PredictionIntervalsSettings,
		PredictionWarningSettings:         deployment.PredictionWarningSettings,
		PredictionsByForecastDateSettings: deployment.PredictionsByForecastDateSettings,
		PredictionsDataCollectionSettings: deployment.PredictionsDataCollectionSettings,
		PredictionsSettings:               deployment.PredictionsSettings,
		SegmentAnalysisSettings:           deployment.SegmentAnalysisSettings,
	}, pulumi.Parent(m), pulumi.DependsOn(dependencies))
}

// Getter methods for accessing internal resources

// GetCustomModel returns the custom model resource.
func (m *CustomModelDeployment) GetCustomModel() *datarobotsdk.CustomModel {
	return m.customModel
}

// GetRegisteredModel returns the registered model resource, nil when not deployed.
func (m *CustomModelDeployment) GetRegisteredModel() *datarobotsdk.RegisteredModel {
	return m.registeredModel
}

// GetPredictionEnvironment returns the prediction environment created by the component,
// nil when not deployed or when an existing environment was used.
func (m *CustomModelDeployment) GetPredictionEnvironment() *datarobotsdk.PredictionEnvironment {
	return m.predictionEnvironment
}

// GetDeployment returns the deployment resource, nil when not deployed.
func (m *CustomModelDeployment) GetDeployment() *datarobotsdk.Deployment {
	return m.deployment
}

// GetRuntimeParameters returns every runtime parameter bound to the custom model.
func (m *CustomModelDeployment) GetRuntimeParameters() []RuntimeParameter {
	return append([]RuntimeParameter(nil), m.runtimeParameters...)
}
