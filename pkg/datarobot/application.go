package datarobot

import (
	"fmt"

	namer "github.com/davidmontoyago/commodity-namer"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	datarobotsdk "github.com/datarobot-community/pulumi-datarobot/sdk/go/datarobot"
)

// CustomAppArgs contains configuration arguments for a custom application.
type CustomAppArgs struct {
	// Source of the application. Required.
	Source ApplicationSourceArgs
	// Pulumi resource name of the application. Defaults to a name derived from the component.
	ResourceName string
	// Display name of the application. Required.
	Name string
	// Share the application with users outside the organization.
	ExternalAccessEnabled bool
	// Email addresses allowed to access the application when shared.
	ExternalAccessRecipients []string
}

// CustomApp represents a DataRobot application source and the custom application serving it.
type CustomApp struct {
	pulumi.ResourceState
	namer.Namer

	Name string

	applicationSource *datarobotsdk.ApplicationSource
	customApplication *datarobotsdk.CustomApplication
}

// NewCustomApp creates a new CustomApp with the provided configuration.
func NewCustomApp(ctx *pulumi.Context, name string, args *CustomAppArgs, opts ...pulumi.ResourceOption) (*CustomApp, error) {
	if args == nil {
		return nil, fmt.Errorf("custom app args are required")
	}
	if args.Name == "" {
		return nil, fmt.Errorf("application name is required")
	}

	customApp := &CustomApp{
		Namer: namer.New(name, namer.WithReplace()),
		Name:  args.Name,
	}

	source := args.Source
	source.ResourceName = setDefaultString(source.ResourceName, customApp.NewResourceName("app-source", "", 63))
	if err := Validate(source); err != nil {
		return nil, err
	}

	err := ctx.RegisterComponentResource("pulumi-datarobot:datarobot:CustomApp", name, customApp, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to register component resource: %w", err)
	}

	err = customApp.deploy(ctx, source, args)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy custom app: %w", err)
	}

	err = ctx.RegisterResourceOutputs(customApp, pulumi.Map{
		"app_id":                customApp.customApplication.ID(),
		"app_source_id":         customApp.applicationSource.ID(),
		"app_source_version_id": customApp.applicationSource.VersionId,
		"application_url":       customApp.customApplication.ApplicationUrl,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register resource outputs: %w", err)
	}

	return customApp, nil
}

func (a *CustomApp) deploy(ctx *pulumi.Context, source ApplicationSourceArgs, args *CustomAppArgs) error {
	applicationSource, err := a.createApplicationSource(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to create application source: %w", err)
	}
	a.applicationSource = applicationSource

	customApplicationArgs := &datarobotsdk.CustomApplicationArgs{
		Name:            pulumi.String(args.Name),
		SourceVersionId: applicationSource.VersionId,
	}
	if args.ExternalAccessEnabled {
		customApplicationArgs.ExternalAccessEnabled = pulumi.Bool(true)
		if len(args.ExternalAccessRecipients) > 0 {
			customApplicationArgs.ExternalAccessRecipients = pulumi.ToStringArray(args.ExternalAccessRecipients)
		}
	}

	resourceName := setDefaultString(args.ResourceName, a.NewResourceName("custom-app", "", 63))

	customApplication, err := datarobotsdk.NewCustomApplication(ctx, resourceName, customApplicationArgs, pulumi.Parent(a))
	if err != nil {
		return fmt.Errorf("failed to create custom application: %w", err)
	}
	a.customApplication = customApplication

	return nil
}

func (a *CustomApp) createApplicationSource(ctx *pulumi.Context, source ApplicationSourceArgs) (*datarobotsdk.ApplicationSource, error) {
	sourceArgs := &datarobotsdk.ApplicationSourceArgs{
		Name: optionalString(source.Name),
	}
	if source.FolderPath != "" {
		sourceArgs.FolderPath = pulumi.String(source.FolderPath)
	} else {
		sourceArgs.Files = toProviderFiles(source.Files)
	}
	if source.Replicas != nil || source.ResourceLabel != "" {
		sourceArgs.ResourceSettings = &datarobotsdk.ApplicationSourceResourceSettingsArgs{
			Replicas:      optionalInt(source.Replicas),
			ResourceLabel: optionalString(source.ResourceLabel),
		}
	}

	return datarobotsdk.NewApplicationSource(ctx, source.ResourceName, sourceArgs, pulumi.Parent(a))
}

// GetApplicationSource returns the application source resource.
func (a *CustomApp) GetApplicationSource() *datarobotsdk.ApplicationSource {
	return a.applicationSource
}

// GetCustomApplication returns the custom application resource.
func (a *CustomApp) GetCustomApplication() *datarobotsdk.CustomApplication {
	return a.customApplication
}
