package datarobot

import (
	"fmt"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	datarobotsdk "github.com/datarobot-community/pulumi-datarobot/sdk/go/datarobot"
)

// DRCredential is a DataRobot credential for use with a custom model deployment or app.
//
// It abstracts creation of the credential type matching the supplied LLM credential
// and structures the runtime parameters a model needs to consume it.
type DRCredential struct {
	pulumi.ResourceState

	// Name of the credential in DataRobot
	CredentialName string

	credentialRaw     LLMCredentials
	credential        pulumi.CustomResource
	credentialID      pulumi.StringOutput
	runtimeParameters []RuntimeParameter
}

// NewDRCredential creates the DataRobot credential matching the given LLM credential.
func NewDRCredential(ctx *pulumi.Context, name string, credential LLMCredentials, args *CredentialArgs, opts ...pulumi.ResourceOption) (*DRCredential, error) {
	if credential == nil {
		return nil, fmt.Errorf("credential is required")
	}
	if args == nil {
		return nil, fmt.Errorf("credential args are required")
	}
	if err := Validate(args); err != nil {
		return nil, err
	}
	if err := credential.Validate(); err != nil {
		return nil, err
	}

	drCredential := &DRCredential{
		CredentialName: args.Name,
		credentialRaw:  credential,
	}

	err := ctx.RegisterComponentResource("custom:datarobot:DRCredential", name, drCredential, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to register component resource: %w", err)
	}

	err = drCredential.deploy(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy credential: %w", err)
	}

	err = ctx.RegisterResourceOutputs(drCredential, pulumi.Map{
		"id": drCredential.credentialID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register resource outputs: %w", err)
	}

	return drCredential, nil
}

func (c *DRCredential) deploy(ctx *pulumi.Context, args *CredentialArgs) error {
	switch raw := c.credentialRaw.(type) {
	case *AzureOpenAICredentials:
		apiTokenCredential, err := datarobotsdk.NewApiTokenCredential(ctx, args.ResourceName, &datarobotsdk.ApiTokenCredentialArgs{
			Name:     pulumi.String(args.Name),
			ApiToken: raw.APIKey.ToStringOutput(),
		}, pulumi.Parent(c))
		if err != nil {
			return fmt.Errorf("failed to create API token credential: %w", err)
		}
		c.credential = apiTokenCredential
		c.credentialID = apiTokenCredential.ID().ToStringOutput()
	case *GoogleLLMCredentials:
		googleCloudCredential, err := datarobotsdk.NewGoogleCloudCredential(ctx, args.ResourceName, &datarobotsdk.GoogleCloudCredentialArgs{
			Name:   pulumi.String(args.Name),
			GcpKey: raw.ServiceAccountKey.ToStringOutput(),
		}, pulumi.Parent(c))
		if err != nil {
			return fmt.Errorf("failed to create Google Cloud credential: %w", err)
		}
		c.credential = googleCloudCredential
		c.credentialID = googleCloudCredential.ID().ToStringOutput()
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedCredential, c.credentialRaw)
	}
	_ = ctx.Log.Debug(fmt.Sprintf("credential %q bound as %T", args.Name, c.credentialRaw), &pulumi.LogArgs{Resource: c})

	params, err := RuntimeParameterBindings(c.credentialRaw, c.credentialID)
	if err != nil {
		return err
	}
	c.runtimeParameters = params

	return nil
}

// CredentialID returns the DataRobot id of the underlying credential.
func (c *DRCredential) CredentialID() pulumi.StringOutput {
	return c.credentialID
}

// GetCredential returns the provider credential resource, either an
// *ApiTokenCredential or a *GoogleCloudCredential.
func (c *DRCredential) GetCredential() pulumi.CustomResource {
	return c.credential
}

// RuntimeParameters returns the runtime parameter bindings of the credential.
func (c *DRCredential) RuntimeParameters() []RuntimeParameter {
	return append([]RuntimeParameter(nil), c.runtimeParameters...)
}

// RuntimeParameterValues returns the runtime parameter bindings as provider inputs.
func (c *DRCredential) RuntimeParameterValues() datarobotsdk.CustomModelRuntimeParameterValueArray {
	return toRuntimeParameterValueArray(c.runtimeParameters)
}
