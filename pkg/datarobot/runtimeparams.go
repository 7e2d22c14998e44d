package datarobot

import (
	"errors"
	"fmt"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/samber/lo"

	datarobotsdk "github.com/datarobot-community/pulumi-datarobot/sdk/go/datarobot"
)

// Runtime parameter types understood by the platform.
const (
	RuntimeParameterTypeString     = "string"
	RuntimeParameterTypeCredential = "credential"
	RuntimeParameterTypeBoolean    = "boolean"
	RuntimeParameterTypeNumeric    = "numeric"
)

// ErrUnsupportedCredential is returned for credentials other than the supported variants.
var ErrUnsupportedCredential = errors.New("unsupported credential type")

// RuntimeParameter is a key/type/value triple injected into a model's execution environment.
type RuntimeParameter struct {
	Key   string             `yaml:"key" validate:"required"`
	Type  string             `yaml:"type" validate:"required,oneof=string credential boolean numeric"`
	Value pulumi.StringInput `yaml:"-" validate:"-"`
}

// RuntimeParameterBindings derives the runtime parameters a model needs to consume a credential.
//
// Azure OpenAI binds the API key credential plus endpoint, deployment and API version strings.
// Google binds the service account credential and, when set, the region.
func RuntimeParameterBindings(credential LLMCredentials, credentialID pulumi.StringInput) ([]RuntimeParameter, error) {
	switch c := credential.(type) {
	case *AzureOpenAICredentials:
		return []RuntimeParameter{
			{Key: "OPENAI_API_KEY", Type: RuntimeParameterTypeCredential, Value: credentialID},
			{Key: "OPENAI_API_BASE", Type: RuntimeParameterTypeString, Value: pulumi.String(c.AzureEndpoint)},
			{Key: "OPENAI_API_DEPLOYMENT_ID", Type: RuntimeParameterTypeString, Value: pulumi.String(c.AzureDeployment)},
			{Key: "OPENAI_API_VERSION", Type: RuntimeParameterTypeString, Value: pulumi.String(c.APIVersion)},
		}, nil
	case *GoogleLLMCredentials:
		params := []RuntimeParameter{
			{Key: "GOOGLE_SERVICE_ACCOUNT", Type: RuntimeParameterTypeCredential, Value: credentialID},
		}
		if c.Region != "" {
			params = append(params, RuntimeParameter{
				Key: "GOOGLE_REGION", Type: RuntimeParameterTypeString, Value: pulumi.String(c.Region),
			})
		}

		return params, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedCredential, credential)
	}
}

// toRuntimeParameterValueArray converts runtime parameters to the provider's input type.
func toRuntimeParameterValueArray(params []RuntimeParameter) datarobotsdk.CustomModelRuntimeParameterValueArray {
	return lo.Map(params, func(p RuntimeParameter, _ int) datarobotsdk.CustomModelRuntimeParameterValueInput {
		return &datarobotsdk.CustomModelRuntimeParameterValueArgs{
			Key:   pulumi.String(p.Key),
			Type:  pulumi.String(p.Type),
			Value: p.Value,
		}
	})
}
