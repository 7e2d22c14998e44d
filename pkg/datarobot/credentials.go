package datarobot

import (
	"fmt"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// LLMCredentials is an externally supplied credential for an LLM provider.
// It is implemented by *AzureOpenAICredentials and *GoogleLLMCredentials only.
type LLMCredentials interface {
	Validate() error
	llmCredentials()
}

// AzureOpenAICredentials authenticates against an Azure OpenAI deployment with an API key.
type AzureOpenAICredentials struct {
	// API key of the Azure OpenAI resource. Required.
	APIKey pulumi.StringInput `validate:"required"`
	// Endpoint of the Azure OpenAI resource, e.g. "https://my-resource.openai.azure.com". Required.
	AzureEndpoint string `validate:"required,url"`
	// Name of the model deployment within the resource. Required.
	AzureDeployment string `validate:"required"`
	// API version, e.g. "2024-02-01". Required.
	APIVersion string `validate:"required"`
}

func (*AzureOpenAICredentials) llmCredentials() {}

// Validate checks that every field of the credential is set.
func (c *AzureOpenAICredentials) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid Azure OpenAI credentials: %w", err)
	}

	return nil
}

// GoogleLLMCredentials authenticates against Vertex AI with a service account key.
type GoogleLLMCredentials struct {
	// Service account key JSON document. Required.
	ServiceAccountKey pulumi.StringInput `validate:"required"`
	// Vertex AI region, e.g. "us-central1". Optional.
	Region string
}

func (*GoogleLLMCredentials) llmCredentials() {}

// Validate checks that the service account key is set.
func (c *GoogleLLMCredentials) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid Google LLM credentials: %w", err)
	}

	return nil
}

// SecretString wraps a literal value so the engine stores it encrypted.
func SecretString(value string) pulumi.StringOutput {
	return pulumi.ToSecret(pulumi.String(value)).(pulumi.StringOutput)
}
