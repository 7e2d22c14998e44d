// Package gcp provides Google Cloud Platform infrastructure components that let
// DataRobot models call Vertex AI hosted LLMs.
package gcp

import (
	"encoding/base64"
	"fmt"

	namer "github.com/davidmontoyago/commodity-namer"
	"github.com/pulumi/pulumi-gcp/sdk/v8/go/gcp/projects"
	"github.com/pulumi/pulumi-gcp/sdk/v8/go/gcp/serviceaccount"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/derluke/pulumi-datarobot-tests/pkg/datarobot"
)

// LLMServiceAccountArgs contains configuration arguments for a Vertex AI service account.
type LLMServiceAccountArgs struct {
	// GCP project of the service account. Required.
	Project string
	// Vertex AI region the credential is bound to. Optional.
	Region string
	// Display name of the service account. Defaults to "<name> DataRobot LLM Service Account".
	DisplayName pulumi.StringInput
	// Roles granted on top of roles/aiplatform.user.
	ExtraRoles []string
	// Enable the Vertex AI API on the project.
	EnableAPI bool
}

// LLMServiceAccount represents a GCP service account with a key, allowed to call Vertex AI.
type LLMServiceAccount struct {
	pulumi.ResourceState
	namer.Namer

	Project     string
	Region      string
	DisplayName pulumi.StringOutput

	serviceAccount *serviceaccount.Account
	key            *serviceaccount.Key
	iamMembers     []*projects.IAMMember
	apiService     *projects.Service
	keyJSON        pulumi.StringOutput
}

// NewLLMServiceAccount creates a new LLMServiceAccount with the provided configuration.
func NewLLMServiceAccount(ctx *pulumi.Context, name string, args *LLMServiceAccountArgs, opts ...pulumi.ResourceOption) (*LLMServiceAccount, error) {
	if args == nil {
		return nil, fmt.Errorf("service account args are required")
	}
	if args.Project == "" {
		return nil, fmt.Errorf("project is required")
	}

	account := &LLMServiceAccount{
		Namer:       namer.New(name, namer.WithReplace()),
		Project:     args.Project,
		Region:      args.Region,
		DisplayName: setDefaultString(args.DisplayName, name+" DataRobot LLM Service Account"),
	}

	err := ctx.RegisterComponentResource("pulumi-datarobot:gcp:LLMServiceAccount", name, account, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to register component resource: %w", err)
	}

	err = account.deploy(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy LLM service account: %w", err)
	}

	err = ctx.RegisterResourceOutputs(account, pulumi.Map{
		"service_account_email": account.serviceAccount.Email,
		"key_id":                account.key.ID(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register resource outputs: %w", err)
	}

	return account, nil
}

func (a *LLMServiceAccount) deploy(ctx *pulumi.Context, args *LLMServiceAccountArgs) error {
	var dependencies []pulumi.Resource
	if args.EnableAPI {
		service, err := a.enableVertexAPI(ctx)
		if err != nil {
			return err
		}
		a.apiService = service
		dependencies = append(dependencies, service)
	}

	serviceAccount, err := a.createServiceAccount(ctx)
	if err != nil {
		return err
	}
	a.serviceAccount = serviceAccount

	iamMembers, err := a.grantIAMRoles(ctx, serviceAccount.Email, args.ExtraRoles, dependencies)
	if err != nil {
		return err
	}
	a.iamMembers = iamMembers

	key, err := serviceaccount.NewKey(ctx, a.NewResourceName("llm-account-key", "", 63), &serviceaccount.KeyArgs{
		ServiceAccountId: serviceAccount.Name,
	}, pulumi.Parent(a))
	if err != nil {
		return fmt.Errorf("failed to create service account key: %w", err)
	}
	a.key = key

	// The key's private key is the base64 encoded service account JSON document.
	a.keyJSON = pulumi.ToSecret(key.PrivateKey.ApplyT(func(encoded string) (string, error) {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return "", fmt.Errorf("failed to decode service account key: %w", err)
		}

		return string(decoded), nil
	})).(pulumi.StringOutput)

	return nil
}

// Credentials returns the Google LLM credential backed by this service account's key.
func (a *LLMServiceAccount) Credentials() *datarobot.GoogleLLMCredentials {
	return &datarobot.GoogleLLMCredentials{
		ServiceAccountKey: a.keyJSON,
		Region:            a.Region,
	}
}

// Getter methods for accessing internal resources

// GetServiceAccount returns the service account resource.
func (a *LLMServiceAccount) GetServiceAccount() *serviceaccount.Account {
	return a.serviceAccount
}

// GetKey returns the service account key resource.
func (a *LLMServiceAccount) GetKey() *serviceaccount.Key {
	return a.key
}

// GetIAMMembers returns the IAM bindings of the service account.
func (a *LLMServiceAccount) GetIAMMembers() []*projects.IAMMember {
	return a.iamMembers
}

// GetAPIService returns the Vertex AI API service, nil when the API was not enabled.
func (a *LLMServiceAccount) GetAPIService() *projects.Service {
	return a.apiService
}

// KeyJSON returns the decoded service account key document as a secret.
func (a *LLMServiceAccount) KeyJSON() pulumi.StringOutput {
	return a.keyJSON
}
