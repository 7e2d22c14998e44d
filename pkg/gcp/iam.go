package gcp

import (
	"fmt"
	"strings"

	"github.com/pulumi/pulumi-gcp/sdk/v8/go/gcp/projects"
	"github.com/pulumi/pulumi-gcp/sdk/v8/go/gcp/serviceaccount"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/samber/lo"
)

const vertexAIUserRole = "roles/aiplatform.user"

// grantIAMRoles grants the Vertex AI user role plus any extra roles to the service account.
func (a *LLMServiceAccount) grantIAMRoles(ctx *pulumi.Context, serviceAccountEmail pulumi.StringOutput, extraRoles []string, dependencies []pulumi.Resource) ([]*projects.IAMMember, error) {
	roles := lo.Uniq(append([]string{vertexAIUserRole}, extraRoles...))

	iamMembers := make([]*projects.IAMMember, len(roles))
	for roleIndex, role := range roles {
		bindingName := a.NewResourceName("llm-sa-iam-"+strings.TrimPrefix(role, "roles/"), "", 63)
		member, err := projects.NewIAMMember(ctx, bindingName, &projects.IAMMemberArgs{
			Project: pulumi.String(a.Project),
			Role:    pulumi.String(role),
			Member:  pulumi.Sprintf("serviceAccount:%s", serviceAccountEmail),
		}, pulumi.Parent(a), pulumi.DependsOn(dependencies))
		if err != nil {
			return nil, fmt.Errorf("failed to create IAM member for role %s: %w", role, err)
		}
		iamMembers[roleIndex] = member
	}

	return iamMembers, nil
}

// createServiceAccount creates the service account DataRobot uses to call Vertex AI.
func (a *LLMServiceAccount) createServiceAccount(ctx *pulumi.Context) (*serviceaccount.Account, error) {
	accountID := a.NewResourceName("llm", "", 30)

	account, err := serviceaccount.NewAccount(ctx, a.NewResourceName("llm-account", "", 63), &serviceaccount.AccountArgs{
		Project:     pulumi.String(a.Project),
		AccountId:   pulumi.String(accountID),
		DisplayName: a.DisplayName,
		Description: pulumi.String("Service account for DataRobot LLM access to Vertex AI"),
	}, pulumi.Parent(a))
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM service account: %w", err)
	}

	return account, nil
}

// enableVertexAPI enables the Vertex AI API on the project.
func (a *LLMServiceAccount) enableVertexAPI(ctx *pulumi.Context) (*projects.Service, error) {
	service, err := projects.NewService(ctx, a.NewResourceName("aiplatform-api", "", 63), &projects.ServiceArgs{
		Project:          pulumi.String(a.Project),
		Service:          pulumi.String("aiplatform.googleapis.com"),
		DisableOnDestroy: pulumi.Bool(false),
	}, pulumi.Parent(a))
	if err != nil {
		return nil, fmt.Errorf("failed to enable Vertex AI API: %w", err)
	}

	return service, nil
}
