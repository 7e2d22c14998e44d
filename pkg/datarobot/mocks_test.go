package datarobot_test

import (
	"sync"
	"testing"

	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/stretchr/testify/require"
)

const (
	apiTokenCredentialType    = "datarobot:index/apiTokenCredential:ApiTokenCredential"
	googleCloudCredentialType = "datarobot:index/googleCloudCredential:GoogleCloudCredential"
	customModelType           = "datarobot:index/customModel:CustomModel"
	registeredModelType       = "datarobot:index/registeredModel:RegisteredModel"
	predictionEnvironmentType = "datarobot:index/predictionEnvironment:PredictionEnvironment"
	deploymentType            = "datarobot:index/deployment:Deployment"
	applicationSourceType     = "datarobot:index/applicationSource:ApplicationSource"
	customApplicationType     = "datarobot:index/customApplication:CustomApplication"
)

type registeredResource struct {
	TypeToken string
	Name      string
	Inputs    resource.PropertyMap
}

// DataRobotMocks echoes inputs back as outputs and records every resource it sees.
type DataRobotMocks struct {
	mu        sync.Mutex
	resources []registeredResource
}

func (m *DataRobotMocks) NewResource(args pulumi.MockResourceArgs) (string, resource.PropertyMap, error) {
	outputs := args.Inputs.Copy()

	// Mock resource outputs for each resource type:
	switch args.TypeToken {
	case customModelType, registeredModelType, applicationSourceType:
		outputs["versionId"] = resource.NewStringProperty(args.Name + "_version")
	case customApplicationType:
		outputs["applicationUrl"] = resource.NewStringProperty("https://app.datarobot.com/custom_applications/" + args.Name + "_id/")
	}

	m.mu.Lock()
	m.resources = append(m.resources, registeredResource{
		TypeToken: args.TypeToken,
		Name:      args.Name,
		Inputs:    args.Inputs,
	})
	m.mu.Unlock()

	return args.Name + "_id", outputs, nil
}

func (m *DataRobotMocks) Call(_ pulumi.MockCallArgs) (resource.PropertyMap, error) {
	return resource.PropertyMap{}, nil
}

func (m *DataRobotMocks) byType(typeToken string) []registeredResource {
	m.mu.Lock()
	defer m.mu.Unlock()

	var found []registeredResource
	for _, r := range m.resources {
		if r.TypeToken == typeToken {
			found = append(found, r)
		}
	}

	return found
}

func (m *DataRobotMocks) single(t *testing.T, typeToken string) registeredResource {
	t.Helper()
	found := m.byType(typeToken)
	require.Len(t, found, 1, "expected exactly one %s", typeToken)

	return found[0]
}

// runtimeParameterTriples flattens the runtimeParameterValues input into key/type/value triples.
func runtimeParameterTriples(t *testing.T, inputs resource.PropertyMap) [][3]string {
	t.Helper()
	values, ok := inputs["runtimeParameterValues"]
	if !ok {
		return nil
	}
	require.True(t, values.IsArray(), "runtimeParameterValues should be an array")

	triples := make([][3]string, 0, len(values.ArrayValue()))
	for _, v := range values.ArrayValue() {
		obj := v.ObjectValue()
		triples = append(triples, [3]string{
			obj["key"].StringValue(),
			obj["type"].StringValue(),
			obj["value"].StringValue(),
		})
	}

	return triples
}

func awaitString(t *testing.T, output pulumi.StringOutput) string {
	t.Helper()
	ch := make(chan string, 1)
	output.ApplyT(func(v string) error {
		ch <- v

		return nil
	})

	return <-ch
}
