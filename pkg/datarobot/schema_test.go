package datarobot_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derluke/pulumi-datarobot-tests/pkg/datarobot"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	negativeMemory := -1
	tests := []struct {
		name    string
		args    any
		wantErr string
	}{
		{
			name: "valid custom model",
			args: datarobot.CustomModelArgs{ResourceName: "m", Name: "m", BaseEnvironmentID: "env", BaseEnvironmentName: "env", FolderPath: "models/m"},
		},
		{
			name:    "custom model without name",
			args:    datarobot.CustomModelArgs{ResourceName: "m", BaseEnvironmentID: "env", BaseEnvironmentName: "env", FolderPath: "models/m"},
			wantErr: "CustomModelArgs.name'",
		},
		{
			name:    "custom model without resource name",
			args:    datarobot.CustomModelArgs{Name: "m", BaseEnvironmentID: "env", BaseEnvironmentName: "env", FolderPath: "models/m"},
			wantErr: "CustomModelArgs.resourceName'",
		},
		{
			name:    "custom model without base environment name",
			args:    datarobot.CustomModelArgs{ResourceName: "m", Name: "m", BaseEnvironmentID: "env", FolderPath: "models/m"},
			wantErr: "CustomModelArgs.baseEnvironmentName'",
		},
		{
			name: "custom model with folder and files",
			args: datarobot.CustomModelArgs{
				ResourceName:        "m",
				Name:                "m",
				BaseEnvironmentID:   "env",
				BaseEnvironmentName: "env",
				FolderPath:          "models/m",
				Files:               []datarobot.ModelFile{{Source: "a", Target: "a"}},
			},
			wantErr: "files",
		},
		{
			name:    "binary model without class labels",
			args:    datarobot.CustomModelArgs{ResourceName: "m", Name: "m", BaseEnvironmentID: "env", BaseEnvironmentName: "env", TargetType: datarobot.TargetTypeBinary},
			wantErr: "positiveClassLabel",
		},
		{
			name:    "multiclass model without class labels",
			args:    datarobot.CustomModelArgs{ResourceName: "m", Name: "m", BaseEnvironmentID: "env", BaseEnvironmentName: "env", TargetType: datarobot.TargetTypeMulticlass},
			wantErr: "classLabels",
		},
		{
			name:    "unknown target type",
			args:    datarobot.CustomModelArgs{ResourceName: "m", Name: "m", BaseEnvironmentID: "env", BaseEnvironmentName: "env", TargetType: "Clustering"},
			wantErr: "targetType",
		},
		{
			name:    "non positive memory",
			args:    datarobot.CustomModelArgs{ResourceName: "m", Name: "m", BaseEnvironmentID: "env", BaseEnvironmentName: "env", MemoryMB: &negativeMemory},
			wantErr: "memoryMb",
		},
		{
			name:    "runtime parameter with unknown type",
			args:    datarobot.CustomModelArgs{ResourceName: "m", Name: "m", BaseEnvironmentID: "env", BaseEnvironmentName: "env", RuntimeParameterValues: []datarobot.RuntimeParameter{{Key: "K", Type: "date"}}},
			wantErr: "type",
		},
		{
			name: "llm settings over the completion limit",
			args: datarobot.LLMBlueprintArgs{
				ResourceName: "bp",
				Name:         "bp",
				LLMID:        "azure-openai-gpt-4",
				LLMSettings:  datarobot.LLMSettings{MaxCompletionLength: 513},
			},
			wantErr: "maxCompletionLength",
		},
		{
			name:    "chunk size below minimum",
			args:    datarobot.VectorDatabaseArgs{ResourceName: "vdb", Name: "vdb", ChunkingParameters: datarobot.ChunkingParameters{ChunkSize: 64}},
			wantErr: "chunkSize",
		},
		{
			name: "valid vector database",
			args: datarobot.VectorDatabaseArgs{
				ResourceName:       "vdb",
				Name:               "vdb",
				ChunkingParameters: datarobot.ChunkingParameters{ChunkSize: 256, ChunkingMethod: datarobot.ChunkingMethodRecursive},
			},
		},
		{
			name:    "prediction environment with unknown platform",
			args:    datarobot.PredictionEnvironmentArgs{ResourceName: "pe", Name: "pe", Platform: "mainframe"},
			wantErr: "platform",
		},
		{
			name:    "prediction environment without resource name",
			args:    datarobot.PredictionEnvironmentArgs{Name: "pe", Platform: datarobot.PlatformDataRobotServerless},
			wantErr: "PredictionEnvironmentArgs.resourceName'",
		},
		{
			name:    "registered model without resource name",
			args:    datarobot.RegisteredModelArgs{Name: "rm"},
			wantErr: "RegisteredModelArgs.resourceName'",
		},
		{
			name: "valid registered model",
			args: datarobot.RegisteredModelArgs{ResourceName: "rm", Name: "rm"},
		},
		{
			name:    "deployment with unknown importance",
			args:    datarobot.DeploymentArgs{ResourceName: "d", Label: "d", Importance: "URGENT"},
			wantErr: "importance",
		},
		{
			name:    "deployment without resource name",
			args:    datarobot.DeploymentArgs{Label: "d"},
			wantErr: "DeploymentArgs.resourceName'",
		},
		{
			name: "valid deployment",
			args: datarobot.DeploymentArgs{ResourceName: "d", Label: "d", Importance: "HIGH"},
		},
		{
			name: "valid application source",
			args: datarobot.ApplicationSourceArgs{ResourceName: "src", FolderPath: "apps/a"},
		},
		{
			name:    "application source without resource name",
			args:    datarobot.ApplicationSourceArgs{FolderPath: "apps/a"},
			wantErr: "ApplicationSourceArgs.resourceName'",
		},
		{
			name:    "application source without folder or files",
			args:    datarobot.ApplicationSourceArgs{ResourceName: "src"},
			wantErr: "ApplicationSourceArgs.files'",
		},
		{
			name:    "application source with an empty file list",
			args:    datarobot.ApplicationSourceArgs{ResourceName: "src", Files: []datarobot.ModelFile{}},
			wantErr: "ApplicationSourceArgs.files'",
		},
		{
			name:    "application source with folder and files",
			args:    datarobot.ApplicationSourceArgs{ResourceName: "src", FolderPath: "apps/a", Files: []datarobot.ModelFile{{Source: "a.py", Target: "a.py"}}},
			wantErr: "ApplicationSourceArgs.files'",
		},
		{
			name:    "intervention with invalid comparand",
			args:    datarobot.Intervention{Action: datarobot.ModerationActionBlock, Message: "m", Condition: datarobot.Condition{Comparand: map[string]int{}, Comparator: datarobot.ComparatorEquals}},
			wantErr: "comparand",
		},
		{
			name: "intervention with false comparand",
			args: datarobot.Intervention{Action: datarobot.ModerationActionReport, Message: "m", Condition: datarobot.Condition{Comparand: false, Comparator: datarobot.ComparatorIs}},
		},
		{
			name:    "intervention with unknown comparator",
			args:    datarobot.Intervention{Action: datarobot.ModerationActionBlock, Message: "m", Condition: datarobot.Condition{Comparand: 1, Comparator: "between"}},
			wantErr: "comparator",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := datarobot.Validate(tt.args)
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadGuardrails(t *testing.T) {
	t.Parallel()

	guards, err := datarobot.LoadGuardrails(strings.NewReader(`
- name: Toxicity
  templateName: Toxicity
  stages: [prompt, response]
  intervention:
    action: block
    message: Toxic content blocked
    condition:
      comparator: greaterThan
      comparand: 0.7
- name: Blocked words
  templateName: Token Count
  stages: [response]
  intervention:
    action: report
    message: Long response
    condition:
      comparator: contains
      comparand: [foo, bar]
`))
	require.NoError(t, err)
	require.Len(t, guards, 2)

	assert.Equal(t, datarobot.GuardrailTemplateToxicity, guards[0].TemplateName)
	assert.Equal(t, []datarobot.Stage{datarobot.StagePrompt, datarobot.StageResponse}, guards[0].Stages)
	assert.InDelta(t, 0.7, guards[0].Intervention.Condition.Comparand, 0.0001)

	encoded, err := guards[1].Intervention.Condition.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"comparand":["foo","bar"],"comparator":"contains"}`, encoded)
}

func TestLoadGuardrails_Empty(t *testing.T) {
	t.Parallel()

	guards, err := datarobot.LoadGuardrails(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, guards)
}

func TestLoadGuardrails_Invalid(t *testing.T) {
	t.Parallel()

	_, err := datarobot.LoadGuardrails(strings.NewReader(`
- name: Broken
  templateName: Cost
  stages: [sideways]
  intervention:
    action: block
    message: nope
    condition:
      comparator: equals
      comparand: 1
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Broken")

	_, err = datarobot.LoadGuardrails(strings.NewReader("not: [a list"))
	assert.Error(t, err)
}

func TestGuardrailTemplateToGuardConfiguration(t *testing.T) {
	t.Parallel()

	template := datarobot.GuardrailTemplate{
		TemplateName: datarobot.GuardrailTemplateFaithfulness,
		Name:         "Faithfulness",
		Stages:       []datarobot.Stage{datarobot.StageResponse},
		Intervention: datarobot.Intervention{
			Action:    datarobot.ModerationActionReport,
			Message:   "Unfaithful answer",
			Condition: datarobot.Condition{Comparand: 0, Comparator: datarobot.ComparatorEquals},
		},
	}

	guard := template.ToGuardConfiguration()
	require.NoError(t, datarobot.Validate(guard))
	assert.Equal(t, template.Name, guard.Name)
	assert.Equal(t, template.TemplateName, guard.TemplateName)
	assert.Equal(t, template.Stages, guard.Stages)
}
