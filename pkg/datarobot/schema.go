// Package datarobot provides Pulumi components and argument schemas for provisioning
// DataRobot model serving resources: credentials, custom models, deployments,
// guardrails and custom applications.
package datarobot

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	datarobotsdk "github.com/datarobot-community/pulumi-datarobot/sdk/go/datarobot"
)

// Stage is the point of an LLM exchange a guard is evaluated on.
type Stage string

const (
	StagePrompt   Stage = "prompt"
	StageResponse Stage = "response"
)

// ModerationAction is what a guard does when its condition matches.
type ModerationAction string

const (
	ModerationActionBlock          ModerationAction = "block"
	ModerationActionReport         ModerationAction = "report"
	ModerationActionReportAndBlock ModerationAction = "reportAndBlock"
)

// GuardConditionComparator is the comparator used in a guard condition.
type GuardConditionComparator string

const (
	ComparatorGreaterThan    GuardConditionComparator = "greaterThan"
	ComparatorLessThan       GuardConditionComparator = "lessThan"
	ComparatorEquals         GuardConditionComparator = "equals"
	ComparatorNotEquals      GuardConditionComparator = "notEquals"
	ComparatorIs             GuardConditionComparator = "is"
	ComparatorIsNot          GuardConditionComparator = "isNot"
	ComparatorMatches        GuardConditionComparator = "matches"
	ComparatorDoesNotMatch   GuardConditionComparator = "doesNotMatch"
	ComparatorContains       GuardConditionComparator = "contains"
	ComparatorDoesNotContain GuardConditionComparator = "doesNotContain"
)

// GuardrailTemplateName names one of the platform's global guard templates.
type GuardrailTemplateName string

const (
	GuardrailTemplateRouge1          GuardrailTemplateName = "Rouge 1"
	GuardrailTemplateFaithfulness    GuardrailTemplateName = "Faithfulness"
	GuardrailTemplatePromptInjection GuardrailTemplateName = "Prompt Injection"
	GuardrailTemplateToxicity        GuardrailTemplateName = "Toxicity"
	GuardrailTemplateTokenCount      GuardrailTemplateName = "Token Count"
	GuardrailTemplateCost            GuardrailTemplateName = "Cost"
)

// PredictionEnvironmentPlatform is where a deployment's predictions are served.
type PredictionEnvironmentPlatform string

const (
	PlatformAWS                 PredictionEnvironmentPlatform = "aws"
	PlatformGCP                 PredictionEnvironmentPlatform = "gcp"
	PlatformAzure               PredictionEnvironmentPlatform = "azure"
	PlatformOnPremise           PredictionEnvironmentPlatform = "onPremise"
	PlatformDataRobot           PredictionEnvironmentPlatform = "datarobot"
	PlatformDataRobotServerless PredictionEnvironmentPlatform = "datarobotServerless"
	PlatformOpenShift           PredictionEnvironmentPlatform = "openShift"
	PlatformOther               PredictionEnvironmentPlatform = "other"
	PlatformSnowflake           PredictionEnvironmentPlatform = "snowflake"
	PlatformSAPAICore           PredictionEnvironmentPlatform = "sapAiCore"
)

// TargetType is the kind of prediction a custom model produces.
type TargetType string

const (
	TargetTypeBinary          TargetType = "Binary"
	TargetTypeRegression      TargetType = "Regression"
	TargetTypeMulticlass      TargetType = "Multiclass"
	TargetTypeAnomaly         TargetType = "Anomaly"
	TargetTypeTransform       TargetType = "Transform"
	TargetTypeTextGeneration  TargetType = "TextGeneration"
	TargetTypeUnstructured    TargetType = "Unstructured"
	TargetTypeVectorDatabase  TargetType = "VectorDatabase"
	TargetTypeAgenticWorkflow TargetType = "AgenticWorkflow"
)

// VectorDatabaseChunkingMethod selects how documents are split before embedding.
type VectorDatabaseChunkingMethod string

const (
	ChunkingMethodRecursive VectorDatabaseChunkingMethod = "recursive"
	ChunkingMethodSemantic  VectorDatabaseChunkingMethod = "semantic"
)

// Condition is the trigger of a guard intervention.
// Comparand is a number, a string, a bool or a list of strings.
type Condition struct {
	Comparand  any                      `yaml:"comparand"`
	Comparator GuardConditionComparator `yaml:"comparator" validate:"required,oneof=greaterThan lessThan equals notEquals is isNot matches doesNotMatch contains doesNotContain"`
}

// Intervention is the action a guard takes once its condition is met.
type Intervention struct {
	Action    ModerationAction `yaml:"action" validate:"required,oneof=block report reportAndBlock"`
	Condition Condition        `yaml:"condition"`
	Message   string           `yaml:"message" validate:"required"`
}

// GuardrailTemplate describes a guard to attach to a model, sourced from a global template.
type GuardrailTemplate struct {
	TemplateName        GuardrailTemplateName `yaml:"templateName" validate:"required"`
	RegisteredModelName string                `yaml:"registeredModelName,omitempty"`
	Name                string                `yaml:"name" validate:"required"`
	Stages              []Stage               `yaml:"stages" validate:"required,min=1,dive,oneof=prompt response"`
	Intervention        Intervention          `yaml:"intervention"`
}

// CustomModelGuardConfigurationArgs is a guard attached to a custom model.
type CustomModelGuardConfigurationArgs struct {
	Name             string                `yaml:"name" validate:"required"`
	Stages           []Stage               `yaml:"stages" validate:"required,min=1,dive,oneof=prompt response"`
	TemplateName     GuardrailTemplateName `yaml:"templateName" validate:"required"`
	Intervention     Intervention          `yaml:"intervention"`
	InputColumnName  string                `yaml:"inputColumnName,omitempty"`
	OutputColumnName string                `yaml:"outputColumnName,omitempty"`
}

// CustomModelArgs contains the arguments of a custom inference model.
type CustomModelArgs struct {
	// Pulumi resource name. Required; components fill a name derived from the component when empty.
	ResourceName string `yaml:"resourceName" validate:"required"`
	// Display name of the model in DataRobot. Required.
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description,omitempty"`
	// Execution environment the model runs on. Required.
	BaseEnvironmentID        string `yaml:"baseEnvironmentId" validate:"required"`
	BaseEnvironmentName      string `yaml:"baseEnvironmentName" validate:"required"`
	BaseEnvironmentVersionID string `yaml:"baseEnvironmentVersionId,omitempty"`
	TargetName               string `yaml:"targetName,omitempty"`
	// One of the TargetType values. Defaults to the platform's default when empty.
	TargetType TargetType `yaml:"targetType,omitempty" validate:"omitempty,oneof=Binary Regression Multiclass Anomaly Transform TextGeneration Unstructured VectorDatabase AgenticWorkflow"`
	// Runtime parameters injected into the model's environment.
	RuntimeParameterValues []RuntimeParameter `yaml:"-" validate:"dive"`
	// Explicit file list. Mutually exclusive with FolderPath.
	Files []ModelFile `yaml:"files,omitempty" validate:"excluded_with=FolderPath,dive"`
	// Local folder holding the model artifacts. Mutually exclusive with Files.
	FolderPath         string   `yaml:"folderPath,omitempty"`
	ClassLabels        []string `yaml:"classLabels,omitempty"`
	NegativeClassLabel string   `yaml:"negativeClassLabel,omitempty"`
	PositiveClassLabel string   `yaml:"positiveClassLabel,omitempty"`
	// Memory made available to the model, in MB. Optional.
	MemoryMB *int `yaml:"memoryMb,omitempty" validate:"omitempty,gt=0"`
	// Guards evaluated on the model's prompts and responses.
	GuardConfigurations []CustomModelGuardConfigurationArgs `yaml:"guardConfigurations,omitempty" validate:"dive"`
}

// RegisteredModelArgs contains the arguments of a model registry entry.
type RegisteredModelArgs struct {
	ResourceName string `yaml:"resourceName" validate:"required"`
	Name         string `yaml:"name" validate:"required"`
}

// DeploymentArgs contains the arguments of a deployment. The settings are the
// provider's own inputs and are passed through untouched.
type DeploymentArgs struct {
	ResourceName string `yaml:"resourceName" validate:"required"`
	Label        string `yaml:"label" validate:"required"`
	// One of CRITICAL, HIGH, MODERATE or LOW.
	Importance string `yaml:"importance,omitempty" validate:"omitempty,oneof=CRITICAL HIGH MODERATE LOW"`

	AssociationIDSettings             datarobotsdk.DeploymentAssociationIdSettingsPtrInput             `yaml:"-" validate:"-"`
	BiasAndFairnessSettings           datarobotsdk.DeploymentBiasAndFairnessSettingsPtrInput           `yaml:"-" validate:"-"`
	ChallengerModelsSettings          datarobotsdk.DeploymentChallengerModelsSettingsPtrInput          `yaml:"-" validate:"-"`
	ChallengerReplaySettings          datarobotsdk.DeploymentChallengerReplaySettingsPtrInput          `yaml:"-" validate:"-"`
	DriftTrackingSettings             datarobotsdk.DeploymentDriftTrackingSettingsPtrInput             `yaml:"-" validate:"-"`
	HealthSettings                    datarobotsdk.DeploymentHealthSettingsPtrInput                    `yaml:"-" validate:"-"`
	PredictionIntervalsSettings       datarobotsdk.DeploymentPredictionIntervalsSettingsPtrInput       `yaml:"-" validate:"-"`
	PredictionWarningSettings         datarobotsdk.DeploymentPredictionWarningSettingsPtrInput         `yaml:"-" validate:"-"`
	PredictionsByForecastDateSettings datarobotsdk.DeploymentPredictionsByForecastDateSettingsPtrInput `yaml:"-" validate:"-"`
	PredictionsDataCollectionSettings datarobotsdk.DeploymentPredictionsDataCollectionSettingsPtrInput `yaml:"-" validate:"-"`
	PredictionsSettings               datarobotsdk.DeploymentPredictionsSettingsPtrInput               `yaml:"-" validate:"-"`
	SegmentAnalysisSettings           datarobotsdk.DeploymentSegmentAnalysisSettingsPtrInput           `yaml:"-" validate:"-"`
}

// PlaygroundArgs contains the arguments of an LLM playground.
type PlaygroundArgs struct {
	ResourceName string `yaml:"resourceName" validate:"required"`
	Name         string `yaml:"name" validate:"required"`
}

// LLMSettings tunes the completions of an LLM blueprint.
type LLMSettings struct {
	MaxCompletionLength int    `yaml:"maxCompletionLength" validate:"gte=0,lte=512"`
	SystemPrompt        string `yaml:"systemPrompt"`
}

// VectorDatabaseSettings tunes document retrieval of an LLM blueprint.
type VectorDatabaseSettings struct {
	MaxDocumentsRetrievedPerPrompt *int `yaml:"maxDocumentsRetrievedPerPrompt,omitempty" validate:"omitempty,gt=0"`
	MaxTokens                      *int `yaml:"maxTokens,omitempty" validate:"omitempty,gt=0"`
}

// LLMBlueprintArgs contains the arguments of an LLM blueprint.
type LLMBlueprintArgs struct {
	ResourceName           string                 `yaml:"resourceName" validate:"required"`
	Name                   string                 `yaml:"name" validate:"required"`
	LLMSettings            LLMSettings            `yaml:"llmSettings"`
	LLMID                  string                 `yaml:"llmId" validate:"required"`
	VectorDatabaseSettings VectorDatabaseSettings `yaml:"vectorDatabaseSettings"`
}

// ChunkingParameters controls how a vector database splits its source documents.
type ChunkingParameters struct {
	EmbeddingModel         string                       `yaml:"embeddingModel,omitempty"`
	ChunkingMethod         VectorDatabaseChunkingMethod `yaml:"chunkingMethod,omitempty" validate:"omitempty,oneof=recursive semantic"`
	ChunkSize              int                          `yaml:"chunkSize" validate:"gte=128,lte=512"`
	ChunkOverlapPercentage *int                         `yaml:"chunkOverlapPercentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	Separators             []string                     `yaml:"separators,omitempty"`
}

// VectorDatabaseArgs contains the arguments of a vector database.
type VectorDatabaseArgs struct {
	ResourceName       string             `yaml:"resourceName" validate:"required"`
	Name               string             `yaml:"name" validate:"required"`
	ChunkingParameters ChunkingParameters `yaml:"chunkingParameters"`
}

// DatasetArgs contains the arguments of a dataset uploaded from a local file.
type DatasetArgs struct {
	ResourceName string `yaml:"resourceName" validate:"required"`
	Name         string `yaml:"name" validate:"required"`
	FilePath     string `yaml:"filePath" validate:"required"`
}

// UseCaseArgs contains the arguments of a use case.
type UseCaseArgs struct {
	ResourceName string `yaml:"resourceName" validate:"required"`
	Name         string `yaml:"name" validate:"required"`
	Description  string `yaml:"description,omitempty"`
}

// PredictionEnvironmentArgs contains the arguments of a prediction environment.
type PredictionEnvironmentArgs struct {
	ResourceName string                        `yaml:"resourceName" validate:"required"`
	Name         string                        `yaml:"name" validate:"required"`
	Platform     PredictionEnvironmentPlatform `yaml:"platform" validate:"required,oneof=aws gcp azure onPremise datarobot datarobotServerless openShift other snowflake sapAiCore"`
}

// CredentialArgs names a platform credential.
type CredentialArgs struct {
	ResourceName string `yaml:"resourceName" validate:"required"`
	Name         string `yaml:"name" validate:"required"`
}

// QaApplicationArgs contains the arguments of a Q&A chat application.
type QaApplicationArgs struct {
	ResourceName string `yaml:"resourceName" validate:"required"`
	Name         string `yaml:"name" validate:"required"`
}

// ApplicationSourceArgs contains the arguments of a custom application source.
type ApplicationSourceArgs struct {
	ResourceName string `yaml:"resourceName" validate:"required"`
	// Explicit file list. Mutually exclusive with FolderPath; one of them is required.
	Files []ModelFile `yaml:"files,omitempty" validate:"excluded_with=FolderPath,dive"`
	// Local folder holding the application. Mutually exclusive with Files.
	FolderPath string `yaml:"folderPath,omitempty"`
	Name       string `yaml:"name,omitempty"`
	// Number of replicas serving the application. Optional.
	Replicas *int `yaml:"replicas,omitempty" validate:"omitempty,gt=0"`
	// Resource bundle of the application, e.g. "cpu.small". Optional.
	ResourceLabel string `yaml:"resourceLabel,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their YAML names, the way users write them.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}

		return name
	})
	v.RegisterStructValidation(validateCondition, Condition{})
	v.RegisterStructValidation(validateCustomModelLabels, CustomModelArgs{})
	v.RegisterStructValidation(validateApplicationSource, ApplicationSourceArgs{})

	return v
}

// Validate checks any of the argument schemas of this package.
func Validate(args any) error {
	if err := validate.Struct(args); err != nil {
		return fmt.Errorf("invalid %T: %w", args, err)
	}

	return nil
}

func validateCondition(sl validator.StructLevel) {
	condition, ok := sl.Current().Interface().(Condition)
	if !ok {
		return
	}
	if !isValidComparand(condition.Comparand) {
		sl.ReportError(condition.Comparand, "comparand", "Comparand", "comparand", "")
	}
}

func isValidComparand(comparand any) bool {
	switch c := comparand.(type) {
	case float64, float32, int, int64, string, bool, []string:
		return true
	case []any:
		for _, item := range c {
			if _, ok := item.(string); !ok {
				return false
			}
		}

		return true
	default:
		return false
	}
}

func validateApplicationSource(sl validator.StructLevel) {
	source, ok := sl.Current().Interface().(ApplicationSourceArgs)
	if !ok {
		return
	}
	if source.FolderPath == "" && len(source.Files) == 0 {
		sl.ReportError(source.Files, "files", "Files", "required_without", "FolderPath")
	}
}

func validateCustomModelLabels(sl validator.StructLevel) {
	args, ok := sl.Current().Interface().(CustomModelArgs)
	if !ok {
		return
	}

	switch args.TargetType {
	case TargetTypeBinary:
		if args.PositiveClassLabel == "" {
			sl.ReportError(args.PositiveClassLabel, "positiveClassLabel", "PositiveClassLabel", "required_for_binary", "")
		}
		if args.NegativeClassLabel == "" {
			sl.ReportError(args.NegativeClassLabel, "negativeClassLabel", "NegativeClassLabel", "required_for_binary", "")
		}
	case TargetTypeMulticlass:
		if len(args.ClassLabels) == 0 {
			sl.ReportError(args.ClassLabels, "classLabels", "ClassLabels", "required_for_multiclass", "")
		}
	}
}

// LoadGuardrails decodes a YAML list of guard configurations and validates each of them.
func LoadGuardrails(r io.Reader) ([]CustomModelGuardConfigurationArgs, error) {
	var guards []CustomModelGuardConfigurationArgs
	if err := yaml.NewDecoder(r).Decode(&guards); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to decode guardrails: %w", err)
	}

	for i := range guards {
		if err := Validate(guards[i]); err != nil {
			return nil, fmt.Errorf("guardrail %d (%q): %w", i, guards[i].Name, err)
		}
	}

	return guards, nil
}

// ToGuardConfiguration turns a guardrail template into a guard configuration for a custom model.
func (g GuardrailTemplate) ToGuardConfiguration() CustomModelGuardConfigurationArgs {
	return CustomModelGuardConfigurationArgs{
		Name:         g.Name,
		Stages:       append([]Stage(nil), g.Stages...),
		TemplateName: g.TemplateName,
		Intervention: g.Intervention,
	}
}
