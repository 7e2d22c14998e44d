// Package config provides an environment config helper
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/derluke/pulumi-datarobot-tests/pkg/datarobot"
)

// LLM credential types accepted in LLM_CREDENTIAL_TYPE.
const (
	LLMCredentialTypeNone   = ""
	LLMCredentialTypeAzure  = "azure"
	LLMCredentialTypeGoogle = "google"
)

// Config allows setting the DataRobot connection and the custom model deployment via environment variables
type Config struct {
	DataRobotEndpoint string `envconfig:"DATAROBOT_ENDPOINT" default:"https://app.datarobot.com/api/v2"`
	DataRobotAPIToken string `envconfig:"DATAROBOT_API_TOKEN" required:"true"`

	// LLM credential bound to the custom model
	LLMCredentialType     string `envconfig:"LLM_CREDENTIAL_TYPE" default:""`
	AzureOpenAIAPIKey     string `envconfig:"AZURE_OPENAI_API_KEY" default:""`
	AzureOpenAIEndpoint   string `envconfig:"AZURE_OPENAI_ENDPOINT" default:""`
	AzureOpenAIDeployment string `envconfig:"AZURE_OPENAI_DEPLOYMENT" default:""`
	AzureOpenAIAPIVersion string `envconfig:"AZURE_OPENAI_API_VERSION" default:"2024-02-01"`
	GoogleServiceAccount  string `envconfig:"GOOGLE_SERVICE_ACCOUNT" default:""`
	GoogleRegion          string `envconfig:"GOOGLE_REGION" default:""`

	// Custom model specific configuration
	ModelDir                      string `envconfig:"MODEL_DIR" required:"false"`
	ModelName                     string `envconfig:"MODEL_NAME" default:"custom model"`
	ModelResourceName             string `envconfig:"MODEL_RESOURCE_NAME" default:"custom-model"`
	BaseEnvironmentID             string `envconfig:"BASE_ENVIRONMENT_ID" default:"5e8c889607389fe0f466c72d"`
	BaseEnvironmentName           string `envconfig:"BASE_ENVIRONMENT_NAME" default:"[DataRobot] Python 3.11 Scikit-Learn Drop-In"`
	TargetType                    string `envconfig:"TARGET_TYPE" default:"Regression"`
	TargetName                    string `envconfig:"TARGET_NAME" default:"target"`
	PredictionEnvironmentPlatform string `envconfig:"PREDICTION_ENVIRONMENT_PLATFORM" default:"datarobotServerless"`
	Deploy                        bool   `envconfig:"DEPLOY" default:"true"`
}

// LoadConfig loads configuration from environment variables
// All required environment variables must be set or will cause an error
// The loaded values are logged through the global zap logger (see zap.ReplaceGlobals)
func LoadConfig() (*Config, error) {
	var config Config

	err := envconfig.Process("", &config)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from environment variables: %w", err)
	}

	log := zap.S()
	log.Infof("Configuration loaded successfully:")
	log.Infof("  DataRobot Endpoint: %s", config.DataRobotEndpoint)
	log.Infof("  DataRobot API Token: %s", redact(config.DataRobotAPIToken))
	log.Infof("  LLM Credential Type: %s", config.LLMCredentialType)
	log.Infof("  Azure OpenAI Endpoint: %s", config.AzureOpenAIEndpoint)
	log.Infof("  Azure OpenAI Deployment: %s", config.AzureOpenAIDeployment)
	log.Infof("  Azure OpenAI API Version: %s", config.AzureOpenAIAPIVersion)
	log.Infof("  Google Region: %s", config.GoogleRegion)
	log.Infof("  Model Dir: %s", config.ModelDir)
	log.Infof("  Model Name: %s", config.ModelName)
	log.Infof("  Model Resource Name: %s", config.ModelResourceName)
	log.Infof("  Base Environment ID: %s", config.BaseEnvironmentID)
	log.Infof("  Base Environment Name: %s", config.BaseEnvironmentName)
	log.Infof("  Target Type: %s", config.TargetType)
	log.Infof("  Target Name: %s", config.TargetName)
	log.Infof("  Prediction Environment Platform: %s", config.PredictionEnvironmentPlatform)
	log.Infof("  Deploy: %t", config.Deploy)

	return &config, nil
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}

	return "********"
}

// ToLLMCredentials converts the LLM credential settings to the credential variant they describe.
// It returns nil when no credential type is configured.
func (c *Config) ToLLMCredentials() (datarobot.LLMCredentials, error) {
	var credentials datarobot.LLMCredentials

	switch c.LLMCredentialType {
	case LLMCredentialTypeNone:
		return nil, nil
	case LLMCredentialTypeAzure:
		if c.AzureOpenAIAPIKey == "" {
			return nil, fmt.Errorf("AZURE_OPENAI_API_KEY is required for azure credentials")
		}
		credentials = &datarobot.AzureOpenAICredentials{
			APIKey:          datarobot.SecretString(c.AzureOpenAIAPIKey),
			AzureEndpoint:   c.AzureOpenAIEndpoint,
			AzureDeployment: c.AzureOpenAIDeployment,
			APIVersion:      c.AzureOpenAIAPIVersion,
		}
	case LLMCredentialTypeGoogle:
		if c.GoogleServiceAccount == "" {
			return nil, fmt.Errorf("GOOGLE_SERVICE_ACCOUNT is required for google credentials")
		}
		credentials = &datarobot.GoogleLLMCredentials{
			ServiceAccountKey: datarobot.SecretString(c.GoogleServiceAccount),
			Region:            c.GoogleRegion,
		}
	default:
		return nil, fmt.Errorf("%w: %q", datarobot.ErrUnsupportedCredential, c.LLMCredentialType)
	}

	if err := credentials.Validate(); err != nil {
		return nil, err
	}

	return credentials, nil
}

// ToCustomModelDeploymentArgs converts the config to CustomModelDeploymentArgs for use with the Pulumi component
func (c *Config) ToCustomModelDeploymentArgs(credentials ...*datarobot.DRCredential) (*datarobot.CustomModelDeploymentArgs, error) {
	if c.ModelDir == "" {
		return nil, fmt.Errorf("MODEL_DIR is required to deploy a custom model")
	}

	args := &datarobot.CustomModelDeploymentArgs{
		CustomModel: datarobot.CustomModelArgs{
			ResourceName:        c.ModelResourceName,
			Name:                c.ModelName,
			BaseEnvironmentID:   c.BaseEnvironmentID,
			BaseEnvironmentName: c.BaseEnvironmentName,
			FolderPath:          c.ModelDir,
			TargetType:          datarobot.TargetType(c.TargetType),
			TargetName:          c.TargetName,
		},
		Credentials: credentials,
		Deploy:      c.Deploy,
	}

	// Set optional fields only if deploying
	if c.Deploy {
		args.PredictionEnvironment = &datarobot.PredictionEnvironmentArgs{
			Name:     c.ModelName + " prediction environment",
			Platform: datarobot.PredictionEnvironmentPlatform(c.PredictionEnvironmentPlatform),
		}
	}

	if err := datarobot.Validate(args.CustomModel); err != nil {
		return nil, err
	}

	return args, nil
}
