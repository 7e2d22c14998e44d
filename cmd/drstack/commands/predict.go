package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/derluke/pulumi-datarobot-tests/pkg/datarobot/config"
	"github.com/derluke/pulumi-datarobot-tests/pkg/drclient"
)

// Predict returns the command that scores a JSON file of records against a deployment.
//
// Environment variables:
//
//	DATAROBOT_API_TOKEN: DataRobot API token (required)
//	DATAROBOT_ENDPOINT: DataRobot API root (default https://app.datarobot.com/api/v2)
func Predict() *cobra.Command {
	var (
		deploymentID  string
		inputPath     string
		maxWait       time.Duration
		retryInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score records against a deployment, waiting for its inference server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := readRecordsFile(inputPath)
			if err != nil {
				return err
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			client, err := drclient.New(cfg.DataRobotEndpoint, cfg.DataRobotAPIToken,
				drclient.WithLogger(zap.L()),
				drclient.WithMaxWait(maxWait),
				drclient.WithRetryInterval(retryInterval))
			if err != nil {
				return err
			}

			predictions, err := client.PredictWithRetry(cmd.Context(), deploymentID, records)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), predictions)
		},
	}

	cmd.Flags().StringVar(&deploymentID, "deployment-id", "", "deployment to score against")
	cmd.Flags().StringVar(&inputPath, "input", "", "JSON file holding an array of records")
	cmd.Flags().DurationVar(&maxWait, "max-wait", 300*time.Second, "maximum time to wait for the inference server")
	cmd.Flags().DurationVar(&retryInterval, "retry-interval", 5*time.Second, "pause between attempts while the inference server starts")
	_ = cmd.MarkFlagRequired("deployment-id")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func readRecordsFile(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	return readRecords(f)
}

// readRecords decodes a JSON array of records.
func readRecords(r io.Reader) ([]map[string]any, error) {
	var records []map[string]any
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("input holds no records")
	}

	return records, nil
}
