package scenarios

import (
	"errors"
	"fmt"
)

// Stack outputs exported by the scenario programs.
const (
	OutputCustomModelID            = "custom_model_id"
	OutputCustomModelVersionID     = "custom_model_version_id"
	OutputRegisteredModelVersionID = "registered_model_version_id"
	OutputDeploymentID             = "deployment_id"
	OutputAppID                    = "app_id"
	OutputAppSourceID              = "app_source_id"
	OutputAppSourceVersionID       = "app_source_version_id"
	OutputApplicationURL           = "application_url"
)

// Step is one run of a scenario and how its outputs relate to the previous run.
type Step struct {
	Run int
	// ExpectNoChanges fails the update when the engine plans any change.
	ExpectNoChanges bool
	// Stable outputs must equal their value after the previous run.
	Stable []string
	// Changed outputs must differ from their value after the previous run.
	Changed []string
}

// CustomModelSteps returns the runs of the custom model scenario, for both variants.
func CustomModelSteps() []Step {
	id := []string{OutputCustomModelID}
	idAndVersion := []string{OutputCustomModelID, OutputCustomModelVersionID}
	version := []string{OutputCustomModelVersionID}

	return []Step{
		{Run: 1},
		{Run: 2, ExpectNoChanges: true, Stable: idAndVersion},
		{Run: 3, Stable: id, Changed: version},
		{Run: 4, Stable: id, Changed: version},
		{Run: 5, Stable: idAndVersion},
		{Run: 6, Stable: id, Changed: version},
		{Run: 7, Stable: id, Changed: version},
		{Run: 8, Stable: idAndVersion},
	}
}

// CustomAppSteps returns the runs of the custom application scenario.
func CustomAppSteps() []Step {
	all := []string{OutputAppID, OutputAppSourceID, OutputAppSourceVersionID}

	return []Step{
		{Run: 1},
		{Run: 2, Stable: all},
		{Run: 3, Stable: all},
		{Run: 4, Stable: all},
		{Run: 5, Stable: []string{OutputAppID, OutputAppSourceID}, Changed: []string{OutputAppSourceVersionID}},
	}
}

// CompareOutputs checks the outputs of a run against the previous run's outputs.
func CompareOutputs(step Step, previous, current map[string]string) error {
	var errs []error

	for _, key := range step.Stable {
		before, after, err := outputPair(key, previous, current)
		if err != nil {
			errs = append(errs, err)

			continue
		}
		if before != after {
			errs = append(errs, fmt.Errorf("run %d: %s changed from %q to %q", step.Run, key, before, after))
		}
	}

	for _, key := range step.Changed {
		before, after, err := outputPair(key, previous, current)
		if err != nil {
			errs = append(errs, err)

			continue
		}
		if before == after {
			errs = append(errs, fmt.Errorf("run %d: %s stayed %q", step.Run, key, after))
		}
	}

	return errors.Join(errs...)
}

func outputPair(key string, previous, current map[string]string) (string, string, error) {
	before, ok := previous[key]
	if !ok {
		return "", "", fmt.Errorf("output %s missing from the previous run", key)
	}
	after, ok := current[key]
	if !ok {
		return "", "", fmt.Errorf("output %s missing from the current run", key)
	}

	return before, after, nil
}
