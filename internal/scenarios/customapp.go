package scenarios

import (
	"fmt"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/derluke/pulumi-datarobot-tests/internal/fixtures"
	"github.com/derluke/pulumi-datarobot-tests/pkg/datarobot"
)

const customAppRuns = 5

// CustomApp declares the custom application scenario at the given run.
//
//  1. create
//  2. identical
//  3. external access enabled
//  4. renamed
//  5. modified source folder
func CustomApp(ctx *pulumi.Context, run int, fx *fixtures.Fixtures) error {
	if run < 1 || run > customAppRuns {
		return fmt.Errorf("%w %d for custom-apps", ErrUnknownRun, run)
	}

	var (
		folder string
		err    error
	)
	if run == 5 {
		folder, err = fx.ModifiedAppFolder()
	} else {
		folder, err = fx.AppFolder()
	}
	if err != nil {
		return fmt.Errorf("failed to prepare application folder for run %d: %w", run, err)
	}

	args := &datarobot.CustomAppArgs{
		ResourceName: "test-custom-app",
		Name:         "pytest app",
		Source: datarobot.ApplicationSourceArgs{
			ResourceName: "test-app-source",
			Name:         "pytest app source",
			FolderPath:   folder,
		},
		ExternalAccessEnabled: run == 3,
	}
	if run >= 4 {
		args.Name = "pytest app 2"
	}

	app, err := datarobot.NewCustomApp(ctx, "pytest", args)
	if err != nil {
		return fmt.Errorf("failed to declare custom app for run %d: %w", run, err)
	}

	ctx.Export(OutputAppID, app.GetCustomApplication().ID())
	ctx.Export(OutputAppSourceID, app.GetApplicationSource().ID())
	ctx.Export(OutputAppSourceVersionID, app.GetApplicationSource().VersionId)
	ctx.Export(OutputApplicationURL, app.GetCustomApplication().ApplicationUrl)

	return nil
}
