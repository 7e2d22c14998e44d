// Package main is the entry point for the drstack CLI.
//
// drstack replays the DataRobot lifecycle programs through the Pulumi
// Automation API and scores deployments through the prediction API.
//
// Commands: up, outputs, down, predict.
package main

import (
	"fmt"
	"os"

	"github.com/derluke/pulumi-datarobot-tests/cmd/drstack/commands"
)

func main() {
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
