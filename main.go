// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/cli"

	"github.com/hashicorp/tfgraph/internal/command"
	"github.com/hashicorp/tfgraph/internal/logging"
)

// Version is the semantic version of this build, overridable at link time.
var Version = "0.1.0-dev"

func main() {
	os.Exit(realMain())
}

func realMain() int {
	defer logging.PanicHandler()

	logger := logging.RootLogger()

	commandUI := &cli.BasicUi{
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	c := cli.NewCLI("tfgraph", Version)
	c.Args = os.Args[1:]
	c.Commands = map[string]cli.CommandFactory{
		"expand": func() (cli.Command, error) {
			return &command.ExpandCommand{
				UI:     commandUI,
				Logger: logger,
			}, nil
		},
	}

	exitStatus, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %s\n", err)
		return 1
	}
	return exitStatus
}
