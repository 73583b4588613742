// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package logging

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// envLog is the environment variable that controls the log level.
const envLog = "TFGRAPH_LOG"

var logger hclog.Logger

func init() {
	logger = newLogger()
}

// RootLogger returns the root logger for the process. When the TFGRAPH_LOG
// environment variable is unset, logging is off entirely.
func RootLogger() hclog.Logger {
	return logger
}

// NewLogger returns a named sub-logger of the root logger.
func NewLogger(name string) hclog.Logger {
	if name == "" {
		return logger
	}
	return logger.Named(name)
}

func newLogger() hclog.Logger {
	var output io.Writer = os.Stderr

	return hclog.New(&hclog.LoggerOptions{
		Name:              "tfgraph",
		Level:             globalLogLevel(),
		Output:            output,
		IndependentLevels: true,
	})
}

func globalLogLevel() hclog.Level {
	envLevel := strings.ToUpper(os.Getenv(envLog))
	if envLevel == "" {
		return hclog.Off
	}
	if envLevel == "JSON" {
		envLevel = "TRACE"
	}
	return parseLogLevel(envLevel)
}

func parseLogLevel(envLevel string) hclog.Level {
	logLevel := hclog.Trace
	switch envLevel {
	case "TRACE", "DEBUG", "INFO", "WARN", "ERROR", "OFF":
		logLevel = hclog.LevelFromString(envLevel)
	}
	return logLevel
}
