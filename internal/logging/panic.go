// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package logging

import (
	"fmt"
	"os"
	"runtime/debug"
)

// This output is shown if a panic happens.
const panicOutput = `
!!!!!!!!!!!!!!!!!!!!!!!!!!!! TFGRAPH CRASH !!!!!!!!!!!!!!!!!!!!!!!!!!!!

tfgraph crashed! This is always indicative of a bug. Please report
the panic message and stack trace below, along with the configuration
that triggered the crash.

!!!!!!!!!!!!!!!!!!!!!!!!!!!! TFGRAPH CRASH !!!!!!!!!!!!!!!!!!!!!!!!!!!!
`

// PanicHandler is deferred at the start of main so that panics are
// logged through the root logger and reported to stderr even when
// logging is otherwise disabled.
func PanicHandler() {
	recovered := recover()
	if recovered == nil {
		return
	}

	logger.Error("unexpected panic", "recovered", recovered)

	fmt.Fprint(os.Stderr, panicOutput)
	fmt.Fprintf(os.Stderr, "panic: %v\n\n%s\n", recovered, debug.Stack())
	os.Exit(2)
}
