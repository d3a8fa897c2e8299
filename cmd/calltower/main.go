package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(newApp(os.Stdout, os.Stderr)).Execute(); err != nil {
		exitCode := 1
		if withCode, ok := err.(interface{ ExitCode() int }); ok {
			exitCode = withCode.ExitCode()
		}
		if !isSilent(err) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(exitCode)
	}
}

// exitCodeError ends the process with a code other than 1. A nil err
// exits quietly, e.g. after a report already listed the failures.
type exitCodeError struct {
	code int
	err  error
}

func (e exitCodeError) Error() string {
	if e.err == nil {
		return "command failed"
	}
	return e.err.Error()
}

func (e exitCodeError) ExitCode() int {
	if e.code <= 0 {
		return 1
	}
	return e.code
}

func isSilent(err error) bool {
	e, ok := err.(exitCodeError)
	return ok && e.err == nil
}
