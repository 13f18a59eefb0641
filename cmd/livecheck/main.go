// Package main is the entry point for the livecheck CLI.
//
// livecheck can be used as a library (SDK) or as a standalone binary with an
// optional YAML configuration. This CLI provides the standalone binary.
//
// Usage:
//
//	livecheck check [names-file]          # Check every name in the file
//	livecheck check -c livecheck.yaml     # Check with a config file
//	livecheck validate -c livecheck.yaml  # Validate configuration
//	livecheck version                     # Show version info
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// exitInterrupted is the conventional exit code after SIGINT.
const exitInterrupted = 130

// newRootCmd builds the command tree. It just displays help when called
// without subcommands.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "livecheck",
		Short: "Check which channels are live",
		Long: `livecheck checks whether a list of Twitch channels is live.

Each name is fetched from the channel site and classified as live or
offline. Inconclusive pages are retried a bounded number of times, and the
number of checks in flight and per second is capped.

Quick start:
  1. Put one channel name per line in streamer_list.txt
  2. Run: livecheck check
  3. Optionally serve a status page: livecheck check --listen :8080`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(newCheckCmd(), newValidateCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of this livecheck binary.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "livecheck %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}

// exitCoder is implemented by errors that carry a process exit code.
type exitCoder interface {
	ExitCode() int
}

// exitCode maps an error returned by a command to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return exitInterrupted
	}
	var ec exitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return 1
}

// execute runs the command tree with args and returns the exit code.
// Errors other than an interrupt are printed to stderr.
func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(stderr, "livecheck: %v\n", err)
	}
	return exitCode(err)
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
