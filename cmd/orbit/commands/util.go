package commands

import (
	"time"

	"github.com/schmitech/orbit-go/pkg/cli"
	"github.com/schmitech/orbit-go/pkg/orbit"
)

// loadRequest loads a request from a YAML or JSON file
func loadRequest(path string, v any) error {
	return cli.LoadRequest(path, v)
}

// printError prints an error message to stderr
func printError(format string, args ...any) {
	cli.PrintError(format, args...)
}

// printSuccess prints a success message
func printSuccess(format string, args ...any) {
	cli.PrintSuccess(format, args...)
}

// printVerbose prints verbose output to stderr
func printVerbose(format string, args ...any) {
	cli.PrintVerbose(isVerbose(), format, args...)
}

// createClient creates an Orbit API client from context configuration
func createClient(ctx *cli.Context) *orbit.Client {
	var opts []orbit.Option

	if ctx.APIKey != "" {
		opts = append(opts, orbit.WithAPIKey(ctx.APIKey))
	}
	if ctx.SessionID != "" {
		opts = append(opts, orbit.WithSessionID(ctx.SessionID))
	}
	if ctx.Timeout > 0 {
		opts = append(opts, orbit.WithTimeout(time.Duration(ctx.Timeout)*time.Second))
	}
	if ctx.StreamTimeout > 0 {
		opts = append(opts, orbit.WithStreamTimeout(time.Duration(ctx.StreamTimeout)*time.Second))
	}

	return orbit.NewClient(ctx.BaseURL, opts...)
}
