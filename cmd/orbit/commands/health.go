package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/schmitech/orbit-go/pkg/orbit"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Server health and key validation",
}

var healthCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check server health",
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		client := createClient(cliCtx)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		status, err := client.Health.Health(ctx)
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}

		return outputResult(status, getOutputFile(), isJSONOutput())
	},
}

var healthReadyCmd = &cobra.Command{
	Use:   "ready",
	Short: "Check server readiness",
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		client := createClient(cliCtx)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		status, err := client.Health.Ready(ctx)
		if err != nil {
			return fmt.Errorf("readiness check failed: %w", err)
		}

		return outputResult(status, getOutputFile(), isJSONOutput())
	},
}

var healthValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configured API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}

		client := createClient(cliCtx)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := client.Health.Validate(ctx); err != nil {
			if e, ok := orbit.AsError(err); ok && e.Kind == orbit.ErrKindHTTP && (e.HTTPStatus == 401 || e.HTTPStatus == 403) {
				return fmt.Errorf("API key rejected: %s", e.Message)
			}
			return fmt.Errorf("validation failed: %w", err)
		}

		printSuccess("API key accepted")
		return nil
	},
}

func init() {
	healthCmd.AddCommand(healthCheckCmd)
	healthCmd.AddCommand(healthReadyCmd)
	healthCmd.AddCommand(healthValidateCmd)
}
