package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/synapse-health/guardian/pkg/cli"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Demo helpers",
}

var demoSimulateDangerCmd = &cobra.Command{
	Use:   "simulate-danger",
	Short: "Inject a simulated dangerous prescription into a session",
	Long: `Inject a simulated dangerous prescription into a live session.

The backend adds a synthetic doctor line prescribing the given drug and
runs it through the safety check, which normally triggers an interruption
on the session's live channel.

Example:
  guardian demo simulate-danger --session <session-id> --drug tramadol`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := getContext()
		if err != nil {
			return err
		}
		client, err := newAPIClient(ctx)
		if err != nil {
			return err
		}

		session, err := cmd.Flags().GetString("session")
		if err != nil {
			return fmt.Errorf("failed to read 'session' flag: %w", err)
		}
		if session == "" {
			return fmt.Errorf("--session is required")
		}
		drug, _ := cmd.Flags().GetString("drug")

		res, err := client.SimulateDanger(cmd.Context(), session, drug)
		if err != nil {
			return err
		}

		if res.SafetyResult.RequiresInterruption {
			cli.PrintWarning("%s: %s", res.SafetyResult.SafetyLevel, res.SafetyResult.WarningMessage)
		}
		return outputResult(res, outputFile, outputJSON)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend health",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := getContext()
		if err != nil {
			return err
		}
		client, err := newAPIClient(ctx)
		if err != nil {
			return err
		}

		res, err := client.Health(cmd.Context())
		if err != nil {
			return err
		}

		return outputResult(res, outputFile, outputJSON)
	},
}

func init() {
	demoSimulateDangerCmd.Flags().String("session", "", "session identifier (required)")
	demoSimulateDangerCmd.Flags().String("drug", "tramadol", "drug name to prescribe")

	demoCmd.AddCommand(demoSimulateDangerCmd)
}
