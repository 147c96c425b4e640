package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/synapse-health/guardian/pkg/cli"
)

var consultCmd = &cobra.Command{
	Use:   "consult",
	Short: "Manage consult sessions over REST",
	Long: `Manage consult sessions over REST.

These commands drive a session without a live audio link: start a session,
inject transcript lines, force a safety evaluation, inspect state, and
finalize to receive the SOAP note and billing record.

Examples:
  guardian consult start --patient patient_001
  guardian consult transcript <session-id> --text "Starting you on tramadol" --speaker doctor
  guardian consult check-safety <session-id>
  guardian consult status <session-id>
  guardian consult end <session-id>`,
}

var consultStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new consult session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := getContext()
		if err != nil {
			return err
		}
		client, err := newAPIClient(ctx)
		if err != nil {
			return err
		}

		patient, err := cmd.Flags().GetString("patient")
		if err != nil {
			return fmt.Errorf("failed to read 'patient' flag: %w", err)
		}
		if patient == "" {
			return fmt.Errorf("--patient is required")
		}
		provider, _ := cmd.Flags().GetString("provider")

		printVerbose("starting consult for patient %s", patient)
		res, err := client.StartConsult(cmd.Context(), patient, providerID(provider, ctx))
		if err != nil {
			return err
		}

		cli.PrintSuccess("Consult started for %s (session %s)", res.PatientName, res.SessionID)
		return outputResult(res, outputFile, outputJSON)
	},
}

var consultEndCmd = &cobra.Command{
	Use:   "end <session-id>",
	Short: "End a consult and receive the SOAP note and billing record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := getContext()
		if err != nil {
			return err
		}
		client, err := newAPIClient(ctx)
		if err != nil {
			return err
		}

		res, err := client.EndConsult(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		cli.PrintSuccess("Consult ended (%d min)", res.DurationMinutes)
		return outputResult(res, outputFile, outputJSON)
	},
}

var consultStatusCmd = &cobra.Command{
	Use:   "status <session-id>",
	Short: "Show the server-side state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := getContext()
		if err != nil {
			return err
		}
		client, err := newAPIClient(ctx)
		if err != nil {
			return err
		}

		res, err := client.SessionStatus(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		return outputResult(res, outputFile, outputJSON)
	},
}

var consultTranscriptCmd = &cobra.Command{
	Use:   "transcript <session-id>",
	Short: "Inject a transcript line into a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := getContext()
		if err != nil {
			return err
		}
		client, err := newAPIClient(ctx)
		if err != nil {
			return err
		}

		text, err := cmd.Flags().GetString("text")
		if err != nil {
			return fmt.Errorf("failed to read 'text' flag: %w", err)
		}
		if text == "" {
			return fmt.Errorf("--text is required")
		}
		speaker, _ := cmd.Flags().GetString("speaker")

		res, err := client.AddTranscript(cmd.Context(), args[0], text, speaker)
		if err != nil {
			return err
		}

		printVerbose("transcript buffer length: %d", res.BufferLength)
		return outputResult(res, outputFile, outputJSON)
	},
}

var consultCheckSafetyCmd = &cobra.Command{
	Use:   "check-safety <session-id>",
	Short: "Force an immediate safety evaluation of the buffered transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := getContext()
		if err != nil {
			return err
		}
		client, err := newAPIClient(ctx)
		if err != nil {
			return err
		}

		res, err := client.CheckSafety(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if res.RequiresInterruption {
			cli.PrintWarning("%s: %s", res.SafetyLevel, res.Warning)
		}
		return outputResult(res, outputFile, outputJSON)
	},
}

func init() {
	consultStartCmd.Flags().String("patient", "", "patient identifier (required)")
	consultStartCmd.Flags().String("provider", "", "clinician identifier (default: context provider)")
	consultTranscriptCmd.Flags().String("text", "", "transcript line text (required)")
	consultTranscriptCmd.Flags().String("speaker", "doctor", "speaker role (doctor or patient)")

	consultCmd.AddCommand(consultStartCmd)
	consultCmd.AddCommand(consultEndCmd)
	consultCmd.AddCommand(consultStatusCmd)
	consultCmd.AddCommand(consultTranscriptCmd)
	consultCmd.AddCommand(consultCheckSafetyCmd)
}
