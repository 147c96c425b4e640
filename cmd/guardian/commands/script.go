package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/synapse-health/guardian/pkg/cli"
)

// ScriptRequest is a scripted consult loaded from a YAML or JSON file.
type ScriptRequest struct {
	// PatientID selects the patient. Required unless --session is given.
	PatientID string `json:"patient_id" yaml:"patient_id"`

	// ProviderID overrides the context provider.
	ProviderID string `json:"provider_id,omitempty" yaml:"provider_id,omitempty"`

	// IntervalMS is the pause between lines in milliseconds. Default 1500.
	IntervalMS int `json:"interval_ms,omitempty" yaml:"interval_ms,omitempty"`

	// Lines are delivered in order.
	Lines []ScriptLine `json:"lines" yaml:"lines"`
}

// ScriptLine is one utterance of a scripted consult.
type ScriptLine struct {
	Speaker string `json:"speaker" yaml:"speaker"`
	Text    string `json:"text" yaml:"text"`

	// PauseMS overrides the script interval after this line.
	PauseMS int `json:"pause_ms,omitempty" yaml:"pause_ms,omitempty"`
}

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Replay a scripted consult transcript",
	Long: `Replay a scripted consult transcript against the backend.

Reads a script file (-f), starts a session (or attaches to an existing one
with --session), delivers each line as a transcript entry with a pause
between lines, and optionally finalizes the consult.

Script file format (YAML):

  patient_id: patient_001
  interval_ms: 1500
  lines:
    - speaker: patient
      text: The migraines are back, twice a week now.
    - speaker: doctor
      text: Let's start you on sumatriptan 50mg as needed.

Example:
  guardian script -f consult.yaml --check-safety --end`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == "" {
			return fmt.Errorf("script file is required, use -f flag")
		}

		var script ScriptRequest
		if err := cli.LoadRequest(inputFile, &script); err != nil {
			return err
		}
		if len(script.Lines) == 0 {
			return fmt.Errorf("script has no lines")
		}

		ctx, err := getContext()
		if err != nil {
			return err
		}
		client, err := newAPIClient(ctx)
		if err != nil {
			return err
		}

		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID == "" {
			if script.PatientID == "" {
				return fmt.Errorf("script needs patient_id, or attach with --session")
			}
			res, err := client.StartConsult(cmd.Context(), script.PatientID, providerID(script.ProviderID, ctx))
			if err != nil {
				return err
			}
			sessionID = res.SessionID
			cli.PrintSuccess("Consult started for %s (session %s)", res.PatientName, sessionID)
		}

		interval := 1500 * time.Millisecond
		if script.IntervalMS > 0 {
			interval = time.Duration(script.IntervalMS) * time.Millisecond
		}
		checkSafety, _ := cmd.Flags().GetBool("check-safety")
		endAfter, _ := cmd.Flags().GetBool("end")

		for i, line := range script.Lines {
			speaker := line.Speaker
			if speaker == "" {
				speaker = "doctor"
			}
			fmt.Printf("[%s] %s\n", speaker, line.Text)

			if _, err := client.AddTranscript(cmd.Context(), sessionID, line.Text, speaker); err != nil {
				return fmt.Errorf("line %d: %w", i+1, err)
			}

			pause := interval
			if line.PauseMS > 0 {
				pause = time.Duration(line.PauseMS) * time.Millisecond
			}
			if i < len(script.Lines)-1 {
				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				case <-time.After(pause):
				}
			}
		}

		if checkSafety {
			res, err := client.CheckSafety(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			if res.RequiresInterruption {
				cli.PrintWarning("%s: %s", res.SafetyLevel, res.Warning)
			} else {
				cli.PrintInfo("Safety check: %s", res.Status)
			}
		}

		if endAfter {
			res, err := client.EndConsult(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			cli.PrintSuccess("Consult ended (%d min)", res.DurationMinutes)
			return outputResult(res, outputFile, outputJSON)
		}

		cli.PrintInfo("Session %s left open", sessionID)
		return nil
	},
}

func init() {
	scriptCmd.Flags().String("session", "", "attach to an existing session instead of starting one")
	scriptCmd.Flags().Bool("check-safety", false, "force a safety check after the last line")
	scriptCmd.Flags().Bool("end", false, "finalize the consult after the script")
}
