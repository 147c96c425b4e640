package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/synapse-health/guardian/pkg/audio/capture"
	"github.com/synapse-health/guardian/pkg/audio/pcm"
	"github.com/synapse-health/guardian/pkg/audio/playback"
	"github.com/synapse-health/guardian/pkg/audio/portaudio"
	"github.com/synapse-health/guardian/pkg/cli"
	"github.com/synapse-health/guardian/pkg/consult"
	"github.com/synapse-health/guardian/pkg/consult/api"
	"github.com/synapse-health/guardian/pkg/consult/transport"
)

const (
	micNativeRate      = 48000
	micFramesPerBuffer = 4096
	speakerRate        = 24000
	speakerFrames      = 1024
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Run a full-duplex live consult session",
	Long: `Run a full-duplex live consult session.

Starts a consult, opens the session's live channel, and streams microphone
audio to the backend while rendering the transcript, session state, and
safety alerts in a terminal UI. When the backend raises a safety
interruption, the warning text is shown as an overlay and the synthesized
warning voice is played through the speakers.

Keys:
  p  pause     r  resume     s  force safety check
  e  end the consult         q  quit (ends the consult)

Examples:
  guardian live --patient patient_001
  guardian live --patient patient_001 --no-audio`,
	RunE: runLive,
}

func init() {
	liveCmd.Flags().String("patient", "", "patient identifier (required)")
	liveCmd.Flags().String("provider", "", "clinician identifier (default: context provider)")
	liveCmd.Flags().Bool("no-audio", false, "run without microphone capture and speaker playback")
	liveCmd.Flags().Int("sample-rate", 0, "capture target rate in Hz (default: context, then 16000)")
}

func runLive(cmd *cobra.Command, args []string) error {
	cliCtx, err := getContext()
	if err != nil {
		return err
	}
	client, err := newAPIClient(cliCtx)
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
	noAudio, _ := cmd.Flags().GetBool("no-audio")

	targetRate, _ := cmd.Flags().GetInt("sample-rate")
	if targetRate <= 0 {
		targetRate = cliCtx.SampleRate
	}
	if targetRate <= 0 {
		targetRate = 16000
	}

	// Logs go to the TUI panel, not the terminal.
	logWriter := cli.NewLogWriter(200)
	logger := slog.New(slog.NewTextHandler(logWriter, nil))

	started, err := client.StartConsult(cmd.Context(), patient, providerID(provider, cliCtx))
	if err != nil {
		return err
	}
	logger.Info("consult started", "session", started.SessionID, "patient", started.PatientName)

	mgr, err := transport.NewManager(transport.ManagerConfig{
		Dialer: transport.NewDialer(10 * time.Second),
		URL:    client.WSURL(started.SessionID),
		Logger: logger,
	})
	if err != nil {
		return err
	}
	if err := mgr.Connect(cmd.Context()); err != nil {
		return fmt.Errorf("connect live channel: %w", err)
	}

	var player consult.Player
	var speaker *portaudio.Speaker
	if !noAudio {
		speaker, err = portaudio.NewSpeaker(speakerRate, speakerFrames)
		if err != nil {
			mgr.Close()
			return fmt.Errorf("open speaker: %w", err)
		}
		defer speaker.Close()
		player = playback.NewAccumulator(playback.Config{
			Sink:   speaker,
			Logger: logger,
		})
	}

	c, err := consult.New(consult.Config{
		SessionID: started.SessionID,
		Link:      mgr,
		Player:    player,
		Logger:    logger,
	})
	if err != nil {
		mgr.Close()
		return err
	}

	captureCtx, cancelCapture := context.WithCancel(cmd.Context())
	defer cancelCapture()

	if !noAudio {
		mic, err := portaudio.NewMic(micNativeRate, micFramesPerBuffer)
		if err != nil {
			c.Close()
			return fmt.Errorf("open microphone: %w", err)
		}
		defer mic.Close()

		pipe := capture.NewPipeline(mic, capture.Config{
			Target:          pcm.Format{SampleRate: targetRate},
			FramesPerBuffer: micFramesPerBuffer,
			Logger:          logger,
		})
		if err := pipe.Start(captureCtx); err != nil {
			c.Close()
			return err
		}
		defer pipe.Stop()

		go func() {
			for chunk := range pipe.Chunks() {
				if err := c.SendAudio(chunk); err != nil {
					logger.Warn("audio send failed", "error", err)
				}
			}
		}()
	}

	title := fmt.Sprintf("GUARDIAN // %s", started.PatientName)
	model := newLiveModel(c, logWriter, title)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		c.Close()
		return err
	}

	cancelCapture()
	return finalizeLive(cmd.Context(), client, c, started.SessionID)
}

// finalizeLive makes sure a consult that left the TUI without a result
// is ended over REST, then prints the SOAP note and billing record.
func finalizeLive(ctx context.Context, client *api.Client, c *consult.Consult, sessionID string) error {
	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		res, err := client.EndConsult(ctx, sessionID)
		if err != nil {
			c.Close()
			return fmt.Errorf("end consult: %w", err)
		}
		c.CompleteFromAck(consult.Result{
			SOAPNote:        res.SOAPNote,
			Billing:         res.Billing,
			DurationMinutes: res.DurationMinutes,
		})
		select {
		case <-c.Done():
		case <-time.After(time.Second):
		}
	}
	c.Close()

	result := c.Result()
	if result == nil {
		cli.PrintWarning("Consult closed without a final report")
		return nil
	}

	cli.PrintSuccess("Consult complete (%d min)", result.DurationMinutes)
	return outputResult(result, outputFile, outputJSON)
}
