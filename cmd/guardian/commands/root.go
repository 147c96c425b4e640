package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/synapse-health/guardian/pkg/cli"
	"github.com/synapse-health/guardian/pkg/consult/api"
)

var (
	// Global flags
	cfgFile     string
	contextName string
	outputFile  string
	inputFile   string
	outputJSON  bool
	verbose     bool

	// Global configuration
	globalConfig *cli.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "guardian",
	Short: "Clinical consult guardian CLI",
	Long: `Guardian - a command line client for the Synapse clinical consult service.

The backend listens to a live doctor-patient conversation, transcribes it,
checks every prescription against the patient's medication list, and
interrupts the consult with a synthesized voice warning when it detects a
dangerous interaction. This tool drives sessions from the terminal:

  - consult: start, pause, and finalize sessions over REST
  - live:    full-duplex session with microphone capture, live transcript,
             safety alerts, and warning audio playback
  - script:  replay a scripted transcript for testing
  - patient: look up patient records and medication lists
  - demo:    inject a simulated dangerous prescription

Configuration is stored in ~/.guardian/ and supports multiple contexts,
similar to kubectl's context management.

Examples:
  # Set up a context and make it the default
  guardian config add-context clinic --server-url http://localhost:8000 --provider-id dr_chen
  guardian config use-context clinic

  # Start a consult and inspect it
  guardian consult start --patient patient_001
  guardian consult status <session-id>

  # Go live with audio
  guardian live --patient patient_001

  # Pipe output to another command
  guardian patient get patient_001 --json | jq '.current_medications'
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "", "", "config file (default is ~/.guardian/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	rootCmd.PersistentFlags().StringVarP(&inputFile, "file", "f", "", "input request file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON (for piping)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(consultCmd)
	rootCmd.AddCommand(liveCmd)
	rootCmd.AddCommand(scriptCmd)
	rootCmd.AddCommand(patientCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(healthCmd)
}

func initConfig() {
	var err error
	globalConfig, err = cli.LoadConfigWithPath(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}

// getConfig returns the global configuration
func getConfig() *cli.Config {
	return globalConfig
}

// getContext returns the context configuration to use
func getContext() (*cli.Context, error) {
	cfg := getConfig()
	if cfg == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}

	ctx, err := cfg.ResolveContext(contextName)
	if err != nil {
		if contextName == "" {
			return nil, fmt.Errorf("no context specified. Use -c flag or set a default context with 'guardian config use-context'")
		}
		return nil, err
	}

	return ctx, nil
}

// newAPIClient creates a backend REST client from context configuration
func newAPIClient(ctx *cli.Context) (*api.Client, error) {
	if ctx.ServerURL == "" {
		return nil, fmt.Errorf("server URL not configured, run: guardian config add-context")
	}

	var opts []api.Option
	if ctx.Timeout > 0 {
		opts = append(opts, api.WithTimeout(time.Duration(ctx.Timeout)*time.Second))
	}

	return api.NewClient(ctx.ServerURL, opts...), nil
}

// providerID resolves the provider identifier, preferring the flag over
// the context.
func providerID(flagValue string, ctx *cli.Context) string {
	if flagValue != "" {
		return flagValue
	}
	if ctx.ProviderID != "" {
		return ctx.ProviderID
	}
	return "provider_demo"
}

// outputResult outputs the result using cli package
func outputResult(result any, outputPath string, asJSON bool) error {
	format := cli.FormatYAML
	if asJSON {
		format = cli.FormatJSON
	}
	return cli.Output(result, cli.OutputOptions{
		Format: format,
		File:   outputPath,
	})
}

// printVerbose prints verbose output if enabled
func printVerbose(format string, args ...any) {
	cli.PrintVerbose(verbose, format, args...)
}
