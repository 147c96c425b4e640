package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// OutputFormat selects how a result (session status, SOAP note, patient
// record) is rendered.
type OutputFormat string

const (
	// FormatYAML is the terminal default.
	FormatYAML OutputFormat = "yaml"
	// FormatJSON is for piping into jq and friends.
	FormatJSON OutputFormat = "json"
	// FormatRaw writes strings and byte slices untouched.
	FormatRaw OutputFormat = "raw"
)

// jsonIndent is the default indentation for JSON output.
const jsonIndent = "  "

// OutputOptions selects the format and destination of a result.
type OutputOptions struct {
	// Format defaults to FormatYAML.
	Format OutputFormat

	// File receives the output instead of stdout. Useful for saving a
	// SOAP note under ~/.guardian/notes.
	File string

	// Indent overrides jsonIndent for JSON output.
	Indent string

	// Writer overrides both File and stdout when set.
	Writer io.Writer
}

// Output renders result to the configured destination.
func Output(result any, opts OutputOptions) error {
	var w io.Writer = os.Stdout

	if opts.Writer != nil {
		w = opts.Writer
	} else if opts.File != "" {
		f, err := os.Create(opts.File)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, result, opts.Indent)
	case FormatYAML, "":
		return writeYAML(w, result)
	case FormatRaw:
		return writeRaw(w, result)
	default:
		return fmt.Errorf("unsupported output format: %s", opts.Format)
	}
}

func writeJSON(w io.Writer, result any, indent string) error {
	if indent == "" {
		indent = jsonIndent
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", indent)
	return enc.Encode(result)
}

func writeYAML(w io.Writer, result any) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// writeRaw passes strings and byte slices through; anything else falls
// back to YAML.
func writeRaw(w io.Writer, result any) error {
	switch v := result.(type) {
	case []byte:
		_, err := w.Write(v)
		return err
	case string:
		_, err := io.WriteString(w, v)
		return err
	default:
		return writeYAML(w, result)
	}
}

// Terminal message helpers. Status lines go to stdout, errors and
// verbose chatter to stderr so piped output stays clean.

// PrintSuccess prints a success message with checkmark
func PrintSuccess(format string, args ...any) {
	fmt.Printf("✓ "+format+"\n", args...)
}

// PrintError prints an error message to stderr
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...any) {
	fmt.Printf("ℹ "+format+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...any) {
	fmt.Printf("⚠ "+format+"\n", args...)
}

// PrintVerbose prints verbose output to stderr
func PrintVerbose(verbose bool, format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}
