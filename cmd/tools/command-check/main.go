// cmd/tools/command-check/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "inventory-assistant/internal/common/errors"
	"inventory-assistant/internal/interpreter"
)

type classification struct {
	Input      string                       `json:"input"`
	Normalized string                       `json:"normalized"`
	Intent     string                       `json:"intent"`
	Params     interpreter.ParsedParameters `json:"params,omitempty"`
	Command    *interpreter.Command         `json:"command,omitempty"`
	Error      string                       `json:"error,omitempty"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	classifyCmd := flag.NewFlagSet("classify", flag.ContinueOnError)
	classifyCmd.SetOutput(stderr)
	text := classifyCmd.String("text", "", "Command text (e.g., \"sell 2 kg sugar to Ali\")")
	unit := classifyCmd.String("unit", "unit", "Default unit for new products")
	threshold := classifyCmd.Float64("threshold", 5, "Default low-stock threshold for new products")

	if len(args) < 1 {
		help(stdout)
		return 1
	}

	switch args[0] {
	case "classify":
		if err := classifyCmd.Parse(args[1:]); err != nil {
			return 2
		}
		if strings.TrimSpace(*text) == "" {
			fmt.Fprintln(stderr, "Error: -text is required for classify.")
			classifyCmd.Usage()
			return 1
		}
		out := classify(*text, interpreter.NewValidator(*unit, *threshold))
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(stderr, "Error writing output: %v\n", err)
			return 1
		}
		if out.Error != "" {
			return 1
		}

	case "examples":
		for _, ex := range interpreter.Examples {
			fmt.Fprintln(stdout, ex)
		}

	case "recognizers":
		for _, name := range interpreter.NewClassifier(interpreter.DefaultRecognizers()...).Recognizers() {
			fmt.Fprintln(stdout, name)
		}

	case "help":
		help(stdout)

	default:
		help(stdout)
		return 1
	}
	return 0
}

// classify runs normalization, intent matching and field validation without
// touching any store.
func classify(text string, v *interpreter.Validator) classification {
	input := strings.TrimSpace(text)
	normalized := interpreter.Normalize(input)
	out := classification{Input: input, Normalized: normalized}

	match, err := interpreter.NewClassifier(interpreter.DefaultRecognizers()...).Classify(normalized)
	out.Intent = string(match.Intent)
	out.Params = match.Params
	if err != nil {
		out.Error = apperrors.Normalize(err).Message
		return out
	}
	if match.Intent == interpreter.IntentUnrecognized {
		out.Error = apperrors.NewUnrecognizedCommandError().Message
		return out
	}

	cmd, err := v.Validate(match)
	if err != nil {
		out.Error = apperrors.Normalize(err).Message
		return out
	}
	out.Command = cmd
	return out
}

func help(w io.Writer) {
	fmt.Fprintln(w, "Usage: command-check <command> [arguments]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  classify     Show how a command would be interpreted")
	fmt.Fprintln(w, "  examples     List the supported example commands")
	fmt.Fprintln(w, "  recognizers  List recognizers in matching order")
	fmt.Fprintln(w, "  help         Show this help message")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'command-check classify -h' for classify flags.")
}
