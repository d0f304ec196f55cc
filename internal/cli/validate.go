package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sigil/internal/level"
)

// LevelReport is the validation result for one level file.
type LevelReport struct {
	Path  string        `json:"path"`
	Valid bool          `json:"valid"`
	Name  string        `json:"name,omitempty"`
	Nodes int           `json:"nodes,omitempty"`
	Lines int           `json:"lines,omitempty"`
	Hash  string        `json:"hash,omitempty"`
	Error *LevelProblem `json:"error,omitempty"`
}

// LevelProblem locates a validation failure.
type LevelProblem struct {
	Field   string `json:"field,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool          `json:"valid"`
	Levels []LevelReport `json:"levels"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <level>...",
		Short: "Check level files",
		Long: `Load one or more level files (TOML, YAML or CUE) and report whether each
builds into a valid graph.

Exit codes:
  0 - All levels are valid
  1 - One or more levels are invalid
  2 - A file could not be read`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	f := NewFormatter(opts, cmd)

	result := ValidationResult{Valid: true, Levels: make([]LevelReport, 0, len(paths))}
	for _, path := range paths {
		report, err := validateLevel(path)
		if err != nil {
			return err
		}
		f.VerboseLog("validated %s: valid=%t", path, report.Valid)
		if !report.Valid {
			result.Valid = false
		}
		result.Levels = append(result.Levels, report)
	}

	if f.JSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeInvalidLevel, Message: "level validation failed"}
		}
		if err := f.Respond(resp); err != nil {
			return err
		}
	} else {
		writeValidateText(f, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "level validation failed")
	}
	return nil
}

func validateLevel(path string) (LevelReport, error) {
	report := LevelReport{Path: path}

	lvl, err := loadLevel(path)
	if err != nil {
		if GetExitCode(err) == ExitCommandError {
			return report, err
		}
		report.Error = problem(err)
		return report, nil
	}

	hash, err := lvl.Hash()
	if err != nil {
		return report, WrapExitError(ExitCommandError, "failed to hash level", err)
	}
	report.Valid = true
	report.Name = lvl.Name
	report.Nodes = len(lvl.Graph.Nodes)
	report.Lines = len(lvl.Graph.Lines)
	report.Hash = hash
	return report, nil
}

func problem(err error) *LevelProblem {
	var le *level.Error
	if !errors.As(err, &le) {
		return &LevelProblem{Message: err.Error()}
	}
	msg := le.Message
	if le.Err != nil {
		msg = fmt.Sprintf("%s: %v", le.Message, le.Err)
	}
	return &LevelProblem{Field: le.Field, Line: le.Line, Column: le.Column, Message: msg}
}

func writeValidateText(f *OutputFormatter, result ValidationResult) {
	w := f.Writer
	for _, r := range result.Levels {
		if r.Valid {
			fmt.Fprintf(w, "✓ %s (%s: %d nodes, %d lines)\n", r.Path, r.Name, r.Nodes, r.Lines)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", r.Path)
		p := r.Error
		switch {
		case p.Line > 0 && p.Field != "":
			fmt.Fprintf(w, "  %d:%d %s: %s\n", p.Line, p.Column, p.Field, p.Message)
		case p.Field != "":
			fmt.Fprintf(w, "  %s: %s\n", p.Field, p.Message)
		default:
			fmt.Fprintf(w, "  %s\n", p.Message)
		}
	}
}
