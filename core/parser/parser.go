// Package parser turns raw input lines into pipelines of command stages.
//
// The grammar is deliberately small: tokens are whitespace delimited, `|`
// separates pipeline stages, `<` and `>` each consume the following token as
// a file path, and `&` marks the stage for background execution. There is no
// quoting or escaping.
package parser

import (
	"errors"
	"fmt"
	"strings"
)

// RedirectKind identifies which standard stream a redirection replaces.
type RedirectKind int

const (
	RedirectInput RedirectKind = iota
	RedirectOutput
)

func (k RedirectKind) String() string {
	if k == RedirectInput {
		return "input"
	}
	return "output"
}

func (k RedirectKind) operator() string {
	if k == RedirectInput {
		return "<"
	}
	return ">"
}

var (
	// ErrEmptyPipeline is returned when splitting a line yields no stages.
	ErrEmptyPipeline = errors.New("empty pipeline")

	// ErrEmptyCommand is returned for a stage with no command name, such as
	// the segments of "a ||b" or a stage consisting only of markers.
	ErrEmptyCommand = errors.New("empty command")
)

// MissingRedirectTargetError is returned when `<` or `>` is the last token of
// a stage and therefore has no file path to consume.
type MissingRedirectTargetError struct {
	Kind RedirectKind
}

func (e *MissingRedirectTargetError) Error() string {
	return fmt.Sprintf("syntax error: expected %s file after '%s'", e.Kind, e.Kind.operator())
}

// Stage is one pipeline element: a command with its arguments and per-stage
// modifiers.
type Stage struct {
	// Args holds the command name at position 0 followed by its arguments.
	// Never empty for a successfully parsed stage.
	Args []string

	// InputFile and OutputFile are redirection targets, empty when absent.
	InputFile  string
	OutputFile string

	// Background is set when the stage carried a `&` marker.
	Background bool
}

// Name returns the command name of the stage.
func (s Stage) Name() string {
	return s.Args[0]
}

// Pipeline is a non-empty ordered sequence of stages connected by pipes.
type Pipeline []Stage

// SplitPipeline splits a raw line on the pipe operator into per-stage texts
// with surrounding whitespace trimmed. Callers filter blank lines before
// calling; the texts themselves may still be empty (e.g. "a ||b") and fail
// later in ParseStage.
func SplitPipeline(raw string) ([]string, error) {
	texts := strings.Split(raw, "|")
	if len(texts) == 0 {
		return nil, ErrEmptyPipeline
	}
	for i, text := range texts {
		texts[i] = strings.TrimSpace(text)
	}
	return texts, nil
}

// ParseStage splits a stage text on whitespace and walks the tokens left to
// right, peeling off redirection and background markers. Marker position
// relative to plain arguments is irrelevant: "cmd a < in b &" and
// "cmd a b & < in" parse identically.
func ParseStage(text string) (Stage, error) {
	var stage Stage
	tokens := strings.Fields(text)
	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case "&":
			stage.Background = true
		case "<":
			i++
			if i >= len(tokens) {
				return Stage{}, &MissingRedirectTargetError{Kind: RedirectInput}
			}
			stage.InputFile = tokens[i]
		case ">":
			i++
			if i >= len(tokens) {
				return Stage{}, &MissingRedirectTargetError{Kind: RedirectOutput}
			}
			stage.OutputFile = tokens[i]
		default:
			stage.Args = append(stage.Args, tokens[i])
		}
	}
	if len(stage.Args) == 0 {
		return Stage{}, ErrEmptyCommand
	}
	return stage, nil
}

// Parse splits a raw line into a fully parsed pipeline.
func Parse(raw string) (Pipeline, error) {
	texts, err := SplitPipeline(raw)
	if err != nil {
		return nil, err
	}
	pipeline := make(Pipeline, 0, len(texts))
	for _, text := range texts {
		stage, err := ParseStage(text)
		if err != nil {
			return nil, err
		}
		pipeline = append(pipeline, stage)
	}
	return pipeline, nil
}
