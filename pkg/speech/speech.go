// Package speech narrates text through a local text-to-speech command.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"doc-narrator/pkg/lang"
)

// DefaultRate is the speaking rate in words per minute
const DefaultRate = 150

// Synthesizer speaks text and blocks until playback has finished
type Synthesizer interface {
	Speak(ctx context.Context, text, language string) error
}

// SpeechError reports a failed synthesis command
type SpeechError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *SpeechError) Error() string {
	return fmt.Sprintf("speech command %s failed (exit=%d): %v %s", e.Command, e.ExitCode, e.Err, strings.TrimSpace(e.Stderr))
}

func (e *SpeechError) Unwrap() error {
	return e.Err
}

// commandResult is an internal process execution response
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for testability
type commandRunner interface {
	Run(ctx context.Context, stdin string, name string, args ...string) (commandResult, error)
}

// execRunner executes commands via os/exec
type execRunner struct{}

// Run executes one command feeding stdin, and captures stdout/stderr and exit code
func (r *execRunner) Run(ctx context.Context, stdin string, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}
	return result, nil
}

// CommandSynthesizer speaks through espeak-ng, espeak or macOS say.
// Text is passed on stdin so sentences starting with "-" are never read as flags.
type CommandSynthesizer struct {
	command string
	rate    int
	voice   string
	runner  commandRunner
}

// NewCommandSynthesizer creates a synthesizer for the given command.
// A fixed voice overrides the per-sentence language; rate <= 0 means DefaultRate.
func NewCommandSynthesizer(command string, rate int, voice string) *CommandSynthesizer {
	return newCommandSynthesizer(command, rate, voice, &execRunner{})
}

func newCommandSynthesizer(command string, rate int, voice string, runner commandRunner) *CommandSynthesizer {
	if command == "" {
		command = "espeak-ng"
	}
	if rate <= 0 {
		rate = DefaultRate
	}
	return &CommandSynthesizer{
		command: command,
		rate:    rate,
		voice:   voice,
		runner:  runner,
	}
}

// Speak runs the command once and waits for it to exit
func (s *CommandSynthesizer) Speak(ctx context.Context, text, language string) error {
	args := buildArgs(engineName(s.command), s.rate, s.voiceFor(language))
	result, err := s.runner.Run(ctx, text, s.command, args...)
	if err != nil {
		return &SpeechError{
			Command:  s.command,
			ExitCode: result.ExitCode,
			Stderr:   result.Stderr,
			Err:      err,
		}
	}
	return nil
}

// voiceFor returns the configured voice, or the base language for espeak voices
func (s *CommandSynthesizer) voiceFor(language string) string {
	if s.voice != "" {
		return s.voice
	}
	if language == "" {
		return ""
	}
	return lang.Base(language)
}

// engineName identifies the engine from the command path ("/usr/bin/espeak-ng" -> "espeak-ng")
func engineName(command string) string {
	return strings.TrimSuffix(filepath.Base(command), filepath.Ext(command))
}

// buildArgs builds the engine arguments for reading stdin at the given rate
func buildArgs(engine string, rate int, voice string) []string {
	switch engine {
	case "say":
		// say voices are names ("Monica"), not language codes; only explicit ones are passed
		args := []string{"-r", strconv.Itoa(rate), "-f", "-"}
		if voice != "" && !isLanguageCode(voice) {
			args = append(args, "-v", voice)
		}
		return args
	default:
		args := []string{"-s", strconv.Itoa(rate)}
		if voice != "" {
			args = append(args, "-v", voice)
		}
		return append(args, "--stdin")
	}
}

// isLanguageCode is a cheap check for two or three letter codes
func isLanguageCode(s string) bool {
	return len(s) == 2 || len(s) == 3
}
