// Package confirm provides the blocking confirmation prompts that gate the
// deletion of persisted entries.
package confirm

import (
	"context"
	"errors"
	"io"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted signals the user interrupted the prompt (e.g., Ctrl+C).
var ErrAborted = errors.New("confirm: aborted")

// Confirmer asks the user to approve an action described by message.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// Func adapts a function to Confirmer.
type Func func(ctx context.Context, message string) (bool, error)

// Confirm implements Confirmer.
func (fn Func) Confirm(ctx context.Context, message string) (bool, error) {
	return fn(ctx, message)
}

// Always answers every prompt with answer.
func Always(answer bool) Confirmer {
	return Func(func(ctx context.Context, _ string) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		return answer, nil
	})
}

// SurveyOption configures the terminal confirmer.
type SurveyOption func(*surveyConfirmer)

// WithDefault sets the answer preselected in the prompt.
func WithDefault(answer bool) SurveyOption {
	return func(s *surveyConfirmer) {
		s.defaultAnswer = answer
	}
}

// WithHelp sets the help text shown when the user types "?".
func WithHelp(help string) SurveyOption {
	return func(s *surveyConfirmer) {
		s.help = help
	}
}

// WithStdio overrides the terminal streams used by the prompt.
func WithStdio(in terminal.FileReader, out terminal.FileWriter, errOut io.Writer) SurveyOption {
	return func(s *surveyConfirmer) {
		s.askOpts = append(s.askOpts, survey.WithStdio(in, out, errOut))
	}
}

type surveyConfirmer struct {
	defaultAnswer bool
	help          string
	askOpts       []survey.AskOpt
}

// Survey returns a Confirmer backed by an interactive yes/no terminal prompt.
func Survey(options ...SurveyOption) Confirmer {
	s := &surveyConfirmer{}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *surveyConfirmer) Confirm(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var out bool
	prompt := &survey.Confirm{
		Message: message,
		Default: s.defaultAnswer,
		Help:    s.help,
	}
	if err := survey.AskOne(prompt, &out, s.askOpts...); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
