// Package prompt asks for form values on the terminal.
package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/kozaktomas/faceauth/internal/form"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("prompt aborted")

// InputConfig configures a single line prompt.
type InputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

// Driver abstracts the terminal so prompting can be tested without one.
type Driver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Password(ctx context.Context, cfg InputConfig) (string, error)
}

type surveyDriver struct{}

// NewSurveyDriver returns a Driver backed by survey.
func NewSurveyDriver() Driver {
	return &surveyDriver{}
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{
		Message: cfg.Message,
		Help:    cfg.Help,
		Default: cfg.Default,
	}
	if err := survey.AskOne(prompt, &out, askOpts(cfg)...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (d *surveyDriver) Password(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Password{
		Message: cfg.Message,
		Help:    cfg.Help,
	}
	if err := survey.AskOne(prompt, &out, askOpts(cfg)...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func askOpts(cfg InputConfig) []survey.AskOpt {
	if cfg.Validator == nil {
		return nil
	}
	validator := cfg.Validator
	return []survey.AskOpt{survey.WithValidator(func(ans any) error {
		s, _ := ans.(string)
		return validator(s)
	})}
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

// FillMissing prompts for every required text field of def that has no value
// in data. Password fields are masked. File fields are never prompted for.
func FillMissing(ctx context.Context, driver Driver, def *form.Definition, data *form.Data) error {
	for _, f := range def.Fields {
		if !f.Required || f.IsFile() || data.Value(f.Name) != "" {
			continue
		}

		cfg := InputConfig{
			Message:   label(f) + ":",
			Validator: nonEmpty,
		}

		var (
			value string
			err   error
		)
		if f.IsSecret() {
			value, err = driver.Password(ctx, cfg)
		} else {
			value, err = driver.Input(ctx, cfg)
		}
		if err != nil {
			return fmt.Errorf("could not read %s: %w", f.Name, err)
		}
		data.Set(f.Name, value)
	}
	return nil
}

func label(f form.FieldDef) string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

func nonEmpty(s string) error {
	if s == "" {
		return errors.New("a value is required")
	}
	return nil
}
