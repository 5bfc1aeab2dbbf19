package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/reoring/modelkit"
)

// errAborted is returned when the user interrupts the prompt.
var errAborted = errors.New("prompt aborted")

// asker abstracts the terminal so field collection can be tested without one.
type asker interface {
	Input(msg, help string, validate func(string) error) (string, error)
	Confirm(msg, help string) (bool, error)
	Select(msg, help string, options []string) (string, error)
}

// collect asks for every field of s and returns the raw input mapping. Empty
// answers for optional fields are left out so defaults apply.
func collect(ctx context.Context, a asker, s *modelkit.Schema) (map[string]any, error) {
	raw := map[string]any{}
	for _, fs := range s.Fields() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msg := fs.Name
		if fs.Required {
			msg += " *"
		}
		switch fs.Type.Kind() {
		case modelkit.KindBool:
			v, err := a.Confirm(msg, fs.Description)
			if err != nil {
				return nil, err
			}
			raw[fs.Name] = v
		case modelkit.KindEnum:
			v, err := a.Select(msg, fs.Description, fs.Type.Constraints().Enum)
			if err != nil {
				return nil, err
			}
			raw[fs.Name] = v
		default:
			v, err := a.Input(msg, fs.Description, inputValidator(fs))
			if err != nil {
				return nil, err
			}
			if v == "" && !fs.Required {
				continue
			}
			raw[fs.Name] = v
		}
	}
	return raw, nil
}

// inputValidator rejects answers the field type can never coerce, so the user
// can retype them. Constraints are left to Validate.
func inputValidator(fs modelkit.FieldSpec) func(string) error {
	return func(ans string) error {
		ans = strings.TrimSpace(ans)
		if ans == "" {
			if fs.Required {
				return fmt.Errorf("%s is required", fs.Name)
			}
			return nil
		}
		switch fs.Type.Kind() {
		case modelkit.KindInt:
			if _, err := strconv.ParseInt(ans, 10, 64); err != nil {
				return fmt.Errorf("%s must be an integer", fs.Name)
			}
		case modelkit.KindFloat:
			if _, err := strconv.ParseFloat(ans, 64); err != nil {
				return fmt.Errorf("%s must be a number", fs.Name)
			}
		}
		return nil
	}
}

type surveyAsker struct{}

func (surveyAsker) Input(msg, help string, validate func(string) error) (string, error) {
	var out string
	prompt := &survey.Input{Message: msg, Help: help}
	var opts []survey.AskOpt
	if validate != nil {
		opts = append(opts, survey.WithValidator(func(ans any) error {
			s, _ := ans.(string)
			return validate(s)
		}))
	}
	if err := survey.AskOne(prompt, &out, opts...); err != nil {
		return "", translateSurveyErr(err)
	}
	return strings.TrimSpace(out), nil
}

func (surveyAsker) Confirm(msg, help string) (bool, error) {
	var out bool
	if err := survey.AskOne(&survey.Confirm{Message: msg, Help: help}, &out); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func (surveyAsker) Select(msg, help string, options []string) (string, error) {
	var out string
	if err := survey.AskOne(&survey.Select{Message: msg, Help: help, Options: options}, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errAborted
	}
	return err
}
