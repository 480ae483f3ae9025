package commands

import (
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// Prompter asks the user for every value not supplied on the command line
type Prompter interface {
	Select(message string, options []string) (string, error)
	Password(message string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// errInterrupted is returned when the user aborts a prompt with Ctrl-C
var errInterrupted = errors.New("interrupted")

type surveyPrompter struct{}

func (surveyPrompter) Select(message string, options []string) (string, error) {
	var answer string
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return "", surveyErr(err)
	}
	return answer, nil
}

func (surveyPrompter) Password(message string) (string, error) {
	var answer string
	prompt := &survey.Password{
		Message: message,
	}
	if err := survey.AskOne(prompt, &answer, survey.WithValidator(survey.Required)); err != nil {
		return "", surveyErr(err)
	}
	return answer, nil
}

func (surveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	var answer bool
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return false, surveyErr(err)
	}
	return answer, nil
}

func surveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errInterrupted
	}
	return err
}
