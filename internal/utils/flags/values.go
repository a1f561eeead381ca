package flags

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tyemirov/aicommit/internal/utils"
)

const unsupportedChoiceTemplate = "unsupported %s %q (expected %s)"

// ErrFlagNotDefined indicates that the requested flag is not present on the command.
var ErrFlagNotDefined = errors.New("flag not defined")

// UnsupportedChoiceError reports a flag value outside its allowed set.
type UnsupportedChoiceError struct {
	Subject string
	Value   string
	Choices []string
}

func (choiceError UnsupportedChoiceError) Error() string {
	return fmt.Sprintf(unsupportedChoiceTemplate, choiceError.Subject, choiceError.Value, strings.Join(choiceError.Choices, " or "))
}

// BoolFlag returns the flag value and whether the user set it explicitly.
func BoolFlag(command *cobra.Command, name string) (bool, bool, error) {
	return flagValue(command, name, (*pflag.FlagSet).GetBool)
}

// StringFlag returns the trimmed flag value and whether the user set it explicitly.
func StringFlag(command *cobra.Command, name string) (string, bool, error) {
	value, changed, lookupError := flagValue(command, name, (*pflag.FlagSet).GetString)
	return strings.TrimSpace(value), changed, lookupError
}

// ChoiceFlag returns the lowercased string flag value when it is one of choices. subject names
// the value in the error message, e.g. "output format".
func ChoiceFlag(command *cobra.Command, name string, subject string, choices ...string) (string, error) {
	value, _, lookupError := StringFlag(command, name)
	if lookupError != nil {
		return "", lookupError
	}
	normalizedValue := strings.ToLower(value)
	for _, choice := range choices {
		if normalizedValue == choice {
			return normalizedValue, nil
		}
	}
	return "", UnsupportedChoiceError{Subject: subject, Value: normalizedValue, Choices: append([]string(nil), choices...)}
}

func flagValue[Value any](command *cobra.Command, name string, read func(*pflag.FlagSet, string) (Value, error)) (Value, bool, error) {
	var zero Value
	flagSet, flag := locateFlag(command, name)
	if flag == nil {
		return zero, false, ErrFlagNotDefined
	}
	value, readError := read(flagSet, name)
	if readError != nil {
		return zero, false, readError
	}
	return value, flag.Changed, nil
}

// locateFlag searches local, persistent, inherited and root persistent flags in that order.
func locateFlag(command *cobra.Command, name string) (*pflag.FlagSet, *pflag.Flag) {
	if command == nil {
		return nil, nil
	}

	candidateSets := []*pflag.FlagSet{
		command.Flags(),
		command.PersistentFlags(),
		command.InheritedFlags(),
	}
	if root := command.Root(); root != nil {
		candidateSets = append(candidateSets, root.PersistentFlags())
	}

	for _, candidateSet := range candidateSets {
		if candidateSet == nil {
			continue
		}
		if flag := candidateSet.Lookup(name); flag != nil {
			return candidateSet, flag
		}
	}
	return nil, nil
}

// CollectExecutionFlags reads --yes from the command. Missing flags yield the zero value.
func CollectExecutionFlags(command *cobra.Command) utils.ExecutionFlags {
	assumeYes, assumeYesChanged, lookupError := BoolFlag(command, AssumeYesFlagName)
	if lookupError != nil {
		return utils.ExecutionFlags{}
	}
	return utils.ExecutionFlags{AssumeYes: assumeYes, AssumeYesSet: assumeYesChanged}
}

// ResolveExecutionFlags prefers the flags recorded in the command context by the root
// command and falls back to the command's own flags. The boolean reports whether a value was
// explicitly provided.
func ResolveExecutionFlags(command *cobra.Command) (utils.ExecutionFlags, bool) {
	if command != nil {
		if flags, available := utils.NewCommandContextAccessor().ExecutionFlags(command.Context()); available {
			return flags, true
		}
	}

	executionFlags := CollectExecutionFlags(command)
	return executionFlags, executionFlags.AssumeYesSet
}
