// Package flags binds the persistent --repository and --yes flags shared by every aicommit
// command and reads flag values regardless of where in the command tree they were defined.
package flags

import "github.com/spf13/cobra"

const (
	// RepositoryFlagName is the working-copy root flag name.
	RepositoryFlagName = "repository"
	// RepositoryFlagShorthand mirrors git's -C option.
	RepositoryFlagShorthand = "C"
	// RepositoryFlagUsage describes the working-copy root flag.
	RepositoryFlagUsage = "Working-copy root to inspect"
	// DefaultRepositoryRoot is used when the repository flag is not provided.
	DefaultRepositoryRoot = "."
	// AssumeYesFlagName is the flag that skips the commit message preview.
	AssumeYesFlagName = "yes"
	// AssumeYesFlagShorthand is the shorthand for AssumeYesFlagName.
	AssumeYesFlagShorthand = "y"
	// AssumeYesFlagUsage describes the assume-yes flag.
	AssumeYesFlagUsage = "Accept the generated message without the preview prompt"
)

// RepositoryFlagDefinition configures the working-copy root flag.
type RepositoryFlagDefinition struct {
	Name      string
	Shorthand string
	Usage     string
	Enabled   bool
}

// RepositoryFlagValues stores the working-copy root flag value.
type RepositoryFlagValues struct {
	Root string
}

// BindRepositoryFlag attaches the persistent working-copy root flag to command. The returned
// values are updated when the flag is parsed.
func BindRepositoryFlag(command *cobra.Command, defaults RepositoryFlagValues, definition RepositoryFlagDefinition) *RepositoryFlagValues {
	values := defaults
	if len(values.Root) == 0 {
		values.Root = DefaultRepositoryRoot
	}
	if command == nil || !definition.Enabled {
		return &values
	}

	flagName := definition.Name
	if len(flagName) == 0 {
		flagName = RepositoryFlagName
	}
	flagUsage := definition.Usage
	if len(flagUsage) == 0 {
		flagUsage = RepositoryFlagUsage
	}

	persistentFlagSet := command.PersistentFlags()
	if persistentFlagSet.Lookup(flagName) == nil {
		persistentFlagSet.StringVarP(&values.Root, flagName, definition.Shorthand, values.Root, flagUsage)
	}
	return &values
}

// BindAssumeYesFlag attaches the persistent --yes/-y flag unless command already defines it.
func BindAssumeYesFlag(command *cobra.Command, defaultValue bool) {
	if command == nil {
		return
	}
	persistentFlagSet := command.PersistentFlags()
	if persistentFlagSet.Lookup(AssumeYesFlagName) != nil {
		return
	}
	persistentFlagSet.BoolP(AssumeYesFlagName, AssumeYesFlagShorthand, defaultValue, AssumeYesFlagUsage)
}
