// Package cli handles command line interface logic
package cli

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/retroenv/chip8vm/internal/machine"
	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/retrogolib/cli"
)

var userInterfaces = []string{options.UITerminal, options.UIDebug, options.UIHeadless}

// ErrHelpRequested is returned when the usage was requested with -h or -help.
// The usage has already been printed in that case.
var ErrHelpRequested = cli.ErrHelpRequested

// ParseFlags parses the command line arguments of the process.
func ParseFlags() (options.Program, error) {
	return Parse(os.Args[0], os.Args[1:])
}

// Parse parses the command line arguments and returns the program options.
// A missing ROM file argument or surplus arguments return a UsageError.
// Invalid flags return an error after the flag set printed the usage.
func Parse(name string, arguments []string) (options.Program, error) {
	var opts options.Program
	flags := newFlagSet(name, &opts)

	args, err := flags.Parse(arguments)
	if err != nil {
		var missingArgs *cli.MissingArgsError
		if errors.As(err, &missingArgs) {
			return opts, &UsageError{flags: flags, msg: "no ROM file given"}
		}
		return opts, err
	}

	if err := validateArgs(args); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}
	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}
	return opts, nil
}

func newFlagSet(name string, opts *options.Program) *cli.FlagSet {
	flags := cli.NewFlagSet(name)
	flags.AddSection("Options", &opts.Flags)
	flags.AddSection("Machine", &opts.MachineFlags)
	flags.AddSection("Quirks", &opts.QuirkFlags)
	flags.AddPositional(&opts.Parameters)
	return flags
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *cli.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage and the flag sections.
func (e *UsageError) ShowUsage() {
	e.flags.ShowUsage()
}

// validateArgs checks the arguments that remain after the ROM file.
func validateArgs(args []string) error {
	for _, arg := range args {
		if arg != "" && arg[0] == '-' {
			return fmt.Errorf("potential argument %s found after ROM file, please pass the ROM file as last argument", arg)
		}
	}
	if len(args) > 0 {
		return fmt.Errorf("only one ROM file can be run, got %d", len(args)+1)
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.UI = strings.ToLower(opts.UI)
	if !slices.Contains(userInterfaces, opts.UI) {
		return fmt.Errorf("unsupported user interface: %s. Valid options: %s",
			opts.UI, strings.Join(userInterfaces, ", "))
	}

	if opts.InstructionsPerFrame <= 0 {
		return fmt.Errorf("instructions per frame must be positive, got %d", opts.InstructionsPerFrame)
	}
	if opts.Frames < 0 {
		return fmt.Errorf("frame limit must not be negative, got %d", opts.Frames)
	}

	settings := machine.Settings{StackSize: opts.StackSize}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid machine settings: %w", err)
	}
	return nil
}
