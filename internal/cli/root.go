// Package cli implements the bakery command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/bakery/pkg/bakery"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
	dsn       string
}

// app is the state shared by the subcommands of one root command.
type app struct {
	flags     rootFlags
	configDir string
	viper     *viper.Viper
}

// NewRootCmd creates the top-level "bakery" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "bakery",
		Short: "HTTP API for bakeries and their baked goods",
		Long: "bakery serves a small JSON API over a SQLite or PostgreSQL store\n" +
			"and offers commands to migrate, seed, and export that store.",
		Version:           bakery.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.loadConfig,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "sqlite data directory (default: $(CWD)/.bakery-db)")
	pf.StringVar(&a.flags.backend, "backend", "", "storage backend: sqlite or postgres")
	pf.StringVar(&a.flags.dsn, "dsn", "", "PostgreSQL connection string")

	root.AddCommand(newVersionCmd())
	root.AddCommand(a.newInitCmd())
	root.AddCommand(a.newServeCmd())
	root.AddCommand(a.newMigrateCmd())
	root.AddCommand(a.newSeedCmd())
	root.AddCommand(a.newExportCmd())
	root.AddCommand(a.newImportCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "bakery:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// exitError tags an error with the process exit code it should produce.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// sysError marks err as a failure of the environment rather than of the
// user's input.
func sysError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: exitSysError, err: err}
}

func exitCode(err error) int {
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	return exitUserError
}
