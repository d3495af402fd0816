package cli

import (
	"fmt"

	"github.com/Solipath/Solipath/internal/config"
	"github.com/Solipath/Solipath/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// ExitError carries a non-zero exit status of the wrapped command
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command exited with status %d", e.Code)
}

// app is shared by every command; cfg is filled in before any RunE.
type app struct {
	cfg *config.Config

	home            string
	file            string
	instructionsURL string
	verbose         bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}
	var update bool

	rootCmd := &cobra.Command{
		Use:   "solipath [flags] [--] command [args...]",
		Short: "Run a command with the project's toolchain installed",
		Long: `Solipath reads the project's dependency file, installs every listed
dependency into a per-user cache and then runs the given command with
PATH and the other declared variables pointing at the installed tools.

Dependency files:
  - solipath.json (a list, or {"dependencies": [...]})
  - solipath.yaml / solipath.yml
  - solipath.toml

Use "--" before a command whose name matches a subcommand.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if update {
				return a.runUpdate(cmd.Context())
			}
			return a.runCommand(cmd, args)
		},
	}

	// Everything after the command name belongs to the command.
	rootCmd.Flags().SetInterspersed(false)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&a.home, "home", "", "Cache directory (default $SOLIPATH_HOME or ~/solipath)")
	rootCmd.PersistentFlags().StringVarP(&a.file, "file", "f", "", "Dependency file (default $SOLIPATH_DEPENDENCY_FILE or solipath.json)")
	rootCmd.PersistentFlags().StringVar(&a.instructionsURL, "instructions-url", "", "Base URL of the instruction repository")

	rootCmd.Flags().BoolVar(&update, "update", false, "Replace this executable with the latest release")
	_ = rootCmd.Flags().MarkHidden("update")

	// Add subcommands
	rootCmd.AddCommand(newInstallCmd(a))
	rootCmd.AddCommand(newUpdateCmd(a))
	rootCmd.AddCommand(newVerifyLinksCmd(a))

	return rootCmd
}

// load reads configuration, applies flag overrides and sets up logging.
func (a *app) load() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if a.home != "" {
		cfg.Home = a.home
	}
	if a.file != "" {
		cfg.DependencyFile = a.file
	}
	if a.instructionsURL != "" {
		cfg.InstructionsURL = a.instructionsURL
	}

	// Setup logging
	if a.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		level, err := logrus.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
	}

	logrus.Debugf("Configuration: %+v", *cfg)
	a.cfg = cfg
	return nil
}

func (a *app) runCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return &models.SolipathError{Type: models.ErrExec, Err: models.ErrNoCommand}
	}

	deps, err := a.dependencies()
	if err != nil {
		return err
	}

	p, err := a.newPipeline(stdio(cmd))
	if err != nil {
		return err
	}

	code, err := p.Run(cmd.Context(), deps, args)
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}
