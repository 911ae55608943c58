package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/harrison/kgls/internal/config"
	"github.com/harrison/kgls/internal/core"
	"github.com/harrison/kgls/internal/display"
	"github.com/harrison/kgls/internal/enrich"
	"github.com/harrison/kgls/internal/filelock"
	"github.com/harrison/kgls/internal/logger"
	"github.com/harrison/kgls/internal/models"
	"github.com/harrison/kgls/internal/sorter"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// ExitError reports a run that completed with problems. The diagnostics
// have already been printed; only the exit status is left to deliver.
type ExitError struct {
	Severity models.Severity
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("finished with %s issues", e.Severity)
}

// Code returns the process exit status.
func (e *ExitError) Code() int {
	return e.Severity.Code()
}

// isTerminal reports whether w is an interactive terminal.
// Tests replace it to simulate a TTY.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewRootCommand creates and returns the root cobra command for kgls
func NewRootCommand() *cobra.Command {
	f := &flagValues{}

	cmd := &cobra.Command{
		Use:   "kgls [path]...",
		Short: "List directory contents",
		Long: `kgls lists files and directories as a grid, one per line, a long
table, or a tree.

Directories are walked in parallel. A directory hidden by -I or by the
dot-file rule is pruned together with everything below it.

Configuration is loaded from $KGLS_CONFIG_HOME/config.yaml,
$XDG_CONFIG_HOME/kgls/config.yaml or ~/.config/kgls/config.yaml
(config.toml is also accepted). CLI flags override configuration file
settings.

Exit status is 0 on success, 1 when some paths could not be listed,
and 2 on invalid usage or configuration.

Examples:
  kgls                          # current directory as a grid
  kgls -la ~/src                # long listing including dot-files
  kgls --tree --depth 2 -I '*.o'
  kgls -R -t --reverse logs/    # recursive, oldest first
  kgls --init-config            # write the default config file`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, args)
		},
	}

	f.register(cmd)
	return cmd
}

func run(cmd *cobra.Command, f *flagValues, args []string) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	if f.initConfig {
		return initConfig(cmd, f.configFile, f.force)
	}

	cfg, path, err := loadConfig(f)
	if err != nil {
		return err
	}

	overrides, err := f.overrides(cmd)
	if err != nil {
		return err
	}
	cfg.MergeWithFlags(overrides)

	tty := isTerminal(stdout)
	cfg.Normalize(tty)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.NewConsoleLogger(stderr, cfg.LogLevel)
	if path != "" {
		log.LogInfo(fmt.Sprintf("config: %s", path))
	}

	renderer, err := newRenderer(cfg, tty)
	if err != nil {
		return err
	}

	opts := core.Options{
		Layout:      cfg.Layout,
		Recursion:   core.Recursion{Enabled: cfg.Recursion.Enabled, Depth: cfg.Recursion.Depth},
		Sort:        sorter.Criteria{Column: cfg.Sorting.Column, Reverse: cfg.Sorting.Reverse, DirGrouping: cfg.Sorting.DirGrouping},
		Display:     cfg.Display,
		IgnoreGlobs: cfg.IgnoreGlobs,
	}
	deps := core.Dependencies{
		Enricher: enrich.New(enrichOptions(cfg)),
		Renderer: renderer,
		Logger:   log,
		Stdout:   stdout,
		Stderr:   stderr,
	}

	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}

	severity := core.New(opts, deps).Run(cmd.Context(), roots)
	if severity != models.SeverityNone {
		return &ExitError{Severity: severity}
	}
	return nil
}

func loadConfig(f *flagValues) (*config.Config, string, error) {
	if f.ignoreConfig {
		return config.DefaultConfig(), "", nil
	}
	cfg, path, err := config.Load(f.configFile)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, path, nil
}

func newRenderer(cfg *config.Config, tty bool) (*display.Renderer, error) {
	var blocks []display.Block
	if cfg.Long {
		var err error
		if blocks, err = display.ParseBlocks(cfg.Blocks); err != nil {
			return nil, err
		}
	}

	return display.New(display.Options{
		Layout:              cfg.Layout,
		Blocks:              blocks,
		Color:               enabled(cfg.Color.When, tty),
		Size:                cfg.Size,
		Date:                cfg.Date,
		Permission:          cfg.Permission,
		Indicators:          cfg.Indicators,
		Literal:             cfg.Literal,
		Hyperlink:           enabled(cfg.Hyperlink, tty),
		Header:              cfg.Header,
		SymlinkArrow:        cfg.SymlinkArrow,
		TruncateOwnerAfter:  cfg.TruncateOwner.After,
		TruncateOwnerMarker: cfg.TruncateOwner.Marker,
	}), nil
}

// enabled resolves auto against the terminal state of stdout.
func enabled(w models.When, tty bool) bool {
	switch w {
	case models.WhenAlways:
		return true
	case models.WhenNever:
		return false
	default:
		return tty
	}
}

func enrichOptions(cfg *config.Config) enrich.Options {
	return enrich.Options{
		GitStatus:   needsGit(cfg),
		Dereference: cfg.Dereference,
		TotalSize:   cfg.TotalSize,
	}
}

// needsGit reports whether any output depends on git status.
func needsGit(cfg *config.Config) bool {
	if cfg.Sorting.Column == models.SortGitStatus {
		return true
	}
	if !cfg.Long {
		return false
	}
	blocks, _ := display.ParseBlocks(cfg.Blocks)
	for _, b := range blocks {
		if b == display.BlockGit {
			return true
		}
	}
	return false
}

// initConfig writes the default configuration. The format follows the
// target's extension.
func initConfig(cmd *cobra.Command, path string, force bool) error {
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}

	data, err := config.DefaultConfig().Marshal(config.FormatOf(path))
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	err = filelock.WriteFile(cmd.Context(), path, data, filelock.WriteOptions{Overwrite: force})
	if errors.Is(err, filelock.ErrExists) {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
