package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/class-divider/internal/config"
	"github.com/kingrea/class-divider/internal/logging"
	"github.com/kingrea/class-divider/internal/metrics"
	"github.com/kingrea/class-divider/internal/tui"
)

type rootOptions struct {
	dir     string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "divider",
		Short:        "Divide a roster into random groups with rotating roles",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.dir, "dir", "C", "", "project directory (default: current directory)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "also log to stderr (subcommands only)")
	cmd.AddCommand(newSplitCmd(opts), newRolesCmd(opts))
	return cmd
}

func (o *rootOptions) projectDir() (string, error) {
	if o.dir == "" {
		return os.Getwd()
	}
	return filepath.Abs(o.dir)
}

// session is the per-invocation state shared by the subcommands.
type session struct {
	cfg     *config.Config
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// open prepares .divider in the project directory and loads its config.
// When console is non-nil and --verbose is set, log entries are echoed there.
func (o *rootOptions) open(console io.Writer) (*session, error) {
	dir, err := o.projectDir()
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}
	if err := config.InitDir(dir); err != nil {
		return nil, fmt.Errorf("init %s: %w", config.AppDir, err)
	}
	cfg, err := config.NewConfig(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg)
	if err != nil {
		if console != nil {
			fmt.Fprintf(console, "warning: structured log disabled: %v\n", err)
		}
		logger = logging.Nop()
	}
	if o.verbose {
		logger = logger.WithConsole(console)
	}
	return &session{cfg: cfg, logger: logger, metrics: metrics.New()}, nil
}

func (s *session) Close() error {
	if err := s.metrics.WriteTextfile(s.cfg.MetricsTextfile()); err != nil {
		s.logger.Error("metrics textfile", zap.Error(err))
		_ = s.logger.Close()
		return err
	}
	return s.logger.Close()
}

func runTUI(opts *rootOptions) error {
	s, err := opts.open(nil)
	if err != nil {
		return err
	}
	app, err := tui.NewApp(s.cfg.ProjectDir, tui.WithLogger(s.logger), tui.WithMetrics(s.metrics))
	if err != nil {
		_ = s.Close()
		return err
	}
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}
