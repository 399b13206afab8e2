package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/slmtnm/s3tui/internal/app"
	"github.com/slmtnm/s3tui/internal/config"
	"github.com/slmtnm/s3tui/internal/events"
	"github.com/slmtnm/s3tui/internal/storage/localfs"
	"github.com/slmtnm/s3tui/internal/storage/s3store"
	"github.com/slmtnm/s3tui/internal/tui"
)

// keyBuffer bounds key presses waiting for the multiplexer
const keyBuffer = 64

type rootOptions struct {
	s3cfg    string
	logLevel string
	cfg      config.Config
}

func newRootCmd() *cobra.Command {
	return buildRootCmd(&rootOptions{cfg: config.Default()})
}

func buildRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "s3tui <bucket-name>",
		Short: "Browse an S3 bucket and the local filesystem side by side",
		Long: `s3tui is a terminal file browser for one S3 bucket and one local directory.
It reads credentials from an s3cmd-compatible .s3cfg file, the AWS shared
config, or the environment, in that order of preference.`,
		Example:       "  s3tui my-bucket\n  s3tui --endpoint http://localhost:9000 --root ~/Downloads my-bucket",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd, args[0])
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, opts.logLevel)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.s3cfg, "s3cfg", "", "path to an s3cmd-style config file (default: search .s3cfg, ~/.s3cfg, /etc/s3cfg)")
	f.StringVar(&opts.cfg.Region, "region", opts.cfg.Region, "AWS region of the bucket")
	f.StringVar(&opts.cfg.Profile, "profile", "", "AWS shared config profile")
	f.StringVar(&opts.cfg.Endpoint, "endpoint", "", "custom S3 endpoint URL, e.g. for MinIO")
	f.StringVar(&opts.cfg.Root, "root", opts.cfg.Root, "local directory the filesystem pane starts in")
	f.StringVar(&opts.cfg.LogFile, "log-file", "", "write logs to this file (default: no logs)")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	f.DurationVar(&opts.cfg.TickRate, "tick", opts.cfg.TickRate, "redraw interval")

	cmd.AddCommand(newConfigureCmd())
	return cmd
}

// resolve layers defaults, the .s3cfg file and changed flags, in that order
func (o *rootOptions) resolve(cmd *cobra.Command, bucket string) (config.Config, error) {
	file, err := config.Load(o.s3cfg)
	if err != nil {
		return config.Config{}, err
	}

	cfg := config.Default()
	cfg.ApplyFile(file)

	flags := cmd.Flags()
	if flags.Changed("region") {
		cfg.Region = o.cfg.Region
	}
	if flags.Changed("endpoint") {
		cfg.Endpoint = o.cfg.Endpoint
	}
	if flags.Changed("root") {
		cfg.Root = o.cfg.Root
	}
	if flags.Changed("tick") {
		cfg.TickRate = o.cfg.TickRate
	}
	if flags.Changed("profile") {
		// an explicit profile means the shared config, not the file's keys
		cfg.Profile = o.cfg.Profile
		cfg.AccessKey, cfg.SecretKey = "", ""
	}
	cfg.LogFile = o.cfg.LogFile
	cfg.Bucket = bucket

	return cfg, cfg.Validate()
}

func newLogger(path, level string) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	logger.SetLevel(lvl)

	if path == "" {
		logger.SetOutput(io.Discard)
		return logger, func() {}, nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.SetOutput(file)
	return logger, func() { _ = file.Close() }, nil
}

func run(ctx context.Context, cfg config.Config, logLevel string) error {
	logger, closeLog, err := newLogger(cfg.LogFile, logLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := s3store.NewClient(ctx, cfg.ClientOptions())
	if err != nil {
		return fmt.Errorf("error creating S3 client: %w", err)
	}
	remote := s3store.New(client, cfg.Bucket, logger)

	// Test bucket access
	if err := remote.HeadBucket(ctx); err != nil {
		return fmt.Errorf("cannot access bucket '%s': %w\n\nPlease check:\n"+
			"  - Bucket name is correct\n"+
			"  - Your credentials have access to this bucket\n"+
			"  - Your S3 endpoint configuration is correct", cfg.Bucket, err)
	}

	local, err := localfs.New(cfg.Root, logger)
	if err != nil {
		return err
	}

	source := events.NewChannelSource(keyBuffer)
	program := tea.NewProgram(tui.NewModel(source), tea.WithAltScreen(), tea.WithContext(ctx))
	mux := events.NewMultiplexer(source, cfg.TickRate)

	loop := app.New(local, remote, tui.NewRenderer(program),
		app.WithLogger(logger),
		app.WithTickRate(cfg.TickRate),
		app.WithTeardown(func() error {
			program.Quit()
			return nil
		}),
	)

	logger.WithFields(logrus.Fields{
		"bucket":   cfg.Bucket,
		"region":   cfg.Region,
		"endpoint": cfg.Endpoint,
		"root":     local.Root(),
	}).Info("starting")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return mux.Run(gctx)
	})
	g.Go(func() error {
		return loop.Run(gctx, mux.Events())
	})
	g.Go(func() error {
		// the program owns the terminal; once it is gone nothing else may run
		defer cancel()
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("error running TUI: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("exited with error")
		return err
	}
	return nil
}
