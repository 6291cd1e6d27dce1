package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/newspet/internal/bayes"
	"github.com/desertthunder/newspet/internal/codec"
	"github.com/desertthunder/newspet/internal/repositories"
	"github.com/desertthunder/newspet/internal/shared"
	"github.com/desertthunder/newspet/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database and engine are opened on first use from the loaded config.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	db         *sql.DB
	ownsDB     bool
	repo       *repositories.ClassifierRepository
	engine     *tasks.ClassifierEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB // optional; opened from Config.Database when nil
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
	}
}

// App builds the root command.
func (r *Runner) App() *cli.Command {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	return &cli.Command{
		Name:    "newspet",
		Usage:   "Train and query per-feed news classifiers",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   configPath,
			},
		},
		Before:   r.configure,
		After:    r.close,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, trainCommand, classifyCommand, listCommand, resetCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configure loads the config file named by --config when it exists and applies its log level.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")

	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, fmt.Errorf("failed to load config %s: %w", r.configPath, err)
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	level, err := r.config.LogLevel()
	if err != nil {
		return ctx, err
	}
	shared.SetLogLevel(r.logger, level)

	return ctx, nil
}

// open connects to the database, applies pending migrations and builds the engine.
func (r *Runner) open(ctx context.Context) error {
	if r.engine != nil {
		return nil
	}

	if r.db == nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		r.db, r.ownsDB = db, true
	}

	if err := shared.RunMigrationsContext(ctx, r.db, r.logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c, err := codec.FromConfig(r.config.Codec)
	if err != nil {
		return fmt.Errorf("failed to configure codec: %w", err)
	}

	r.repo = repositories.NewClassifierRepository(r.db)
	r.engine = tasks.NewClassifierEngine(tasks.EngineOpts{
		Store:   r.repo,
		Codec:   c,
		Factory: bayes.NewFactory(r.config.Classifier),
		Logger:  r.logger,
	})

	return nil
}

func (r *Runner) close(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil || !r.ownsDB {
		return nil
	}
	err := r.db.Close()
	r.db, r.engine, r.repo = nil, nil, nil
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := marshalJSON(data, pretty)
	if err != nil {
		return err
	}
	return r.writeBytes(output)
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
