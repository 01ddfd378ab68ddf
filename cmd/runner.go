package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/movierec/internal/shared"
	"github.com/desertthunder/movierec/internal/tasks"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config         *shared.Config
	configPath     string
	explicitConfig bool
	httpClient     *http.Client
	logger         *log.Logger
	output         io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = defaultConfigPath
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		initConfigCommand, initDBCommand, destroyDBCommand, importMoviesCommand, generateUsersCommand,
		statsCommand, exportMoviesCommand, exportNetworkCommand, runServerCommand, browseCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Before applies the global flags. The configuration itself is loaded by the first command that needs it.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	r.configPath = cmd.String("config")
	r.explicitConfig = cmd.IsSet("config")
	return ctx, nil
}

// Config returns the configuration, loading it on first use.
//
// A missing file at the default path falls back to the embedded defaults; a missing file given explicitly is an error.
// A config set through [RunnerOpts] is returned as is.
func (r *Runner) Config() (*shared.Config, error) {
	if r.config != nil {
		return r.config, nil
	}

	config, err := loadConfig(r.configPath, r.explicitConfig)
	if err != nil {
		return nil, err
	}
	if config == nil {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		config = shared.DefaultConfig()
		config.ApplyEnv()
		if err := config.Validate(); err != nil {
			return nil, err
		}
	}

	r.config = config
	return config, nil
}

// loadConfig reads path. It returns nil without an error when the file is absent and was not asked for explicitly.
func loadConfig(path string, explicit bool) (*shared.Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
	}
	return shared.LoadConfig(path)
}

// openDatabase opens the configured database.
func (r *Runner) openDatabase() (*sql.DB, error) {
	config, err := r.Config()
	if err != nil {
		return nil, err
	}

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	r.logger.Debug("database opened", "driver", config.Database.Driver)
	return db, nil
}

// openSchema opens the configured database and checks that init_db has been run.
func (r *Runner) openSchema() (*sql.DB, error) {
	db, err := r.openDatabase()
	if err != nil {
		return nil, err
	}

	versions, err := shared.AppliedMigrations(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if len(versions) == 0 {
		db.Close()
		return nil, fmt.Errorf("%w: run init_db first", shared.ErrNotInitialized)
	}
	return db, nil
}

// trackProgress logs the updates published by a task. Call the returned function once the task has returned.
func (r *Runner) trackProgress() (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 32)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for u := range progress {
			kv := []any{"phase", u.Phase, "step", u.Step}
			if u.Total > 0 {
				kv = append(kv, "total", u.Total)
			}
			if u.Total > 0 && u.Step < u.Total {
				r.logger.Debug(u.Message, kv...)
			} else {
				r.logger.Info(u.Message, kv...)
			}
		}
	}()

	return progress, func() {
		close(progress)
		<-done
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
