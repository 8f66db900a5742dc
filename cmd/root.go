package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"github.com/quocvuong92/monaca-cli/internal/cloud"
	"github.com/quocvuong92/monaca-cli/internal/config"
	"github.com/quocvuong92/monaca-cli/internal/constants"
	"github.com/quocvuong92/monaca-cli/internal/dispatch"
	"github.com/quocvuong92/monaca-cli/internal/display"
	"github.com/quocvuong92/monaca-cli/internal/executor"
	"github.com/quocvuong92/monaca-cli/internal/help"
	"github.com/quocvuong92/monaca-cli/internal/logging"
	"github.com/quocvuong92/monaca-cli/internal/modules"
	"github.com/quocvuong92/monaca-cli/internal/task"
)

// taskFlags are forwarded to task modules as dispatch.Options when set on
// the command line.
var taskFlags = []string{
	"browser",
	"build-type",
	"output",
	"android_webview",
	"android_arch",
	"template",
	"force",
	"port",
	"no-open",
	"email",
	"delete",
	"dry-run",
	"project-id",
}

// App holds the application state
type App struct {
	cfg   *config.Config
	flags dispatch.Flags

	out    io.Writer
	errOut io.Writer
	dir    string

	// err carries the dispatch result out of cobra's help path, which
	// cannot return one.
	err error

	newCloud    func(cfg *config.Config, info dispatch.Info) (cloud.Client, error)
	runner      executor.Runner
	prompter    modules.Prompter
	openBrowser func(url string) bool
}

// NewApp creates a new App instance with default configuration
func NewApp() *App {
	return &App{
		cfg:         config.NewConfig(),
		out:         os.Stdout,
		errOut:      os.Stderr,
		newCloud:    newHTTPCloud,
		runner:      executor.New(),
		prompter:    modules.NewTerminalPrompter(),
		openBrowser: display.TryOpenBrowser,
	}
}

// Execute runs the root command and exits with the dispatch status.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := NewApp().Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// Run parses args, dispatches them and returns the process exit code.
func (app *App) Run(ctx context.Context, args []string) int {
	root := app.command()
	root.SetArgs(args)
	root.SetOut(app.out)
	root.SetErr(app.errOut)

	err := root.ExecuteContext(ctx)
	if err == nil {
		err = app.err
	}
	if err != nil {
		app.showError(err)
	}
	return dispatch.ExitCode(err)
}

func (app *App) command() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "monaca command [args]",
		Short:         "Command Line Interface for Monaca and Onsen UI",
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		// Task arguments are passed through to cordova, so flags this
		// command does not know are dropped rather than rejected.
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.dispatch(cmd, args)
		},
	}

	// cobra routes --help here after parsing the remaining flags.
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		app.flags.Help = true
		app.err = app.dispatch(cmd, cmd.Flags().Args())
	})

	f := rootCmd.Flags()
	f.BoolVarP(&app.flags.Version, "version", "v", false, "Show the CLI version")
	f.BoolVarP(&app.flags.Help, "help", "h", false, "Show help for a command")
	f.BoolVar(&app.flags.All, "all", false, "Include hidden commands in help")
	f.BoolVar(&app.cfg.Debug, "debug", false, "Enable debug logging")
	f.BoolVar(&app.cfg.NoColor, "no-color", false, "Disable colored output")
	f.StringVar(&app.cfg.Endpoint, "endpoint", "", "Monaca Cloud endpoint (default: "+config.DefaultEndpoint+")")

	f.Bool("browser", false, "Open the build page instead of building from the terminal")
	f.String("build-type", "", "Build type (debug, release, ...)")
	f.String("output", "", "Where to save the built package")
	f.String("android_webview", "", "Android webview (default, crosswalk)")
	f.String("android_arch", "", "Android architecture (x86, arm)")
	f.String("template", "", "Template used by create")
	f.Bool("force", false, "Overwrite without asking")
	f.Int("port", constants.DefaultPreviewPort, "Port for the preview server")
	f.Bool("no-open", false, "Do not open a browser after starting the preview server")
	f.String("email", "", "Account email for login")
	f.Bool("delete", false, "Delete files missing on the other side when syncing")
	f.Bool("dry-run", false, "Show what would be synced without changing anything")
	f.String("project-id", "", "Cloud project to clone or import")

	return rootCmd
}

// dispatch builds the task runtime and hands the parsed line to it.
func (app *App) dispatch(cmd *cobra.Command, args []string) error {
	version, err := semver.NewVersion(constants.Version)
	if err != nil {
		return fmt.Errorf("invalid client version %q: %w", constants.Version, err)
	}

	// The version is printed even when the configuration is unusable.
	if app.flags.Version || (len(args) > 0 && args[0] == "version") {
		help.New(nil, display.NewTheme(app.cfg.NoColor), version.String()).Version(app.out)
		return nil
	}

	if err := app.cfg.Validate(); err != nil {
		return err
	}
	opts := app.cfg.LoggingOptions()
	opts.Output = app.errOut
	logging.DefaultLogger.Configure(opts)
	if app.cfg.Source != "" {
		logging.Debug("config file applied", logging.Fields{"path": app.cfg.Source})
	}

	registry, err := task.Builtin()
	if err != nil {
		return fmt.Errorf("failed to load task descriptors: %w", err)
	}

	info := dispatch.Info{ClientType: constants.ClientType, ClientVersion: version.String()}

	client, err := app.newCloud(app.cfg, info)
	if err != nil {
		return err
	}

	theme := display.NewTheme(app.cfg.NoColor)
	console := &display.Console{Out: app.out, Err: app.errOut, Theme: theme}

	dir := app.dir
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	table := dispatch.NewTable()
	modules.Register(table, &modules.Env{
		Cloud:       client,
		Console:     console,
		Runner:      app.runner,
		Prompter:    app.prompter,
		Dir:         dir,
		OpenBrowser: app.openBrowser,
	})

	d := &dispatch.Dispatcher{
		Registry:     registry,
		Modules:      table,
		Help:         help.New(registry, theme, version.String()),
		Out:          app.out,
		Info:         info,
		Requirements: modules.Requirements(),
		Log:          logging.DefaultLogger,
		MaxChain:     app.cfg.MaxChain,
	}

	return d.Dispatch(cmd.Context(), dispatch.Request{
		Args:    args,
		Flags:   app.flags,
		Options: changedOptions(cmd),
	})
}

// changedOptions collects the task flags given on the command line.
func changedOptions(cmd *cobra.Command) dispatch.Options {
	opts := dispatch.Options{}
	for _, name := range taskFlags {
		if cmd.Flags().Changed(name) {
			opts[name] = cmd.Flags().Lookup(name).Value.String()
		}
	}
	return opts
}

func (app *App) showError(err error) {
	theme := display.NewTheme(app.cfg.NoColor)
	console := &display.Console{Out: app.out, Err: app.errOut, Theme: theme}

	console.ShowError(err.Error())

	var modErr *dispatch.ModuleError
	if errors.As(err, &modErr) {
		logging.Debug("task failed", logging.Fields{"task": modErr.Task, "set": modErr.Set})
	}
}

func newHTTPCloud(cfg *config.Config, info dispatch.Info) (cloud.Client, error) {
	return cloud.NewHTTPClient(cloud.Options{
		Endpoint:      cfg.Endpoint,
		Proxy:         cfg.Proxy,
		ClientType:    info.ClientType,
		ClientVersion: info.ClientVersion,
		Logger:        logging.DefaultLogger,
	})
}
