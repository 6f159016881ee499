package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/porticus-lab/go-flipbook/config"
)

// version is set at build time.
var version = "dev"

// initializeAppContext loads configuration and logging after the command line
// has been parsed and before a command runs.
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		return ctx, nil
	}

	env := envFromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		env.Cfg.Logging.ConsoleLogger.Level = "debug"
	}
	if env.Log, err = env.Cfg.Logging.Prepare(); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.redirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", version), zap.String("runtime", runtime.Version()))
	if len(configFile) == 0 {
		env.Log.Debug("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	env.Log.Debug("Program ended", zap.Duration("elapsed", env.uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	env.restoreLog()
	return nil
}

var errWasHandled bool

// exitErrHandler runs before the app context is destroyed, so the error
// still reaches the log.
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := envFromContext(ctx)
	if env.Cfg != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(contextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	sourceHelp := `
SOURCE:
    a PDF file, an HTML file or a directory of page images
`
	app := &cli.Command{
		Name:            config.AppName,
		Usage:           "page-flip book viewer for PDF, HTML and image documents",
		Version:         version + " (" + runtime.Version() + ")",
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log debug messages to the console"},
		},
		Commands: []*cli.Command{
			{
				Name:               "view",
				Usage:              "Opens the document in a browser window",
				OnUsageError:       usageErrorHandler,
				Action:             runView,
				ArgsUsage:          "SOURCE",
				CustomHelpTemplate: cli.CommandHelpTemplate + sourceHelp,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Usage: "open at page `N`"},
					&cli.StringFlag{Name: "url", Usage: "take SOURCE and page from a viewer `URL` (?src=...&p=...)"},
					&cli.BoolFlag{Name: "headless", Usage: "run the browser without a window"},
				},
			},
			{
				Name:               "info",
				Usage:              "Prints document title, page count and natural page size",
				OnUsageError:       usageErrorHandler,
				Action:             runInfo,
				ArgsUsage:          "SOURCE",
				CustomHelpTemplate: cli.CommandHelpTemplate + sourceHelp,
			},
			{
				Name:               "layout",
				Usage:              "Prints the page order and fitted page size for a viewport",
				OnUsageError:       usageErrorHandler,
				Action:             runLayout,
				ArgsUsage:          "SOURCE",
				CustomHelpTemplate: cli.CommandHelpTemplate + sourceHelp,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "width", Value: 1280, Usage: "viewport width in `PIXELS`"},
					&cli.IntFlag{Name: "height", Value: 800, Usage: "viewport height in `PIXELS`"},
					&cli.StringFlag{Name: "direction", Value: "ltr", Usage: "reading direction (ltr, rtl)"},
					&cli.StringFlag{Name: "mode", Value: "spread", Usage: "display mode (spread, single)"},
					&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Usage: "resume at page `N`"},
				},
			},
			{
				Name:         "snapshot",
				Usage:        "Saves a PNG screenshot of the book opened at a page",
				OnUsageError: usageErrorHandler,
				Action:       runSnapshot,
				ArgsUsage:    "SOURCE [DESTINATION]",
				CustomHelpTemplate: cli.CommandHelpTemplate + sourceHelp + `
DESTINATION:
    output file, "-" for STDOUT; if absent - named after the document title and page
`,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Usage: "open at page `N`"},
					&cli.IntFlag{Name: "width", Value: 1280, Usage: "window width in `PIXELS`"},
					&cli.IntFlag{Name: "height", Value: 800, Usage: "window height in `PIXELS`"},
					&cli.DurationFlag{Name: "wait", Value: 2 * time.Second, Usage: "time to let pages render before capturing"},
				},
			},
			{
				Name:         "thumbs",
				Usage:        "Writes a JPEG contact sheet of the document's image pages",
				OnUsageError: usageErrorHandler,
				Action:       runThumbs,
				ArgsUsage:    "SOURCE [DESTINATION]",
				CustomHelpTemplate: cli.CommandHelpTemplate + sourceHelp + `
DESTINATION:
    output file, "-" for STDOUT; if absent - named after the document title
`,
			},
			{
				Name:         "dumpconfig",
				Usage:        "Dumps either default or actual configuration (YAML)",
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
			},
		},
	}

	var err error
	// os.Exit below skips deferred calls, keep none after it
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) (err error) {
	env := envFromContext(ctx)

	fname := cmd.Args().Get(0)
	out := cmd.Root().Writer
	if len(fname) > 0 {
		f, err := os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer f.Close()
		out = f
	}

	var data []byte
	if cmd.Bool("default") {
		data, err = config.Prepare()
	} else {
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}
	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
