package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gserver/gctl/defaults"
	"github.com/gserver/gctl/protocol"
	"github.com/gserver/gctl/version"
	"github.com/sahib/config"
	"github.com/urfave/cli"
)

func formatGroup(category string) string {
	return strings.ToUpper(category) + " COMMANDS"
}

// quietConfig loads the config for setting up logging.
// Errors are ignored here; commands that need the config report them.
func quietConfig(ctx *cli.Context) *config.Config {
	path, err := configPath(ctx)
	if err != nil {
		return nil
	}

	cfg, err := openConfigSafely(path)
	if err != nil {
		return nil
	}

	return cfg
}

////////////////////////////
// Commandline definition //
////////////////////////////

func newApp(stdout, stderr io.Writer, exitCode *int) *cli.App {
	app := cli.NewApp()
	app.Name = "gctl"
	app.Usage = "Control a gserver running on an embedded board"
	app.EnableBashCompletion = true
	app.Version = version.Full()
	app.Writer = stdout
	app.ErrWriter = stderr
	app.CommandNotFound = func(ctx *cli.Context, cmdName string) {
		commandNotFound(ctx, cmdName)
		*exitCode = BadArgs
	}
	app.OnUsageError = func(ctx *cli.Context, err error, isSubcommand bool) error {
		return ExitCode{BadArgs, fmt.Sprintf("Incorrect usage: %v", err)}
	}

	// Groups:
	boardGroup := formatGroup("board")
	miscGroup := formatGroup("misc")

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "server,s",
			Usage: "Address of the board (default from config: server.host)",
		},
		cli.IntFlag{
			Name:  "port,p",
			Usage: "Port of gserver (default from config: server.port)",
		},
		cli.StringFlag{
			Name:   "config,c",
			Usage:  "Path of the config file",
			Value:  defaults.DefaultPath,
			EnvVar: "GCTL_CONFIG",
		},
		cli.DurationFlag{
			Name:  "timeout,t",
			Usage: "How long to wait for the reply (default from config: reply.timeout)",
		},
		cli.BoolFlag{
			Name:  "verbose,V",
			Usage: "Show debug output and what gctl is doing",
		},
		cli.StringFlag{
			Name:   "log-path,l",
			Usage:  "Where to output the log. May be 'stderr' (default), 'stdout' or a file",
			Value:  "stderr",
			EnvVar: "GCTL_LOG",
		},
		cli.BoolFlag{
			Name:  "no-progress",
			Usage: "Do not show a progress bar during uploads",
		},
	}

	app.Commands = TranslateHelp([]cli.Command{
		{
			Name:     "version",
			Aliases:  []string{"v"},
			Category: boardGroup,
			Action:   withArgCheck(needExactly(0), withConnection(handleCommand(protocol.Version))),
		}, {
			Name:     "build",
			Aliases:  []string{"b"},
			Category: boardGroup,
			Action:   withArgCheck(needExactly(0), withConnection(handleCommand(protocol.Build))),
		}, {
			Name:     "upgrade",
			Aliases:  []string{"u"},
			Category: boardGroup,
			Action:   withArgCheck(needExactly(0), withConnection(handleCommand(protocol.Upgrade))),
		}, {
			Name:     "reboot",
			Aliases:  []string{"r"},
			Category: boardGroup,
			Action:   withArgCheck(needExactly(0), withConnection(handleCommand(protocol.Reboot))),
		}, {
			Name:     "netconfig",
			Aliases:  []string{"n"},
			Category: boardGroup,
			Action: withArgCheck(
				checkAll(needExactly(1), validArg(protocol.NetConfig)),
				withConnection(handleCommand(protocol.NetConfig)),
			),
		}, {
			Name:     "download",
			Aliases:  []string{"d"},
			Category: boardGroup,
			Action: withArgCheck(
				checkAll(needExactly(1), validArg(protocol.Download)),
				handleDownload,
			),
		}, {
			Name:     "config",
			Category: miscGroup,
			Subcommands: []cli.Command{
				{
					Name:   "list",
					Action: handleConfigList,
				}, {
					Name:   "get",
					Action: withArgCheck(needExactly(1), handleConfigGet),
				}, {
					Name:   "set",
					Action: withArgCheck(needExactly(2), handleConfigSet),
				}, {
					Name:   "doc",
					Action: withArgCheck(needExactly(1), handleConfigDoc),
				},
			},
		},
	})

	app.Before = func(ctx *cli.Context) error {
		return setupLogging(ctx, quietConfig(ctx))
	}

	return app
}

// run executes the command line in `args` and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	exitCode := Success
	app := newApp(stdout, stderr, &exitCode)

	err := app.Run(args)
	if err == nil {
		return exitCode
	}

	if exitErr, ok := err.(ExitCode); ok {
		if exitErr.Message != "" {
			fmt.Fprintln(stderr, exitErr.Message)
		}

		return exitErr.Code
	}

	fmt.Fprintln(stderr, err)
	return UnknownError
}

// RunCmdline starts a gctl commandline tool.
func RunCmdline(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}
