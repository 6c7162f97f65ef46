package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gserver/gctl/client"
	"github.com/gserver/gctl/defaults"
	"github.com/gserver/gctl/protocol"
	colorlog "github.com/gserver/gctl/util/log"
	e "github.com/pkg/errors"
	"github.com/sahib/config"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

// ExitCode is an error that maps the error interface to a specific error
// message and a unix exit code
type ExitCode struct {
	Code    int
	Message string
}

func (err ExitCode) Error() string {
	return err.Message
}

// configPath returns the absolute path of the config file in use.
func configPath(ctx *cli.Context) (string, error) {
	return defaults.ExpandPath(ctx.GlobalString("config"))
}

// loadConfig opens the config given by --config (or the default one).
// A missing file yields the default values.
func loadConfig(ctx *cli.Context) (*config.Config, string, error) {
	path, err := configPath(ctx)
	if err != nil {
		return nil, "", ExitCode{BadConfig, err.Error()}
	}

	cfg, err := openConfigSafely(path)
	if err != nil {
		return nil, "", ExitCode{
			BadConfig,
			fmt.Sprintf("could not load config %s: %v", path, err),
		}
	}

	logVerbose(ctx, "using config at %s", path)
	return cfg, path, nil
}

// openConfigSafely turns panics of the config library
// (which happen on invalid values) into errors.
func openConfigSafely(path string) (cfg *config.Config, err error) {
	defer func() {
		if r := recover(); r != nil {
			cfg, err = nil, fmt.Errorf("%v", r)
		}
	}()

	return defaults.OpenConfig(path)
}

// serverAddr figures out where gserver lives.
// Command line flags take precedence over the config.
func serverAddr(ctx *cli.Context, cfg *config.Config) (string, int, error) {
	host := cfg.String("server.host")
	if ctx.GlobalIsSet("server") {
		host = ctx.GlobalString("server")
	}

	port := int(cfg.Int("server.port"))
	if ctx.GlobalIsSet("port") {
		port = ctx.GlobalInt("port")
	}

	if host == "" {
		return "", 0, ExitCode{BadArgs, "Invalid server ip: empty"}
	}

	if port < 1 || port > 65535 {
		return "", 0, ExitCode{BadArgs, fmt.Sprintf("Invalid server port: %d", port)}
	}

	return host, port, nil
}

func clientOptions(ctx *cli.Context, cfg *config.Config) client.Options {
	opts := client.DefaultOptions()
	opts.MaxReplySize = int(cfg.Int("reply.max_size"))
	opts.ReplyTimeout = cfg.Duration("reply.timeout")
	if ctx.GlobalIsSet("timeout") {
		opts.ReplyTimeout = ctx.GlobalDuration("timeout")
	}

	opts.MaxPayloadSize = defaults.Bytes(cfg, "upload.max_size")
	opts.RateLimit = defaults.Bytes(cfg, "upload.rate_limit")

	wantProgress := cfg.Bool("upload.progress") && !ctx.GlobalBool("no-progress")
	if wantProgress && colorlog.IsTerminal(ctx.App.ErrWriter) {
		opts.Progress = ctx.App.ErrWriter
	}

	return opts
}

// signalContext returns a context that is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-signals:
			log.Warnf("received %s, aborting", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(signals)
		cancel()
	}
}

// translateError maps errors from the client to an ExitCode.
func translateError(err error, what string) error {
	if err == nil {
		return nil
	}

	cause := e.Cause(err)
	switch cause.(type) {
	case client.PayloadSizeError, protocol.ArgError:
		return ExitCode{BadArgs, err.Error()}
	}

	switch {
	case cause == client.ErrReplyOverflow:
		return ExitCode{ProtocolViolation, err.Error()}
	case cause == client.ErrReplyTimeout:
		return ExitCode{ServerNotResponding, fmt.Sprintf("%s: %v", what, err)}
	}

	return ExitCode{TransferFailed, fmt.Sprintf("%s: %v", what, err)}
}

type cmdHandlerWithClient func(rctx context.Context, ctx *cli.Context, ctl *client.Client) error

// withConnection dials gserver and passes the connection to `handler`.
// The connection is closed once the handler returns.
func withConnection(handler cmdHandlerWithClient) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		cfg, _, err := loadConfig(ctx)
		if err != nil {
			return err
		}

		return connect(ctx, cfg, func(rctx context.Context, ctl *client.Client) error {
			return handler(rctx, ctx, ctl)
		})
	}
}

func connect(ctx *cli.Context, cfg *config.Config, fn func(rctx context.Context, ctl *client.Client) error) error {
	host, port, err := serverAddr(ctx, cfg)
	if err != nil {
		return err
	}

	logVerbose(ctx, "connecting to %s:%d", host, port)

	rctx, cancel := signalContext()
	defer cancel()

	ctl, err := client.Dial(
		rctx,
		host,
		port,
		cfg.Duration("server.dial_timeout"),
		clientOptions(ctx, cfg),
	)

	if err != nil {
		return ExitCode{
			ServerNotResponding,
			fmt.Sprintf("Unable to connect to gserver: %v", err),
		}
	}

	defer ctl.Close()
	return fn(rctx, ctl)
}

type checkFunc func(ctx *cli.Context) int

func withArgCheck(checker checkFunc, handler cli.ActionFunc) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		if code := checker(ctx); code != Success {
			return ExitCode{code, ""}
		}

		return handler(ctx)
	}
}

func needAtLeast(min int) checkFunc {
	return func(ctx *cli.Context) int {
		if ctx.NArg() < min {
			if min == 1 {
				log.Warningf("Need at least %d argument.", min)
			} else {
				log.Warningf("Need at least %d arguments.", min)
			}

			if err := cli.ShowCommandHelp(ctx, ctx.Command.Name); err != nil {
				log.Warningf("Failed to display --help: %v", err)
			}

			return BadArgs
		}

		return Success
	}
}

// validArg checks the first argument of a `kind` command before
// anything touches the network.
func validArg(kind protocol.Kind) checkFunc {
	return func(ctx *cli.Context) int {
		cmd := protocol.NewCommand(kind, ctx.Args().First())
		if err := protocol.Validate(cmd); err != nil {
			log.Warning(err)
			return BadArgs
		}

		return Success
	}
}

func checkAll(checkers ...checkFunc) checkFunc {
	return func(ctx *cli.Context) int {
		for _, checker := range checkers {
			if code := checker(ctx); code != Success {
				return code
			}
		}

		return Success
	}
}

func needExactly(n int) checkFunc {
	atLeast := needAtLeast(n)
	return func(ctx *cli.Context) int {
		if code := atLeast(ctx); code != Success {
			return code
		}

		if ctx.NArg() > n {
			log.Warningf("Only one command may be specified; got extra arguments: %v", ctx.Args()[n:])
			return BadArgs
		}

		return Success
	}
}
