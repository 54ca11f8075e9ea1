package cli

import (
	"context"
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/ardnew/whale/cli/cmd"
	"github.com/ardnew/whale/lang"
	"github.com/ardnew/whale/lang/builtin"
	"github.com/ardnew/whale/log"
	"github.com/ardnew/whale/pkg"
)

// CLI is the top-level command-line interface for whale.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit."`

	Jobs int  `default:"0"    help:"Maximum concurrent async branches (0 is unlimited)." short:"j"`
	Sudo bool `default:"true" help:"Prefix privileged commands with sudo."              negatable:""`

	Run    cmd.Run    `cmd:"" default:"withargs" help:"Run script files"`
	Eval   cmd.Eval   `cmd:""                    help:"Evaluate statements given as an argument"`
	Fmt    cmd.Fmt    `cmd:""                    help:"Format a script or dump its syntax tree"`
	Macros cmd.Macros `cmd:""                    help:"List available macros"`
	Repl   cmd.Repl   `cmd:""                    help:"Start an interactive session"`
	Init   cmd.Init   `cmd:""                    help:"Initialize configuration file"`
}

// Run executes the whale CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	return run(ctx, cmd.Streams{}, exit, args...)
}

func run(
	ctx context.Context,
	std cmd.Streams,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
		"version":            pkg.Name + " " + pkg.Version(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Configure the logger before kong runs, so flag position does not
	// matter and parse errors are logged the requested way.
	cli.Log.scan(args)

	options := []kong.Option{
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	}

	if std.Out != nil {
		options = append(options, kong.Writers(std.Out, std.Err))
	}

	parser, err := kong.New(&cli, options...)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	defer cli.Log.start(ctx)()

	// No-op unless built with tag pprof and a mode is selected.
	defer cli.Pprof.start(ctx)()

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithStreams(ctx, std)
	ctx = cmd.WithInterpreter(ctx, cli.interpreter(std))

	log.DebugContext(ctx, "run command",
		slog.String("command", ktx.Command()),
		slog.Int("jobs", cli.Jobs),
		slog.Bool("sudo", cli.Sudo),
	)

	return ktx.Run(ctx, &cli)
}

// interpreter builds the interpreter shared by all commands: the core and
// builtin macros, the default logger and the async limit.
func (c *CLI) interpreter(std cmd.Streams) *lang.Interpreter {
	opts := []builtin.Option{builtin.WithSudo(c.Sudo)}
	if std.Out != nil {
		opts = append(opts, builtin.WithOutput(std.Out))
	}

	return lang.New(
		lang.WithRegistry(builtin.NewRegistry(opts...)),
		lang.WithLogger(log.Default()),
		lang.WithAsyncLimit(c.Jobs),
	)
}
