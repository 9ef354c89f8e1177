package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogbuilder/cmd/blogbuilder/commands"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cli commands.CLI
	if err := run(ctx, &cli, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}

func newParser(cli *commands.CLI, stdout, stderr io.Writer, opts ...kong.Option) (*kong.Kong, error) {
	base := []kong.Option{
		kong.Name("blogbuilder"),
		kong.Description("Static blog generator: renders dated documents into articles, listing pages and an index."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Vars{"version": version.String()},
	}
	return kong.New(cli, append(base, opts...)...)
}

// run parses args and executes the selected command.
func run(ctx context.Context, cli *commands.CLI, args []string, stdout, stderr io.Writer, opts ...kong.Option) error {
	cli.SetLogOutput(stderr)
	parser, err := newParser(cli, stdout, stderr, opts...)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		parser.FatalIfErrorf(err)
		return err
	}
	g := &commands.Global{Context: ctx, Logger: slog.Default(), Out: stdout}
	return kctx.Run(g, cli)
}
