package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gncollector/config"
	"gncollector/logger"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, app *app, args []string) error
}

var commands = []command{
	{"collect", "collect --tier <tier> --coin <symbol>   fetch and normalize every catalog metric", runCollect},
	{"combine", "combine [--drop-null] <dir>...          merge metric directories on a daily calendar", runCombine},
	{"list", "list --tier <tier> --coin <symbol>      show catalog endpoints", runList},
	{"symbol", "symbol <url|path>                       print the primary asset of an endpoint", runSymbol},
	{"catalog", "catalog                                 download the endpoint catalog", runCatalog},
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [--config file] <command> [flags]\n\nCommands:\n", os.Args[0])
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %s\n", c.usage)
	}
	fmt.Fprintln(os.Stderr, "\nGlobal flags:")
	pflag.PrintDefaults()
}

func main() {
	configFile := pflag.StringP("config", "c", "", "Config file path (default ./config/config.yaml)")
	pflag.CommandLine.SetInterspersed(false)
	pflag.Usage = usage
	pflag.Parse()

	if pflag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == pflag.Arg(0) {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", pflag.Arg(0))
		usage()
		os.Exit(2)
	}

	// viper config
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.run(ctx, newApp(cfg, log), pflag.Args()[1:]); err != nil {
		log.Error(cmd.name+" failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}
