package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gncollector/internal/glassnode/catalog"
	"gncollector/internal/glassnode/collector"
	"gncollector/internal/glassnode/combiner"
	"gncollector/pkg/glassnode"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// stdout receives command output; logs go to stderr.
var stdout io.Writer = os.Stdout

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false
	return fs
}

func runCollect(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("collect")
	tierFlag := fs.StringP("tier", "t", "free", "Subscription tier (1-3 or free|advanced|professional)")
	coin := fs.String("coin", "BTC", "Asset symbol")
	catalogFile := fs.String("catalog", "", "Catalog file (default glassnode.catalog_file)")
	outDir := fs.StringP("out", "o", "", "Output root (default output.dir)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tier, err := glassnode.ParseTier(*tierFlag)
	if err != nil {
		return err
	}
	if a.cfg.Glassnode.APIKey == "" {
		return errors.New("glassnode.api_key is not set (GLASSNODE_API_KEY)")
	}
	if *outDir != "" {
		a.cfg.Output.Dir = *outDir
	}

	cat, err := a.loadCatalog(*catalogFile)
	if err != nil {
		return err
	}

	urls := cat.Metrics(tier, *coin)
	a.logger.Info("collecting metrics",
		zap.String("coin", *coin),
		zap.Stringer("tier", tier),
		zap.Int("endpoints", len(urls)))
	if len(urls) == 0 {
		a.logger.Warn("no endpoints for tier and coin")
		return nil
	}

	opts, closeSinks, err := a.collectorOptions()
	if err != nil {
		return err
	}
	defer closeSinks()

	return collector.New(a.client, opts, a.logger).Run(ctx, urls, *coin)
}

func runCombine(_ context.Context, a *app, args []string) error {
	fs := newFlagSet("combine")
	dropNull := fs.Bool("drop-null", a.cfg.Combine.DropNullRows, "Drop dates where every metric is empty")
	outDir := fs.StringP("out", "o", a.cfg.Combine.OutputDir, "Directory of the merged file")
	startDate := fs.String("start", a.cfg.Combine.StartDate, "First calendar day (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("combine needs at least one metric directory")
	}

	a.cfg.Combine.StartDate = *startDate
	start, err := a.cfg.Combine.StartTime()
	if err != nil {
		return err
	}

	c := combiner.New(combiner.Options{Start: start, OutputDir: *outDir}, a.logger)
	merged, path, err := c.Merge(fs.Args(), *dropNull)
	if err != nil {
		return err
	}

	a.logger.Info("merged metric tables",
		zap.String("file", path),
		zap.Int("rows", merged.Len()),
		zap.Int("columns", len(merged.Columns)))
	return nil
}

func runList(_ context.Context, a *app, args []string) error {
	fs := newFlagSet("list")
	tierFlag := fs.StringP("tier", "t", "free", "Subscription tier (1-3 or free|advanced|professional)")
	coin := fs.String("coin", "BTC", "Asset symbol")
	catalogFile := fs.String("catalog", "", "Catalog file (default glassnode.catalog_file)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tier, err := glassnode.ParseTier(*tierFlag)
	if err != nil {
		return err
	}

	cat, err := a.loadCatalog(*catalogFile)
	if err != nil {
		return err
	}

	renderEndpoints(stdout, cat.Find(tier, *coin))
	return nil
}

func runSymbol(_ context.Context, a *app, args []string) error {
	fs := newFlagSet("symbol")
	catalogFile := fs.String("catalog", "", "Catalog file (default glassnode.catalog_file)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("symbol needs exactly one endpoint url or path")
	}

	cat, err := a.loadCatalog(*catalogFile)
	if err != nil {
		return err
	}

	target := fs.Arg(0)
	lookup := cat.SymbolForPath
	if strings.Contains(target, "://") {
		lookup = cat.SymbolForURL
	}
	// an unknown endpoint prints nothing
	if symbol, ok := lookup(target); ok {
		fmt.Fprintln(stdout, symbol)
	}
	return nil
}

func runCatalog(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("catalog")
	file := fs.String("file", a.cfg.Glassnode.CatalogFile, "Destination catalog file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if a.cfg.Glassnode.APIKey == "" {
		return errors.New("glassnode.api_key is not set (GLASSNODE_API_KEY)")
	}

	cat, err := catalog.Refresh(ctx, a.client, a.cfg.Glassnode.CatalogPath, *file, a.logger)
	if err != nil {
		return err
	}

	a.logger.Info("catalog refreshed",
		zap.String("file", *file),
		zap.Int("endpoints", len(cat.Endpoints())))
	return nil
}
