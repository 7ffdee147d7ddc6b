// Command flowctl is the CLI entrypoint for the workflow control plane:
// validate, diff, and autofix as one-shot invocations against a local
// workflow file, plus an optional serve subcommand exposing the same
// three operations over HTTP. Command dispatch only: argument parsing
// beyond simple positional flags, color/terminal detection, and
// table/tree rendering are out of scope.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	_ "github.com/lib/pq"

	"github.com/flowctl/flowctl/internal/apiserver"
	"github.com/flowctl/flowctl/internal/autofix"
	"github.com/flowctl/flowctl/internal/breaking"
	"github.com/flowctl/flowctl/internal/catalog"
	"github.com/flowctl/flowctl/internal/catalogsync"
	"github.com/flowctl/flowctl/internal/cliutil"
	"github.com/flowctl/flowctl/internal/config"
	"github.com/flowctl/flowctl/internal/diff"
	"github.com/flowctl/flowctl/internal/validate"
	"github.com/flowctl/flowctl/internal/workflow"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(cliutil.ExitUsage)
	}

	var err error
	switch os.Args[1] {
	case "validate":
		err = runValidate(os.Args[2:])
	case "diff":
		err = runDiff(os.Args[2:])
	case "autofix":
		err = runAutofix(os.Args[2:])
	case "serve":
		err = runServe()
	default:
		usage()
		os.Exit(cliutil.ExitUsage)
	}

	if err != nil {
		slog.Error("flowctl", "command", os.Args[1], "err", err)
	}
	os.Exit(cliutil.FromError(err))
}

func usage() {
	fmt.Println("flowctl v1.0.0")
	fmt.Println("Usage: flowctl <validate|diff|autofix|serve> [path]")
}

func buildCatalogAndRegistry(ctx context.Context, cfg *config.Config) (catalog.Catalog, breaking.Registry, error) {
	reg := breaking.New()
	if cfg.Database.URL == "" {
		cat, err := catalog.NewMemoryCatalog()
		if err != nil {
			return nil, nil, cliutil.ConfigError(err)
		}
		return cat, reg, nil
	}

	cat, err := catalog.NewPostgresCatalog(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect catalog database: %w", err)
	}
	return cat, reg, nil
}

func readWorkflowDoc(path string) (any, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, cliutil.NoInputError(err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, cliutil.DataError(fmt.Errorf("decode workflow file: %w", err))
	}
	return doc, data, nil
}

func readWorkflow(path string) (*workflow.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cliutil.NoInputError(err)
	}
	var wf workflow.Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, cliutil.DataError(fmt.Errorf("decode workflow file: %w", err))
	}
	return &wf, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runValidate(args []string) error {
	if len(args) < 1 {
		return cliutil.UsageError(fmt.Errorf("usage: flowctl validate <path>"))
	}
	cfg, err := config.LoadDefault()
	if err != nil {
		return cliutil.ConfigError(err)
	}
	ctx := context.Background()
	cat, reg, err := buildCatalogAndRegistry(ctx, cfg)
	if err != nil {
		return err
	}

	doc, raw, err := readWorkflowDoc(args[0])
	if err != nil {
		return err
	}

	opts := validate.NewOptions()
	opts.RawSource = raw
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "--profile":
			if i+1 < len(args) {
				opts.Profile = validate.Profile(args[i+1])
				i++
			}
		case "--check-versions":
			opts.CheckVersions = true
		case "--enhanced":
			opts.Enhanced = true
		}
	}

	result := validate.Validate(ctx, doc, opts, cat, reg)
	if err := printJSON(result); err != nil {
		return err
	}
	if !result.Valid {
		return cliutil.DataError(fmt.Errorf("workflow has %d issue(s)", len(result.Issues)))
	}
	return nil
}

func runDiff(args []string) error {
	if len(args) < 2 {
		return cliutil.UsageError(fmt.Errorf("usage: flowctl diff <workflow-path> <operations-path>"))
	}
	wf, err := readWorkflow(args[0])
	if err != nil {
		return err
	}

	opsData, err := os.ReadFile(args[1])
	if err != nil {
		return cliutil.NoInputError(err)
	}
	var ops []diff.Operation
	if err := json.Unmarshal(opsData, &ops); err != nil {
		return cliutil.DataError(fmt.Errorf("decode operations file: %w", err))
	}

	result := diff.New().Apply(wf, diff.Request{Operations: ops, ContinueOnError: false})
	if err := printJSON(result); err != nil {
		return err
	}
	if !result.Success {
		return cliutil.DataError(fmt.Errorf("diff failed: %v", result.Errors))
	}
	return nil
}

func runAutofix(args []string) error {
	if len(args) < 1 {
		return cliutil.UsageError(fmt.Errorf("usage: flowctl autofix <path> [--apply]"))
	}
	apply := false
	for _, a := range args[1:] {
		if a == "--apply" {
			apply = true
		}
	}

	cfg, err := config.LoadDefault()
	if err != nil {
		return cliutil.ConfigError(err)
	}
	ctx := context.Background()
	cat, reg, err := buildCatalogAndRegistry(ctx, cfg)
	if err != nil {
		return err
	}

	wf, err := readWorkflow(args[0])
	if err != nil {
		return err
	}

	fixer := autofix.NewAutofixer(cat, reg)
	if !apply {
		fixes, err := fixer.Propose(ctx, wf, autofix.ThresholdMedium)
		if err != nil {
			return err
		}
		return printJSON(fixes)
	}

	result, fixes, err := fixer.Apply(ctx, wf, autofix.ThresholdMedium)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{"fixes": fixes, "workflow": result.Workflow})
}

func runServe() error {
	cfg, err := config.LoadDefault()
	if err != nil {
		return cliutil.ConfigError(err)
	}
	ctx := context.Background()
	cat, reg, err := buildCatalogAndRegistry(ctx, cfg)
	if err != nil {
		return err
	}

	if cfg.Catalog.RefreshCron != "" {
		if memCat, ok := cat.(*catalog.MemoryCatalog); ok {
			syncer := catalogsync.NewSyncer(catalogsync.EmbeddedSource{}, memCat)
			if err := syncer.Start(ctx, cfg.Catalog.RefreshCron); err != nil {
				slog.Warn("catalogsync disabled", "err", err)
			} else {
				defer syncer.Stop()
			}
		}
	}

	srv := apiserver.NewServer(cat, reg)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	slog.Info("starting flowctl apiserver", "addr", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
