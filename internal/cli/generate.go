package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mark3labs/oapi2client/internal/generate"
	"github.com/mark3labs/oapi2client/internal/output"
	"github.com/mark3labs/oapi2client/internal/spec"
	"github.com/mark3labs/oapi2client/internal/watch"
)

const defaultClient = "swr"

var (
	generateRunner = runGenerate

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a TypeScript client from an OpenAPI/Swagger document",
		Long: "Generate a TypeScript client from an OpenAPI/Swagger document. " +
			"Options can be provided via flags, " + EnvPrefix + "_* environment variables, config files, or defaults.",
		Example: strings.TrimSpace(`  oapi2client generate --input openapi.yaml --target src/api/client.ts
  oapi2client generate --input openapi.yaml --client axios --schemas src/api/model/index.ts
  oapi2client --config oapi2client.yaml generate --watch`),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := loadGenerateConfig(cmd.Flags(), strings.TrimSpace(configPath))
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringP("input", "i", "", "Path or URL to the Swagger/OpenAPI document")
	flags.StringP("target", "o", "", "Client file to write (derived from the API title when omitted)")
	flags.String("schemas", "", "Separate file for model types; models stay in the client file when omitted")
	flags.String("client", defaultClient, "Client flavor to emit ("+strings.Join(clientNames(), "|")+")")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.Bool("synthetic-default-imports", true, "Import default exports as default imports (esModuleInterop)")
	flags.Bool("has-awaited-type", false, "Assume the TypeScript lib already declares Awaited")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing files the generator did not write")
	flags.BoolP("watch", "w", false, "Regenerate whenever the input file changes")

	return cmd
}

func clientNames() []string {
	return generate.DefaultRegistry().Names()
}

func knownClient(name string) bool {
	for _, n := range clientNames() {
		if n == name {
			return true
		}
	}
	return false
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	log := newLogger(cfg.Verbose)
	defer func() { _ = log.Sync() }()

	err := generateOnce(ctx, cfg, log)
	if !cfg.Watch {
		return err
	}
	if err != nil {
		printError(err)
	}

	w, err := watch.New([]string{cfg.Input}, 0, log)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Watching %s for changes (Ctrl+C to stop)\n", cfg.Input)
	return w.Run(ctx, func(ctx context.Context, files []string) error {
		fmt.Fprintf(stdout, "Change detected in %s, regenerating\n", strings.Join(files, ", "))
		if err := generateOnce(ctx, cfg, log); err != nil {
			printError(err)
		}
		return nil
	})
}

// generateOnce loads the document, generates the client and writes it.
// Operations that fail are reported and make the run fail after the rest of
// the client has been written.
func generateOnce(ctx context.Context, cfg *GenerateConfig, log *zap.Logger) error {
	doc, err := spec.Load(ctx, cfg.Input, spec.WithLogger(log))
	if err != nil {
		return describeSpecError(err)
	}

	target := cfg.Target
	if target == "" {
		target = deriveTarget(doc)
	}
	res, err := generate.New(nil, log).Run(ctx, doc, generate.Options{
		Flavor:  cfg.Client,
		Target:  target,
		Schemas: cfg.Schemas,
		Context: cfg.Context(),
		Filters: []spec.BuildOption{
			spec.WithIncludeTags(cfg.IncludeTags),
			spec.WithExcludeTags(cfg.ExcludeTags),
		},
	})
	if err != nil {
		if errors.Is(err, generate.ErrUnknownFlavor) {
			return newUsageError(err.Error())
		}
		return err
	}

	written, err := output.Write(res.Files, output.Options{
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
		Marker: generate.Banner,
	})
	if err != nil {
		return wrapOutputError(err, target)
	}
	if cfg.DryRun {
		printPlan(written.Planned)
	} else {
		color.New(color.FgGreen).Fprintf(stdout, "Wrote %d file(s) for %d operation(s)\n",
			len(written.Planned), res.Operations-len(res.Failures))
	}

	if len(res.Failures) > 0 {
		for _, f := range res.Failures {
			color.New(color.FgRed).Fprintf(stderr, "✗ %s (%s): %v\n", f.Operation, f.Route, f.Err)
		}
		return fmt.Errorf("generate: %d of %d operations failed", len(res.Failures), res.Operations)
	}
	return nil
}

func printPlan(planned []output.PlannedFile) {
	fmt.Fprintf(stdout, "Planned writes (%d files):\n", len(planned))
	for _, p := range planned {
		state := "new"
		if p.Exists {
			state = "overwrite"
		}
		fmt.Fprintf(stdout, "- %s (%d bytes, %s)\n", p.RelPath, p.Size, state)
	}
}

func printError(err error) {
	color.New(color.FgRed, color.Bold).Fprintf(stderr, "Error: %v\n", err)
}

// deriveTarget names the client file after the API title.
func deriveTarget(doc *openapi3.T) string {
	title := ""
	if doc != nil && doc.Info != nil {
		title = doc.Info.Title
	}
	t := strings.ToLower(strings.TrimSpace(title))
	repl := strings.NewReplacer("/", " ", "_", " ", ".", " ", ",", " ", ":", " ")
	var b strings.Builder
	for _, r := range repl.Replace(t) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' || r == '-' {
			b.WriteRune(r)
		}
	}
	parts := strings.Fields(b.String())
	if len(parts) == 0 {
		return "client.ts"
	}
	return strings.Join(parts, "-") + ".ts"
}
