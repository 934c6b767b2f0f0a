package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/oapi2client/internal/output"
)

const defaultConfigFile = "oapi2client.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample oapi2client configuration file",
		Long:  "Scaffold a commented oapi2client configuration file that documents available options.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			return initRunner(cmd.Context(), &InitConfig{
				OutputPath: out,
				Force:      force,
				Verbose:    verbose,
			})
		},
	}

	cmd.Flags().String("out", defaultConfigFile, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultConfigFile
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	content := strings.TrimSpace(sampleConfigYAML) + "\n"
	if _, err := output.Write([]output.File{{RelPath: absPath, Content: []byte(content)}}, output.Options{Force: cfg.Force}); err != nil {
		if errors.Is(err, output.ErrExists) {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
		return newUsageError(fmt.Sprintf("init: cannot write %s: %v\nHint: choose a different --out or check directory permissions.", absPath, err))
	}
	fmt.Fprintf(stdout, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# oapi2client configuration (YAML)
# All fields are optional. Flags override OAPI2CLIENT_* environment
# variables, which override config values.

# Path or URL to the Swagger/OpenAPI document (http/https or local file).
# input: ./openapi.yaml

# Client file to write. Derived from the API title when omitted.
# target: ./src/api/client.ts

# Separate file for model types. Models stay in the client file when omitted.
# schemas: ./src/api/model/index.ts

# Client flavor to emit (axios|swr). Defaults to swr.
# client: swr

# Only include operations with these tags (comma-separated or list).
# includeTags: [pets]

# Exclude operations with these tags (comma-separated or list).
# excludeTags: [internal]

# Import default exports with "import x from" (tsconfig esModuleInterop).
# syntheticDefaultImports: true

# Set when the TypeScript lib already declares Awaited.
# hasAwaitedType: false

# Preview planned outputs without writing files.
# dryRun: false

# Overwrite files the generator did not write.
# force: false

# Regenerate whenever the input file changes.
# watch: false

# Enable verbose logging.
# verbose: false

# Shape of the generated functions. Keys below are case-sensitive.
# override:
#   useDates: false
#   requestOptions: true
#   formData: true
#   formUrlEncoded: true
#   mutator:
#     name: customInstance
#     path: ./custom-instance
#     default: false
#     hasSecondArg: true
#     hasErrorType: true
#     bodyTypeName: BodyType
#   swr:
#     options:
#       revalidateOnFocus: false
#   operations:
#     listPets:
#       requestOptions: false
`
