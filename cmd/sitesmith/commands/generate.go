package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sitesmith-ai/sitesmith/internal/admin"
	"github.com/sitesmith-ai/sitesmith/internal/cache"
	"github.com/sitesmith-ai/sitesmith/internal/config"
	"github.com/sitesmith-ai/sitesmith/internal/generate"
	"github.com/sitesmith-ai/sitesmith/internal/project"
	"github.com/sitesmith-ai/sitesmith/internal/provider"
	"github.com/sitesmith-ai/sitesmith/internal/storage"
	"github.com/sitesmith-ai/sitesmith/internal/stream"
	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

var (
	generateProjectID string
	generateModel     string
	generateAgentMode bool
	generateOutputDir string
)

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Run a one-shot generation",
	Long: `Run a single generation from the command line.

Creates a new project unless --project names an existing one, streams the
model's thought to stderr, and writes the resulting files to --output.

Examples:
  sitesmith generate "a landing page for a coffee shop"
  sitesmith generate --project prj_01HX... "make the header sticky"
  sitesmith generate --model anthropic/claude-sonnet-4-20250514 "a pricing page"`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateProjectID, "project", "", "Existing project ID to continue")
	generateCmd.Flags().StringVarP(&generateModel, "model", "m", "", "Model as provider/model")
	generateCmd.Flags().BoolVar(&generateAgentMode, "agent", true, "Agent mode (file progress extraction)")
	generateCmd.Flags().StringVarP(&generateOutputDir, "output", "o", ".", "Directory to write generated files to")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	prompt := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	workDir, err := os.Getwd()
	if err != nil {
		return err
	}

	paths := config.GetPaths()
	if err := paths.EnsurePaths(); err != nil {
		return err
	}

	appConfig, err := config.Load(workDir)
	if err != nil {
		return err
	}

	providerReg, err := provider.InitializeProviders(ctx, appConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize providers: %w", err)
	}

	projects := project.NewService(storage.New(paths.StoragePath()))

	var forwarder *admin.Forwarder
	if appConfig.Admin != nil {
		forwarder = admin.NewForwarder(appConfig.Admin.Endpoint)
	}

	generator := generate.New(providerReg, cache.FromConfig(ctx, appConfig.Cache), projects, forwarder)

	projectID := generateProjectID
	var existing []types.ProjectFile
	if projectID == "" {
		created, err := projects.Create(ctx, prompt)
		if err != nil {
			return err
		}
		projectID = created.ID
		fmt.Fprintf(os.Stderr, "Created project %s\n", projectID)
	} else {
		p, err := projects.Get(ctx, projectID)
		if err != nil {
			return err
		}
		existing = p.Files
	}

	req := &types.GenerationRequest{
		ProjectID:     projectID,
		Prompt:        prompt,
		ExistingFiles: existing,
		Mode:          types.ModeChat,
	}
	if generateAgentMode {
		req.Mode = types.ModeAgent
	}
	if generateModel != "" {
		req.ProviderID, req.ModelID = provider.ParseModelString(generateModel)
	}

	outcome, err := generator.Generate(ctx, req, stream.Callbacks{
		OnThought: func(text string) {
			fmt.Fprintln(os.Stderr, text)
		},
		OnFileProgress: func(name string) {
			fmt.Fprintf(os.Stderr, "Generating %s...\n", name)
		},
	})
	if err != nil {
		return err
	}

	fmt.Println(outcome.Result.Message)

	if generateOutputDir != "" {
		for _, file := range outcome.Result.Files {
			// Result file names are flat; reject anything trying to escape
			name := filepath.Base(filepath.Clean(file.Name))
			if name == "." || name == ".." || strings.HasPrefix(name, "/") {
				continue
			}
			path := filepath.Join(generateOutputDir, name)
			if err := os.WriteFile(path, []byte(file.Content), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
		}
	}

	return nil
}
