package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sitesmith-ai/sitesmith/internal/config"
	"github.com/sitesmith-ai/sitesmith/internal/provider"
)

var modelsVerbose bool

var modelsCmd = &cobra.Command{
	Use:   "models [provider]",
	Short: "List available models",
	Long: `List all available models from configured providers.

Examples:
  sitesmith models              # List all models
  sitesmith models anthropic    # List only Anthropic models
  sitesmith models --verbose    # Show pricing information`,
	RunE: runModels,
}

func init() {
	modelsCmd.Flags().BoolVarP(&modelsVerbose, "verbose", "v", false, "Include metadata like costs")
}

func runModels(cmd *cobra.Command, args []string) error {
	workDir, err := os.Getwd()
	if err != nil {
		return err
	}

	appConfig, err := config.Load(workDir)
	if err != nil {
		return err
	}

	providerReg, err := provider.InitializeProviders(context.Background(), appConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize providers: %w", err)
	}

	var providerFilter string
	if len(args) > 0 {
		providerFilter = args[0]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	if modelsVerbose {
		fmt.Fprintln(w, "PROVIDER\tMODEL\tCONTEXT\tMAX OUTPUT\tINPUT PRICE\tOUTPUT PRICE\t")
	} else {
		fmt.Fprintln(w, "PROVIDER\tMODEL\tCONTEXT\tFEATURES\t")
	}

	for _, model := range providerReg.AllModels() {
		if providerFilter != "" && model.ProviderID != providerFilter {
			continue
		}

		if modelsVerbose {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t$%.2f\t$%.2f\t\n",
				model.ProviderID, model.ID, model.ContextLength, model.MaxOutputTokens,
				model.InputPrice, model.OutputPrice)
			continue
		}

		features := ""
		if model.SupportsVision {
			features += "vision "
		}
		if model.Cacheable {
			features += "cacheable"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t\n", model.ProviderID, model.ID, model.ContextLength, features)
	}

	return w.Flush()
}
