package internal

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/open-simulation-platform/cosimpkg/recipe"
)

var (
	requirementsRecipe   string
	requirementsSettings []string
)

var requirementsCmd = &cobra.Command{
	Use:   "requirements",
	Short: "Print the requirements declared for the settings",
	Args:  cobra.NoArgs,
	RunE:  runRequirements,
}

func init() {
	requirementsCmd.Flags().StringVarP(&requirementsRecipe, "recipe", "r", "", "Recipe file (default: built-in cosim-cli recipe)")
	requirementsCmd.Flags().StringArrayVarP(&requirementsSettings, "setting", "s", nil, "Override a setting, key=value")
	rootCmd.AddCommand(requirementsCmd)
}

func runRequirements(cmd *cobra.Command, args []string) error {
	settings, err := resolveSettings(requirementsSettings)
	if err != nil {
		return err
	}
	r, err := loadRecipe(requirementsRecipe)
	if err != nil {
		return fmt.Errorf("load recipe: %w", err)
	}
	printRequirements(cmd.OutOrStdout(), r, settings)
	return nil
}

func printRequirements(w io.Writer, r *recipe.Recipe, s recipe.Settings) {
	tools, libs := r.Requirements(s)
	fmt.Fprintln(w, "tool_requires:")
	for _, ref := range tools {
		fmt.Fprintf(w, "  %s\n", ref)
	}
	fmt.Fprintln(w, "requires:")
	for _, ref := range libs {
		fmt.Fprintf(w, "  %s\n", ref)
	}
}
