package internal

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/open-simulation-platform/cosimpkg/internal/packager"
)

var (
	installGraph       string
	installRecipe      string
	installBuildFolder string
	installSettings    []string
	installDryRun      bool
	installArchive     string
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Assemble the distribution tree",
	Long: `Install checks the resolved graph against the recipe, generates the build
files and imports libraries, executables and licenses into dist/.`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().StringVarP(&installGraph, "graph", "g", "", "Dependency graph written by the package manager")
	installCmd.Flags().StringVarP(&installRecipe, "recipe", "r", "", "Recipe file (default: built-in cosim-cli recipe)")
	installCmd.Flags().StringVarP(&installBuildFolder, "build-folder", "b", "", "Build folder")
	installCmd.Flags().StringArrayVarP(&installSettings, "setting", "s", nil, "Override a setting, key=value")
	installCmd.Flags().BoolVar(&installDryRun, "dry-run", false, "Print patchelf commands instead of running them")
	installCmd.Flags().StringVarP(&installArchive, "archive", "o", "", "Also write dist/ to this zip file")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	settings, err := resolveSettings(installSettings)
	if err != nil {
		return err
	}
	r, err := loadRecipe(installRecipe)
	if err != nil {
		return fmt.Errorf("load recipe: %w", err)
	}
	g, err := loadGraph(installGraph)
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}

	opts := folderOptions(installBuildFolder)
	opts.Recipe = r
	opts.Graph = g
	opts.Settings = settings
	opts.DryRun = installDryRun
	if installArchive != "" {
		abs, err := filepath.Abs(installArchive)
		if err != nil {
			return fmt.Errorf("failed to resolve archive path: %w", err)
		}
		opts.Archive = abs
	}

	res, err := packager.Run(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Tree.Root)
	return nil
}
