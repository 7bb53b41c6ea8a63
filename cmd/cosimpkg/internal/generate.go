package internal

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-simulation-platform/cosimpkg/internal/packager"
)

var (
	generateGraph       string
	generateBuildFolder string
	generateSettings    []string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the CMake toolchain and package config files",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateGraph, "graph", "g", "", "Dependency graph written by the package manager")
	generateCmd.Flags().StringVarP(&generateBuildFolder, "build-folder", "b", "", "Build folder")
	generateCmd.Flags().StringArrayVarP(&generateSettings, "setting", "s", nil, "Override a setting, key=value")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	settings, err := resolveSettings(generateSettings)
	if err != nil {
		return err
	}
	g, err := loadGraph(generateGraph)
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}
	_, genDir, err := folderOptions(generateBuildFolder).Folders()
	if err != nil {
		return err
	}
	files, err := packager.Generate(context.Background(), settings, g, genDir)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintln(cmd.OutOrStdout(), f)
	}
	return nil
}
