package internal

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-simulation-platform/cosimpkg/internal/logger"
)

var cleanBuildFolder string

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove dist/ and the generated files",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().StringVarP(&cleanBuildFolder, "build-folder", "b", "", "Build folder")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	distDir, genDir, err := folderOptions(cleanBuildFolder).Folders()
	if err != nil {
		return err
	}
	for _, dir := range []string{distDir, genDir} {
		logger.InfoKV(context.Background(), "Removing", "path", dir)
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
	}
	return nil
}
