package internal

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/open-simulation-platform/cosimpkg/internal/dist"
)

var listBuildFolder string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the files imported by the last install",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&listBuildFolder, "build-folder", "b", "", "Build folder")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	_, genDir, err := folderOptions(listBuildFolder).Folders()
	if err != nil {
		return err
	}
	m, err := dist.LoadManifest(filepath.Join(genDir, dist.ManifestFile))
	if err != nil {
		return fmt.Errorf("no install found: %w", err)
	}
	return printManifest(cmd.OutOrStdout(), m)
}

func printManifest(w io.Writer, m *dist.Manifest) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tDEPENDENCY\tPATH\tRPATH")
	for _, e := range m.Entries {
		rpath := e.RPath
		if rpath == "" {
			rpath = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Kind, e.Dependency, e.Path, rpath)
	}
	return tw.Flush()
}
