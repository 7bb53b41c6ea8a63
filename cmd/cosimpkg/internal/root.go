package internal

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-simulation-platform/cosimpkg/internal/config"
	"github.com/open-simulation-platform/cosimpkg/internal/env"
	"github.com/open-simulation-platform/cosimpkg/internal/graph"
	"github.com/open-simulation-platform/cosimpkg/internal/logger"
	"github.com/open-simulation-platform/cosimpkg/internal/packager"
	"github.com/open-simulation-platform/cosimpkg/recipe"
)

var (
	configFile string
	logLevel   string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cosimpkg",
	Short: "cosimpkg packages the cosim command line tool",
	Long: `cosimpkg assembles a redistributable cosim CLI from the packages resolved by
the package manager: it generates the CMake files, imports shared libraries,
executables and license files into dist/, and fixes their rpath on Linux.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ./cosimpkg.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		logger.Error(context.Background(), err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	level, ok := logger.ParseLogLevel(c.LogLevel)
	if !ok {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	logger.SetLevel(level)
	cfg = c
	return nil
}

// resolveSettings applies the -s assignments on top of the host settings.
func resolveSettings(assignments []string) (recipe.Settings, error) {
	overrides, err := recipe.ParseSettings(assignments)
	if err != nil {
		return nil, err
	}
	return env.HostSettings().Merge(overrides), nil
}

// loadRecipe reads file, or the configured recipe, falling back to the
// built-in one.
func loadRecipe(file string) (*recipe.Recipe, error) {
	if file == "" {
		file = cfg.Recipe
	}
	if file == "" {
		return recipe.Default(), nil
	}
	return recipe.Load(file)
}

func loadGraph(file string) (*graph.Graph, error) {
	if file == "" {
		file = cfg.Graph
	}
	if file == "" {
		return nil, fmt.Errorf("no dependency graph, use --graph or set %s_GRAPH", config.EnvPrefix)
	}
	return graph.Load(file)
}

// folderOptions returns packager options carrying the configured folders,
// with buildFolder overriding the configured build folder when set.
func folderOptions(buildFolder string) *packager.Options {
	if buildFolder == "" {
		buildFolder = cfg.BuildFolder
	}
	return &packager.Options{
		BuildFolder:      buildFolder,
		DistFolder:       cfg.DistFolder,
		GeneratorsFolder: cfg.GeneratorsFolder,
		Patchelf:         cfg.Patchelf,
	}
}
