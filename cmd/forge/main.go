// forge is a CLI for loading, inspecting and serving data-driven game content.
//
// Usage:
//
//	forge list                  - List registered content classes
//	forge load <package>...     - Load content packages and report what was read
//	forge dump <package>        - Load a package and re-serialize it
//	forge index <package>...    - Load packages and index them into the catalog
//	forge query                 - Query the preset catalog
//	forge browse <package>...   - Browse loaded presets interactively
//	forge serve <package>...    - Serve the preset browser over SSH
//
// Global flags:
//
//	--content <dir>  - Content root directory (default: .)
//	--db <path>      - Catalog database path (default: ~/.forge/catalog.db)
//	--config <path>  - Config file path (default: ~/.forge/forge.yaml)
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/contentforge/internal/config"
	"github.com/vovakirdan/contentforge/internal/content"
	"github.com/vovakirdan/contentforge/internal/presets"
)

var (
	// Global flags
	flagContentRoot string
	flagDBPath      string
	flagConfigPath  string
)

func main() {
	// Content classes must be registered before any package is read.
	presets.RegisterClasses()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "ContentForge - Load and inspect data-driven game content",
	Long: `ContentForge reads tab-indented content definition files, builds a
preset library from them, and lets you inspect, re-serialize, index
and browse what was loaded.

Available commands:
  list     - Show all registered content classes
  load     - Load packages and report what was read
  dump     - Load a package and write it back out
  index    - Index loaded packages into the catalog database
  query    - Query the catalog database
  browse   - Interactive preset browser
  serve    - Serve the browser over SSH

Examples:
  forge list
  forge load Base.rte
  forge dump Base.rte -o Base_out.ini
  forge index Base.rte Mods.rte
  forge query --class Material
  forge serve Base.rte --ssh :2222`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagContentRoot, "content", "", "Content root directory")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to catalog database")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to config file")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadAppConfig loads the config file and applies command line overrides.
func loadAppConfig() config.Config {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot load config: %v\n", err)
		cfg = config.DefaultConfig()
	}
	if flagContentRoot != "" {
		cfg.ContentRoot = flagContentRoot
	}
	if flagDBPath != "" {
		cfg.Database = flagDBPath
	}
	return cfg
}

// newLibrary creates a content library rooted at the configured content
// directory, with logging at the configured level.
func newLibrary(cfg config.Config) *content.Library {
	lib := content.NewLibrary(cfg.ContentRoot)

	level, err := log.ParseLevel(cfg.LogLevel)
	if err == nil {
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: false,
			Prefix:          "content",
			Level:           level,
		})
		lib.SetLogger(logger)
	}

	return lib
}

// loadPackages loads each named package into the library, printing
// progress when enabled. Returns an error on the first fatal failure.
func loadPackages(lib *content.Library, cfg config.Config, names []string) error {
	for _, name := range names {
		opts := content.LoadOptions{}
		if cfg.Progress.Enabled {
			opts.Progress = consoleProgress
			opts.ReportEvery = cfg.Progress.EveryLines
		}

		pkg, err := lib.LoadPackage(name, opts)
		if err != nil {
			return fmt.Errorf("loading %s: %w", name, err)
		}
		fmt.Printf("Loaded %s: %d presets\n", name, pkg.PresetCount())
	}
	return nil
}

// consoleProgress prints reader progress reports to stderr.
func consoleProgress(report string, newFile bool) {
	if newFile {
		fmt.Fprintf(os.Stderr, "\n%s", report)
	} else {
		fmt.Fprintf(os.Stderr, "\r%s", report)
	}
}
