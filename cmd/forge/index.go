package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/contentforge/internal/storage"
)

var indexCmd = &cobra.Command{
	Use:   "index <package>...",
	Short: "Index loaded packages into the catalog database",
	Long: `Load one or more content packages and write their preset listings
into the catalog database, replacing any previous index of the same
packages. The catalog can then be queried without re-reading content.

Examples:
  forge index Base.rte
  forge index Base.rte Mods.rte --db ./catalog.db`,
	Args: cobra.MinimumNArgs(1),
	Run:  runIndex,
}

func runIndex(_ *cobra.Command, args []string) {
	cfg := loadAppConfig()
	lib := newLibrary(cfg)

	if err := loadPackages(lib, cfg, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening catalog database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	for _, name := range args {
		pkg := lib.PackageByName(name)
		if pkg == nil {
			continue
		}
		if err := store.IndexPackage(pkg); err != nil {
			fmt.Fprintf(os.Stderr, "Error indexing %s: %v\n", name, err)
			os.Exit(1)
		}
		fmt.Printf("Indexed %s: %d presets\n", name, pkg.PresetCount())
	}
}
