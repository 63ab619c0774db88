package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/contentforge/internal/storage"
)

var (
	flagQueryClass   string
	flagQueryGroup   string
	flagQueryPackage string
	flagQueryName    string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the preset catalog",
	Long: `Query the catalog database built by 'forge index'. Filters may be
combined; with no filters every indexed preset is listed.

Examples:
  forge query --class Material
  forge query --group Weapons
  forge query --package Base.rte
  forge query --name Granite`,
	Run: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&flagQueryClass, "class", "", "Filter by exact class name")
	queryCmd.Flags().StringVar(&flagQueryGroup, "group", "", "Filter by group membership")
	queryCmd.Flags().StringVar(&flagQueryPackage, "package", "", "Filter by package")
	queryCmd.Flags().StringVar(&flagQueryName, "name", "", "Filter by preset name substring")
}

func runQuery(_ *cobra.Command, _ []string) {
	cfg := loadAppConfig()

	store, err := storage.Open(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening catalog database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	rows, err := queryRows(store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error querying catalog: %v\n", err)
		os.Exit(1)
	}

	// Apply remaining filters in memory; the catalog stays small enough
	// that pushing every combination into SQL isn't worth it.
	rows = filterRows(rows)

	if len(rows) == 0 {
		fmt.Println("No presets match.")
		fmt.Println("Run 'forge index <package>' to build the catalog first.")
		return
	}

	fmt.Printf("  %-16s  %-14s  %-28s  %s\n", "Package", "Class", "Preset", "Groups")
	fmt.Printf("  %-16s  %-14s  %-28s  %s\n", "-------", "-----", "------", "------")
	for _, row := range rows {
		groups := strings.Join(row.Groups, ", ")
		if groups == "" {
			groups = "-"
		}
		fmt.Printf("  %-16s  %-14s  %-28s  %s\n", row.Package, row.Class, row.Name, groups)
	}
	fmt.Printf("\n%d presets\n", len(rows))
}

// queryRows picks the most selective single SQL filter available.
func queryRows(store *storage.Store) ([]storage.PresetRow, error) {
	switch {
	case flagQueryGroup != "":
		return store.PresetsByGroup(flagQueryGroup)
	case flagQueryPackage != "":
		return store.PresetsByPackage(flagQueryPackage)
	case flagQueryName != "":
		return store.SearchPresets(flagQueryName)
	default:
		return store.PresetsByClass(flagQueryClass)
	}
}

// filterRows applies whatever filters the SQL query didn't cover.
func filterRows(rows []storage.PresetRow) []storage.PresetRow {
	out := rows[:0]
	for _, row := range rows {
		if flagQueryClass != "" && row.Class != flagQueryClass {
			continue
		}
		if flagQueryPackage != "" && row.Package != flagQueryPackage {
			continue
		}
		if flagQueryName != "" && !strings.Contains(strings.ToLower(row.Name), strings.ToLower(flagQueryName)) {
			continue
		}
		if flagQueryGroup != "" && !containsGroup(row.Groups, flagQueryGroup) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func containsGroup(groups []string, want string) bool {
	for _, g := range groups {
		if g == want {
			return true
		}
	}
	return false
}
