package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/contentforge/internal/platform/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse <package>...",
	Short: "Browse loaded presets interactively",
	Long: `Load one or more content packages, then open a terminal browser
over everything that was registered.

Examples:
  forge browse Base.rte
  forge browse Base.rte Mods.rte`,
	Args: cobra.MinimumNArgs(1),
	Run:  runBrowse,
}

func runBrowse(_ *cobra.Command, args []string) {
	cfg := loadAppConfig()
	lib := newLibrary(cfg)

	if err := loadPackages(lib, cfg, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Get terminal size
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	if err := tui.RunBrowser(lib, width, height); err != nil {
		fmt.Fprintf(os.Stderr, "Error running browser: %v\n", err)
		os.Exit(1)
	}
}
