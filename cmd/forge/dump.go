package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/contentforge/internal/content"
	"github.com/vovakirdan/contentforge/internal/writer"
)

var flagDumpOutput string

var dumpCmd = &cobra.Command{
	Use:   "dump <package>",
	Short: "Load a package and write it back out",
	Long: `Load a content package, then re-serialize everything it registered
as a single flattened file. Includes are resolved during loading, so
the output contains every preset inline.

Examples:
  forge dump Base.rte
  forge dump Base.rte -o Base_flat.ini`,
	Args: cobra.ExactArgs(1),
	Run:  runDump,
}

func init() {
	dumpCmd.Flags().StringVarP(&flagDumpOutput, "output", "o", "", "Output file (default: stdout)")
}

func runDump(_ *cobra.Command, args []string) {
	cfg := loadAppConfig()
	lib := newLibrary(cfg)

	pkg, err := lib.LoadPackage(args[0], content.LoadOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", args[0], err)
		os.Exit(1)
	}

	var w *writer.Writer
	if flagDumpOutput == "" {
		w = writer.New(os.Stdout)
	} else {
		w, err = writer.Create(flagDumpOutput)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			os.Exit(1)
		}
		defer w.Close()
	}

	if err := pkg.Save(w); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing package: %v\n", err)
		os.Exit(1)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error flushing output: %v\n", err)
		os.Exit(1)
	}

	if flagDumpOutput != "" {
		fmt.Printf("Wrote %d presets to %s\n", pkg.PresetCount(), flagDumpOutput)
	}
}
