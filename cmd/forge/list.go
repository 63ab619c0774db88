package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/contentforge/internal/entity"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered content classes",
	Long:  `Shows every content class registered at startup, with its parent and pool state.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	classes := entity.Classes()

	if len(classes) == 0 {
		fmt.Println("No classes registered.")
		return
	}

	fmt.Println("Registered content classes:")
	fmt.Println()

	// Calculate column widths
	maxNameLen := 5 // "Class" header
	for _, c := range classes {
		if len(c.Name()) > maxNameLen {
			maxNameLen = len(c.Name())
		}
	}

	// Print header
	fmt.Printf("  %-*s  %-*s  %-8s  %s\n", maxNameLen, "Class", maxNameLen, "Parent", "Kind", "Pool (free/in use)")
	fmt.Printf("  %-*s  %-*s  %-8s  %s\n", maxNameLen, "-----", maxNameLen, "------", "----", "------------------")

	// Print classes
	for _, c := range classes {
		parent := "-"
		if c.Parent() != nil {
			parent = c.Parent().Name()
		}
		kind := "abstract"
		if c.IsConcrete() {
			kind = "concrete"
		}
		free, inUse, _ := c.PoolStats()
		fmt.Printf("  %-*s  %-*s  %-8s  %d/%d\n", maxNameLen, c.Name(), maxNameLen, parent, kind, free, inUse)
	}

	fmt.Println()
	fmt.Println("Run 'forge load <package>' to read content into these classes.")
}
