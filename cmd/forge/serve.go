package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/contentforge/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve <package>...",
	Short: "Serve the preset browser over SSH",
	Long: `Load one or more content packages, then start an SSH server that
lets remote users browse the loaded library.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.forge/host_key

Examples:
  forge serve Base.rte                       # Listen on :23235 with auto-generated key
  forge serve Base.rte --ssh :2222           # Listen on port 2222
  forge serve Base.rte --host-key ./my_key   # Use specific host key

Users can connect with:
  ssh localhost -p 23235`,
	Args: cobra.MinimumNArgs(1),
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, args []string) {
	appCfg := loadAppConfig()
	lib := newLibrary(appCfg)

	if err := loadPackages(lib, appCfg, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := tui.SSHServerConfig{
		Address:     appCfg.Serve.Address,
		HostKeyPath: appCfg.Serve.HostKeyPath,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
	}
	if flagSSHAddr != "" {
		cfg.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.HostKeyPath = flagHostKey
	}

	server, err := tui.NewSSHServer(cfg, lib)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Serving %d presets on %s\n", lib.TotalPresets(), cfg.Address)
	fmt.Println("Connect with: ssh localhost -p 23235")
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
