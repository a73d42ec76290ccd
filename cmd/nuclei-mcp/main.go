package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/nuclei-tools-mcp/internal/config"
	"github.com/ironsheep/nuclei-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("nuclei-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("nuclei-tools-mcp - MCP server for nuclei segmentation")
			fmt.Println()
			fmt.Println("Usage: nuclei-tools-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from .env):")
			fmt.Println("  NUCLEI_MCP_LOG_LEVEL=debug    Enable debug logging")
			fmt.Println("  NUCLEI_MCP_WORKERS=N          Threshold sweep workers")
			fmt.Println("  NUCLEI_MCP_CONFIG=path        YAML configuration file")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			return
		}
	}

	// stdout is for MCP protocol
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if cfg.Debug() {
		log.Printf("Nuclei MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	srv := server.New(cfg)
	srv.Version = Version
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
