package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/huecycle/internal/pipeline"
	"github.com/ironsheep/huecycle/internal/server"
	"github.com/spf13/cobra"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Configure logging to stderr (stdout carries results and MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := newRootCmd().Execute(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "huecycle",
		Short: "Turn a still image into a looping hue-cycling GIF",
		Long: `huecycle rotates the hue of every pixel of an image through a full turn,
writes one frame per step and assembles the frames into an animated GIF.

Environment variables:
  ` + pipeline.LogLevelEnv + `=debug    Enable debug logging`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newRenderCmd(),
		newSampleCmd(),
		newInfoCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdin/stdout",
		Long: `Run the MCP server over stdin/stdout.

This server communicates via MCP protocol over stdin/stdout.
Configure it in your MCP client (e.g., Claude Desktop).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if os.Getenv(pipeline.LogLevelEnv) == "debug" {
				log.Printf("huecycle MCP server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
			}

			server.ServerVersion = Version
			srv := server.NewWithIO(cmd.InOrStdin(), cmd.OutOrStdout())
			if err := srv.Run(); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "huecycle %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		},
	}
}
