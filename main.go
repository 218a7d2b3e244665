package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const appName = "biorel"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Protein namespace manager and interaction graph builder",
		Long: `biorel maintains a UniProt protein namespace in PostgreSQL and builds
cited BEL edges from the IntAct and BioGRID interaction datasets.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(belnsCmd(), ingestCmd(), serveCmd())
	return cmd
}
