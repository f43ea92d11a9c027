package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/DRSN-tech/beauty-backend/pkg/logger"
	"github.com/spf13/cobra"
)

// log общий для подкоманд; инициализируется в PersistentPreRun.
var log logger.Logger = logger.Nop{}

var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Catalog tooling for the beauty recognition service",
	Long:  "Generates a sample catalog workbook and imports a workbook into PostgreSQL.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = logger.NewSlogLogger()
	},
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
