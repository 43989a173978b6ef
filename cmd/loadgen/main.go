package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/visitor-pulse/backend/internal/loadgen"
)

var (
	baseURL  string
	minDelay time.Duration
	maxDelay time.Duration
	count    int
)

var rootCmd = &cobra.Command{
	Use:   "loadgen",
	Short: "Send a stream of synthetic visitor events to a running server",
	Long: `loadgen simulates a small population of visitors browsing a site,
posting pageview, click and session_end events to the ingestion API at a
randomized cadence. Useful for exercising the live dashboard.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&baseURL, "url", "http://localhost:3000", "base URL of the server")
	rootCmd.Flags().DurationVar(&minDelay, "min-delay", 2*time.Second, "minimum delay between events")
	rootCmd.Flags().DurationVar(&maxDelay, "max-delay", 5*time.Second, "maximum delay between events")
	rootCmd.Flags().IntVar(&count, "count", 0, "number of events to send (0 = until interrupted)")
}

func run(cmd *cobra.Command, args []string) error {
	gen := loadgen.NewGenerator(loadgen.Config{
		BaseURL:  baseURL,
		MinDelay: minDelay,
		MaxDelay: maxDelay,
		Count:    count,
	})

	if err := gen.CheckServer(); err != nil {
		return err
	}
	log.Printf("Sending events to %s", baseURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := gen.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
