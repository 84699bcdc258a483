// Command gatta is the command line front end of the pot API
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gatta/internal/client"
	"gatta/internal/logger"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	tokenPath string
	logLevel  string
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "gatta",
	Short: "Split a group payment into equal seats",
	Long: `gatta creates a pot for a shared bill and tracks who has paid.

Everyone with the link can confirm their own payment. The device that created
the pot holds its organizer token and may add members or edit bank details.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.InitWriter(os.Stderr, logLevel, "text")
	},
}

func init() {
	defaultServer := os.Getenv("GATTA_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8081"
	}

	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", defaultServer, "API base URL (or set GATTA_SERVER)")
	rootCmd.PersistentFlags().StringVar(&tokenPath, "tokens", client.DefaultTokenPath(), "Organizer token file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 15*time.Second, "Request timeout")

	createCmd.Flags().String("title", "", "What the pot is for")
	createCmd.Flags().Float64("total", 0, "Total amount to collect")
	createCmd.Flags().Int("seats", 2, "Number of seats")
	createCmd.Flags().String("at", "", "Meeting time, RFC3339 or \"2006-01-02 15:04\" local time")
	createCmd.Flags().String("bank", "", "Bank name for transfers")
	createCmd.Flags().String("iban", "", "IBAN for transfers")
	_ = createCmd.MarkFlagRequired("title")
	_ = createCmd.MarkFlagRequired("total")
	_ = createCmd.MarkFlagRequired("at")

	bankCmd.Flags().String("bank", "", "Bank name")
	bankCmd.Flags().String("iban", "", "IBAN")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(payCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newClient() (*client.Client, error) {
	tokens, err := client.LoadTokenStore(tokenPath)
	if err != nil {
		return nil, err
	}
	return client.New(client.Config{BaseURL: serverURL, Timeout: timeout, Tokens: tokens}), nil
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
