package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gartstein/companydir/internal/company/events"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	watchBrokers []string
	watchTopic   string
	watchGroup   string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream company change events",
	Long: `Prints create, update and delete events published by the gateway.

Requires the gateway to run with KAFKA_BROKERS set.

Example:
  companyctl watch --brokers localhost:9092`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringSliceVar(&watchBrokers, "brokers", nil, "Kafka brokers (or set KAFKA_BROKERS env)")
	watchCmd.Flags().StringVar(&watchTopic, "topic", "company.events", "Change-event topic")
	watchCmd.Flags().StringVar(&watchGroup, "group", "", "Consumer group; empty tails from the latest offset")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	brokers := watchBrokers
	if len(brokers) == 0 {
		if env := os.Getenv("KAFKA_BROKERS"); env != "" {
			brokers = strings.Split(env, ",")
		}
	}
	if len(brokers) == 0 {
		return fmt.Errorf("no brokers: pass --brokers or set KAFKA_BROKERS")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("Watching change events", zap.Strings("brokers", brokers), zap.String("topic", watchTopic))
	consumer := events.NewConsumer(brokers, watchGroup, watchTopic, printEvent(cmd.OutOrStdout()), logger)
	defer consumer.Close()

	return consumer.Run(ctx)
}

func printEvent(w io.Writer) events.Handler {
	return func(_ context.Context, e events.Event) error {
		if e.Company == nil {
			_, err := fmt.Fprintf(w, "%-16s -\n", e.Type)
			return err
		}
		_, err := fmt.Fprintf(w, "%-16s %s  %s\n", e.Type, e.Company.ID, e.Company.Name)
		return err
	}
}
