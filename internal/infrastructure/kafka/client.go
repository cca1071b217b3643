package kafka

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Config for the Kafka producer client.
type Config struct {
	Brokers       string // Comma separated seed brokers
	ClientID      string
	Topic         string
	ProduceLinger time.Duration
}

// Brokers splits a comma separated broker list, dropping blanks.
func Brokers(list string) []string {
	var out []string
	for _, b := range strings.Split(list, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// NewClient creates a franz-go client producing to cfg.Topic by default and
// verifies that at least one broker is reachable.
func NewClient(ctx context.Context, cfg Config) (*kgo.Client, error) {
	brokers := Brokers(cfg.Brokers)
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}
	if cfg.Topic != "" {
		opts = append(opts, kgo.DefaultProduceTopic(cfg.Topic))
	}
	if cfg.ProduceLinger > 0 {
		opts = append(opts, kgo.ProducerLinger(cfg.ProduceLinger))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping kafka: %w", err)
	}

	return client, nil
}
