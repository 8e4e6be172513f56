// Package kafka publishes finished frame sets so downstream renderers can
// react without polling the HTTP surface.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/meteoaustral/goes-frames/internal/config"
	"github.com/meteoaustral/goes-frames/internal/domain"
)

// Announcer produces one message per finished assembly run.
// It implements pipeline.Announcer.
type Announcer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewAnnouncer creates a Kafka producer for the configured announce topic.
func NewAnnouncer(cfg *config.Config, logger *slog.Logger) *Announcer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Announcer{writer: w, logger: logger}
}

// Announce publishes one frame-set manifest. The payload carries cached blob
// paths and density grids, never pixel data.
func (a *Announcer) Announce(ctx context.Context, set domain.FrameSet) error {
	msg, err := serializeFrameSet(set)
	if err != nil {
		return err
	}
	if err := a.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("announce frame set %s: %w", set.RunID, err)
	}
	a.logger.Info("frame set announced", "run_id", set.RunID, "frames", len(set.Frames))
	return nil
}

func (a *Announcer) Close() error {
	return a.writer.Close()
}

// serializeFrameSet marshals a frame set into a Kafka message. The region name
// keys the message so each region's sets stay ordered within one partition.
func serializeFrameSet(set domain.FrameSet) (kafkago.Message, error) {
	data, err := json.Marshal(set)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize frame set: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(set.Region.Name),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(set.RunID)},
			{Key: "assembled_at", Value: []byte(set.AssembledAt.Format(time.RFC3339))},
		},
	}, nil
}
