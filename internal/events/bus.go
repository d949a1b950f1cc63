// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/folio/internal/logging"
)

// DefaultBufferSize is the per-subscriber output buffer.
const DefaultBufferSize = 64

// Bus is an in-process publish/subscribe channel for change events.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates a bus logging through logger. A nil logger uses the
// process-wide logger.
func NewBus(logger *slog.Logger, bufferSize int) *Bus {
	if logger == nil {
		logger = logging.NewSlogLogger()
	}
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: int64(bufferSize),
		}, watermill.NewSlogLogger(logger)),
	}
}

// Publish encodes ev and publishes it on its topic.
func (b *Bus) Publish(ctx context.Context, ev ChangeEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}

	msg := message.NewMessage(ev.EventID, data)
	msg.Metadata.Set(MetadataSource, ev.Source)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set(MetadataCorrelationID, id)
	}
	msg.SetContext(ctx)

	if err := b.pubsub.Publish(ev.Topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Topic, err)
	}
	return nil
}

// Subscribe returns the messages published on topic until ctx is done.
// Every message must be acked or nacked.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// Close closes the bus and every subscription.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
