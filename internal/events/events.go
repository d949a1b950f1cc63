// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Topics.
const (
	TopicRatingsChanged = "folio.ratings.changed"
	TopicCatalogChanged = "folio.catalog.changed"
)

// Metadata keys set on every published message.
const (
	MetadataCorrelationID = "correlation_id"
	MetadataSource        = "source"
)

// SchemaVersion is the current ChangeEvent schema version.
const SchemaVersion = 1

// ErrInvalidEvent is returned for payloads that cannot be decoded.
var ErrInvalidEvent = errors.New("invalid change event")

// Topics returns every topic the engine listens on.
func Topics() []string {
	return []string{TopicRatingsChanged, TopicCatalogChanged}
}

// ChangeEvent describes a change in the external store.
type ChangeEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventID       string    `json:"event_id"`
	Topic         string    `json:"topic"`
	Source        string    `json:"source"` // component that observed the change
	Reason        string    `json:"reason,omitempty"`
	BookIDs       []int     `json:"book_ids,omitempty"`
	UserIDs       []int     `json:"user_ids,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewChangeEvent creates an event with a fresh id.
func NewChangeEvent(topic, source, reason string) ChangeEvent {
	return ChangeEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		Topic:         topic,
		Source:        source,
		Reason:        reason,
		OccurredAt:    time.Now().UTC(),
	}
}

// StaleReason renders the event as a human readable staleness reason.
func (e ChangeEvent) StaleReason() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Topic, e.Reason)
	}
	return e.Topic
}

// Validate checks the required fields.
func (e ChangeEvent) Validate() error {
	switch {
	case e.EventID == "":
		return fmt.Errorf("%w: missing event id", ErrInvalidEvent)
	case e.Topic != TopicRatingsChanged && e.Topic != TopicCatalogChanged:
		return fmt.Errorf("%w: unknown topic %q", ErrInvalidEvent, e.Topic)
	}
	return nil
}

// Decode parses a message payload.
func Decode(msg *message.Message) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return ChangeEvent{}, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	if err := ev.Validate(); err != nil {
		return ChangeEvent{}, err
	}
	return ev, nil
}
