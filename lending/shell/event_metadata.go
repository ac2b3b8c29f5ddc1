package shell

import (
	"errors"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/library-lending/lending-ledger/eventstore"
)

// ErrMappingToEventMetadataFailed is returned when metadata conversion fails.
var ErrMappingToEventMetadataFailed = errors.New("mapping to event metadata failed")

// MessageID represents a unique message identifier.
type MessageID = string

// CausationID represents the ID of the message that caused this event.
type CausationID = string

// CorrelationID represents the ID correlating related events.
type CorrelationID = string

// EventMetadata contains event tracking information.
type EventMetadata struct {
	MessageID     MessageID     `json:"messageId"`
	CausationID   CausationID   `json:"causationId"`
	CorrelationID CorrelationID `json:"correlationId"`
}

// BuildEventMetadata creates EventMetadata from UUID values.
func BuildEventMetadata(messageID uuid.UUID, causationID uuid.UUID, correlationID uuid.UUID) EventMetadata {
	return EventMetadata{
		MessageID:     messageID.String(),
		CausationID:   causationID.String(),
		CorrelationID: correlationID.String(),
	}
}

// NewEventMetadata creates EventMetadata for an event that starts its own causation chain,
// with a time-ordered (v7) message ID.
func NewEventMetadata() EventMetadata {
	messageID, err := uuid.NewV7()
	if err != nil {
		messageID = uuid.New()
	}

	return BuildEventMetadata(messageID, messageID, messageID)
}

// EventMetadataFrom extracts EventMetadata from a StorableEvent.
func EventMetadataFrom(storableEvent eventstore.StorableEvent) (EventMetadata, error) {
	metadata := new(EventMetadata)
	err := jsoniter.ConfigFastest.Unmarshal(storableEvent.MetadataJSON, metadata)
	if err != nil {
		return EventMetadata{}, errors.Join(ErrMappingToEventMetadataFailed, err)
	}

	return *metadata, nil
}
