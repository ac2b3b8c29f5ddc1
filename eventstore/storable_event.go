package eventstore

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var (
	ErrEmptyEventType      = errors.New("event type must not be empty")
	ErrEmptyTitle          = errors.New("title must not be empty")
	ErrInvalidPayloadJSON  = errors.New("payload json is not valid")
	ErrInvalidMetadataJSON = errors.New("metadata json is not valid")
)

// StorableEvents is an alias type for a slice of StorableEvent
type StorableEvents = []StorableEvent

// StorableEvent is a DTO (data transfer object) used by the EventStore to append events and query them back.
//
// It is built on scalars so the store stays agnostic of the domain event implementation.
// The Title names the stream the event belongs to.
//
// While its properties are exported, it should only be constructed with the supplied factory methods:
//   - BuildStorableEvent
//   - BuildStorableEventWithEmptyMetadata
type StorableEvent struct {
	EventType    string
	Title        string
	OccurredAt   time.Time
	PayloadJSON  []byte
	MetadataJSON []byte
}

// BuildStorableEvent is a factory method for StorableEvent.
//
// Returns an error if eventType or title are empty or if payloadJSON or metadataJSON are not valid JSON.
func BuildStorableEvent(
	eventType string,
	title string,
	occurredAt time.Time,
	payloadJSON []byte,
	metadataJSON []byte,
) (StorableEvent, error) {

	if eventType == "" {
		return StorableEvent{}, ErrEmptyEventType
	}

	if title == "" {
		return StorableEvent{}, ErrEmptyTitle
	}

	if !jsoniter.ConfigFastest.Valid(payloadJSON) {
		return StorableEvent{}, ErrInvalidPayloadJSON
	}

	if !jsoniter.ConfigFastest.Valid(metadataJSON) {
		return StorableEvent{}, ErrInvalidMetadataJSON
	}

	return StorableEvent{
		EventType:    eventType,
		Title:        title,
		OccurredAt:   occurredAt,
		PayloadJSON:  payloadJSON,
		MetadataJSON: metadataJSON,
	}, nil
}

// BuildStorableEventWithEmptyMetadata is a factory method for StorableEvent with valid empty JSON as MetadataJSON.
func BuildStorableEventWithEmptyMetadata(
	eventType string,
	title string,
	occurredAt time.Time,
	payloadJSON []byte,
) (StorableEvent, error) {

	return BuildStorableEvent(eventType, title, occurredAt, payloadJSON, []byte("{}"))
}
