package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/library-lending/lending-ledger/eventstore"
	"github.com/library-lending/lending-ledger/lending/core"
)

var (
	// ErrMappingToStorableEventFailedForDomainEvent is returned when domain event serialization fails.
	ErrMappingToStorableEventFailedForDomainEvent = errors.New("mapping to storable event failed for domain event")

	// ErrMappingToStorableEventFailedForMetadata is returned when metadata serialization fails.
	ErrMappingToStorableEventFailedForMetadata = errors.New("mapping to storable event failed for metadata")
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// StorableEventFrom converts a DomainEvent and EventMetadata to a StorableEvent in the event's title stream.
func StorableEventFrom(event core.DomainEvent, metadata EventMetadata) (eventstore.StorableEvent, error) {
	payloadJSON, err := jsonAPI.Marshal(event)
	if err != nil {
		return eventstore.StorableEvent{}, errors.Join(ErrMappingToStorableEventFailedForDomainEvent, err)
	}

	metadataJSON, err := jsonAPI.Marshal(metadata)
	if err != nil {
		return eventstore.StorableEvent{}, errors.Join(ErrMappingToStorableEventFailedForMetadata, err)
	}

	storableEvent, err := eventstore.BuildStorableEvent(
		event.EventType(),
		event.HasTitle(),
		event.HasOccurredAt(),
		payloadJSON,
		metadataJSON,
	)
	if err != nil {
		return eventstore.StorableEvent{}, errors.Join(ErrMappingToStorableEventFailedForDomainEvent, err)
	}

	return storableEvent, nil
}
