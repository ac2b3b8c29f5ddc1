package eventstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

//nolint:funlen
func Test_BuildStorableEvent_ErrorCases(t *testing.T) {
	validTime := time.Now()
	validPayloadJSON := []byte(`{"title": "Dune"}`)
	validMetadataJSON := []byte(`{"meta": "data"}`)

	tests := []struct {
		name         string
		eventType    string
		title        string
		payloadJSON  []byte
		metadataJSON []byte
		expectedErr  error
	}{
		{
			name:         "empty event type",
			eventType:    "",
			title:        "Dune",
			payloadJSON:  validPayloadJSON,
			metadataJSON: validMetadataJSON,
			expectedErr:  ErrEmptyEventType,
		},
		{
			name:         "empty title",
			eventType:    "BookCopyLentToReader",
			title:        "",
			payloadJSON:  validPayloadJSON,
			metadataJSON: validMetadataJSON,
			expectedErr:  ErrEmptyTitle,
		},
		{
			name:         "invalid payload JSON",
			eventType:    "BookCopyLentToReader",
			title:        "Dune",
			payloadJSON:  []byte(`{"invalid": json}`),
			metadataJSON: validMetadataJSON,
			expectedErr:  ErrInvalidPayloadJSON,
		},
		{
			name:         "invalid metadata JSON",
			eventType:    "BookCopyLentToReader",
			title:        "Dune",
			payloadJSON:  validPayloadJSON,
			metadataJSON: []byte(`{"invalid": json}`),
			expectedErr:  ErrInvalidMetadataJSON,
		},
		{
			name:         "empty payload JSON",
			eventType:    "BookCopyLentToReader",
			title:        "Dune",
			payloadJSON:  []byte(``),
			metadataJSON: validMetadataJSON,
			expectedErr:  ErrInvalidPayloadJSON,
		},
		{
			name:         "empty metadata JSON",
			eventType:    "BookCopyLentToReader",
			title:        "Dune",
			payloadJSON:  validPayloadJSON,
			metadataJSON: []byte(``),
			expectedErr:  ErrInvalidMetadataJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// act
			event, err := BuildStorableEvent(tt.eventType, tt.title, validTime, tt.payloadJSON, tt.metadataJSON)

			// assert
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Equal(t, StorableEvent{}, event)
		})
	}
}

func Test_BuildStorableEvent_Success(t *testing.T) {
	// arrange
	occurredAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	// act
	event, err := BuildStorableEvent("BookStockAdded", "Dune", occurredAt, []byte(`{"count":2}`), []byte(`{}`))

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "BookStockAdded", event.EventType)
	assert.Equal(t, "Dune", event.Title)
	assert.Equal(t, occurredAt, event.OccurredAt)
	assert.JSONEq(t, `{"count":2}`, string(event.PayloadJSON))
}

func Test_BuildStorableEventWithEmptyMetadata(t *testing.T) {
	// act
	event, err := BuildStorableEventWithEmptyMetadata("BookStockAdded", "Dune", time.Now(), []byte(`{"count":2}`))

	// assert
	assert.NoError(t, err)
	assert.Equal(t, []byte("{}"), event.MetadataJSON)
}
