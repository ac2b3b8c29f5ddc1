package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/library-lending/lending-ledger/lending/shell"
)

func (s *Server) registerJournalRoutes() {
	if s.journal == nil {
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "getTitleJournal",
		Method:      http.MethodGet,
		Path:        "/api/v1/titles/{title}/journal",
		Summary:     "Get title journal",
		Description: "Returns the recorded lending events of a title in the order they happened",
		Tags:        []string{"Journal"},
	}, s.handleGetTitleJournal)
}

type JournalEntry struct {
	EventType  string    `json:"eventType"`
	OccurredAt time.Time `json:"occurredAt"`
	Failed     bool      `json:"failed"`
	Event      any       `json:"event"`
}

type JournalResponse struct {
	Title  string         `json:"title"`
	Events []JournalEntry `json:"events"`
}

type JournalOutput struct {
	Body JournalResponse
}

func (s *Server) handleGetTitleJournal(ctx context.Context, input *TitlePath) (*JournalOutput, error) {
	history, err := shell.TitleHistory(ctx, s.journal, input.Title)
	if err != nil {
		s.logger.Error("reading title journal failed", "title", input.Title, "error", err.Error())
		return nil, huma.Error500InternalServerError("reading title journal failed")
	}

	entries := make([]JournalEntry, 0, len(history))
	for _, event := range history {
		entries = append(entries, JournalEntry{
			EventType:  event.EventType(),
			OccurredAt: event.HasOccurredAt(),
			Failed:     event.IsErrorEvent(),
			Event:      event,
		})
	}

	return &JournalOutput{Body: JournalResponse{Title: input.Title, Events: entries}}, nil
}
