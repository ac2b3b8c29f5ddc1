package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerLendingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "borrowCopy",
		Method:      http.MethodPost,
		Path:        "/api/v1/titles/{title}/borrow",
		Summary:     "Borrow a copy",
		Description: "Lends one copy to the borrower. A refused borrow is not an HTTP error: borrowed is false.",
		Tags:        []string{"Lending"},
	}, s.handleBorrow)

	huma.Register(s.api, huma.Operation{
		OperationID: "returnCopy",
		Method:      http.MethodPost,
		Path:        "/api/v1/titles/{title}/return",
		Summary:     "Return a copy",
		Description: "Takes back the copy lent to the borrower. A refused return is not an HTTP error: returned is false.",
		Tags:        []string{"Lending"},
	}, s.handleReturn)
}

type LendingInput struct {
	TitlePath
	Body struct {
		BorrowerID string `json:"borrowerId" minLength:"1" doc:"Reader account ID"`
	}
}

type BorrowResponse struct {
	Title           string `json:"title"`
	Borrowed        bool   `json:"borrowed"`
	AvailableCopies int    `json:"availableCopies"`
}

type BorrowOutput struct {
	Body BorrowResponse
}

func (s *Server) handleBorrow(_ context.Context, input *LendingInput) (*BorrowOutput, error) {
	borrowed := s.ledger.Borrow(input.Title, input.Body.BorrowerID)

	return &BorrowOutput{Body: BorrowResponse{
		Title:           input.Title,
		Borrowed:        borrowed,
		AvailableCopies: s.ledger.AvailableCopies(input.Title),
	}}, nil
}

type ReturnResponse struct {
	Title           string `json:"title"`
	Returned        bool   `json:"returned"`
	AvailableCopies int    `json:"availableCopies"`
}

type ReturnOutput struct {
	Body ReturnResponse
}

func (s *Server) handleReturn(_ context.Context, input *LendingInput) (*ReturnOutput, error) {
	returned := s.ledger.ReturnCopy(input.Title, input.Body.BorrowerID)

	return &ReturnOutput{Body: ReturnResponse{
		Title:           input.Title,
		Returned:        returned,
		AvailableCopies: s.ledger.AvailableCopies(input.Title),
	}}, nil
}
