package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerInventoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "addStock",
		Method:      http.MethodPost,
		Path:        "/api/v1/titles/{title}/stock",
		Summary:     "Add stock",
		Description: "Adds copies of a title to the inventory. A negative count is ignored.",
		Tags:        []string{"Inventory"},
	}, s.handleAddStock)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAvailability",
		Method:      http.MethodGet,
		Path:        "/api/v1/titles/{title}/availability",
		Summary:     "Get availability",
		Description: "Returns the available copies and the outstanding borrower of a title",
		Tags:        []string{"Inventory"},
	}, s.handleGetAvailability)
}

type TitlePath struct {
	Title string `path:"title" minLength:"1" doc:"Book title"`
}

type AddStockInput struct {
	TitlePath
	Body struct {
		Count int `json:"count" doc:"Number of copies to add"`
	}
}

type StockResponse struct {
	Title           string `json:"title"`
	AvailableCopies int    `json:"availableCopies"`
}

type StockOutput struct {
	Body StockResponse
}

func (s *Server) handleAddStock(_ context.Context, input *AddStockInput) (*StockOutput, error) {
	s.ledger.AddStock(input.Title, input.Body.Count)

	return &StockOutput{Body: StockResponse{
		Title:           input.Title,
		AvailableCopies: s.ledger.AvailableCopies(input.Title),
	}}, nil
}

type AvailabilityResponse struct {
	Title           string `json:"title"`
	AvailableCopies int    `json:"availableCopies"`
	Lent            bool   `json:"lent"`
	BorrowerID      string `json:"borrowerId,omitempty"`
}

type AvailabilityOutput struct {
	Body AvailabilityResponse
}

func (s *Server) handleGetAvailability(_ context.Context, input *TitlePath) (*AvailabilityOutput, error) {
	borrowerID, lent := s.ledger.BorrowerOf(input.Title)

	return &AvailabilityOutput{Body: AvailabilityResponse{
		Title:           input.Title,
		AvailableCopies: s.ledger.AvailableCopies(input.Title),
		Lent:            lent,
		BorrowerID:      borrowerID,
	}}, nil
}
