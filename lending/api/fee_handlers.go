package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/library-lending/lending-ledger/lending/ledger"
)

func (s *Server) registerFeeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "computeLateFee",
		Method:      http.MethodGet,
		Path:        "/api/v1/late-fee",
		Summary:     "Compute late fee",
		Tags:        []string{"Fees"},
	}, s.handleComputeLateFee)
}

type LateFeeInput struct {
	OverdueDays int  `query:"overdueDays" required:"true" doc:"Days past the due date"`
	Bestseller  bool `query:"bestseller" doc:"The title is a bestseller"`
	Premium     bool `query:"premium" doc:"The reader is a premium member"`
}

type LateFeeResponse struct {
	Fee float64 `json:"fee"`
}

type LateFeeOutput struct {
	Body LateFeeResponse
}

func (s *Server) handleComputeLateFee(_ context.Context, input *LateFeeInput) (*LateFeeOutput, error) {
	fee, err := s.ledger.ComputeLateFee(input.OverdueDays, input.Bestseller, input.Premium)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidArgument) {
			return nil, huma.Error400BadRequest(err.Error())
		}

		return nil, huma.Error500InternalServerError("computing late fee failed", err)
	}

	return &LateFeeOutput{Body: LateFeeResponse{Fee: fee}}, nil
}
