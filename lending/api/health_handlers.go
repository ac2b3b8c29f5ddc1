package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

type HealthResponse struct {
	Status  string `json:"status" doc:"Overall status"`
	Journal string `json:"journal" doc:"enabled or disabled"`
}

type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	journal := "disabled"
	if s.journal != nil {
		journal = "enabled"
	}

	return &HealthOutput{Body: HealthResponse{Status: "healthy", Journal: journal}}, nil
}
