package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/library-lending/lending-ledger/eventstore/oteladapters"
)

func (s *Server) registerMetricsRoutes() {
	if s.snapshot == nil {
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "getMetrics",
		Method:      http.MethodGet,
		Path:        "/api/v1/metrics",
		Summary:     "Get metrics",
		Tags:        []string{"Observability"},
	}, s.handleGetMetrics)
}

type MetricsOutput struct {
	Body struct {
		Metrics []oteladapters.DataPoint `json:"metrics"`
	}
}

func (s *Server) handleGetMetrics(ctx context.Context, _ *struct{}) (*MetricsOutput, error) {
	points, err := s.snapshot(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("collecting metrics failed", err)
	}

	out := &MetricsOutput{}
	out.Body.Metrics = points

	return out, nil
}
