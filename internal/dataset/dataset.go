package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Checker-Finance/session-client/internal/httpclient"
)

const datasetPath = "/api/dataset"

// Response is the dataset envelope; Data is kept raw for the caller to decode.
type Response struct {
	Data json.RawMessage `json:"data"`
}

// Service fetches the dataset through the shared authenticated executor.
type Service struct {
	exec *httpclient.Executor
}

func NewService(exec *httpclient.Executor) *Service {
	return &Service{exec: exec}
}

// Get fetches GET {base}/api/dataset.
func (s *Service) Get(ctx context.Context) (*Response, error) {
	var resp Response
	if err := s.exec.DoJSON(ctx, http.MethodGet, datasetPath, nil, &resp); err != nil {
		return nil, fmt.Errorf("get dataset: %w", err)
	}
	return &resp, nil
}
