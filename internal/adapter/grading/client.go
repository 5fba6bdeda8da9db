package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/leitbox/internal/entity"
	"github.com/eslsoft/leitbox/internal/infrastructure/config"
	"github.com/eslsoft/leitbox/internal/usecase"
)

// Client calls an external grading service to judge free-text answers.
// Grading semantics live entirely on the remote side; this client only
// transports responses and verdicts.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *logrus.Logger
}

// NewClient builds a grading client from application config. With no
// grading URL configured the client returns no verdicts, which downstream
// processing treats as every answer being incorrect.
func NewClient(cfg *config.Config, logger *logrus.Logger) usecase.GradingService {
	return &Client{
		baseURL: cfg.Engine.GradingURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

type gradeRequest struct {
	Responses []entity.TypedResponse `json:"responses"`
}

type gradeResponse struct {
	Verdicts []entity.GradingVerdict `json:"verdicts"`
}

func (c *Client) GradeTyped(ctx context.Context, responses []entity.TypedResponse) ([]entity.GradingVerdict, error) {
	if c.baseURL == "" {
		c.logger.Warn("no grading service configured; typed answers will be marked incorrect")
		return nil, nil
	}

	body, err := json.Marshal(gradeRequest{Responses: responses})
	if err != nil {
		return nil, fmt.Errorf("encode grading request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/grade", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build grading request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call grading service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("grading service returned status %d", resp.StatusCode)
	}

	var graded gradeResponse
	if err := json.NewDecoder(resp.Body).Decode(&graded); err != nil {
		return nil, fmt.Errorf("decode grading response: %w", err)
	}
	return graded.Verdicts, nil
}
