package ai

import (
	"context"

	"goalspace-backend/pkg/config"
	"goalspace-backend/pkg/logger"
	"goalspace-backend/pkg/models"
)

// Generator produces content for one generation request. The live
// implementation dispatches to an external model provider; the mock
// implementation returns canned fixtures. Which one the server uses is
// decided once at startup, so callers never branch on the mode.
type Generator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (string, error)
}

// NewGenerator selects the implementation from configuration.
func NewGenerator(cfg *config.Config, log *logger.Logger) Generator {
	if cfg.AIUseMock {
		log.Info("content generation running in mock mode")
		return NewMockGenerator()
	}
	return NewLiveGenerator(cfg, log)
}
