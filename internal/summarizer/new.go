package summarizer

import (
	"sync"

	"video-extract/internal/logger"
)

type implSummarizer struct {
	mu         sync.Mutex
	apiKeys    []string
	currentKey int
	logger     logger.Logger
	model      string
	useVision  bool
}

// New creates a Summarizer that rotates through the supplied Gemini API keys.
func New(apiKeys []string, model string, useVision bool, log logger.Logger) Summarizer {
	return &implSummarizer{
		apiKeys:   apiKeys,
		model:     model,
		useVision: useVision,
		logger:    log,
	}
}
