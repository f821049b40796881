package analysis

import (
	"context"
	"errors"

	"github.com/tubeharvest/platform/pkg/common/config"
)

// ErrNotImplemented marks the analysis stage as a declared interface
// without logic yet; callers can enqueue process jobs but nothing
// consumes them beyond logging.
var ErrNotImplemented = errors.New("analysis stage not implemented")

// Summary is the shape the summarization stage will eventually return.
type Summary struct {
	VideoID   string   `json:"video_id"`
	Language  string   `json:"language"`
	Headline  string   `json:"headline"`
	Topics    []string `json:"topics"`
	Sentiment string   `json:"sentiment"`
}

// Processor is the downstream summarization/sentiment stage.
type Processor struct {
	apiKey string
	model  string
}

func NewProcessor(cfg *config.Config) *Processor {
	return &Processor{apiKey: cfg.OpenAIAPIKey, model: cfg.OpenAIModel}
}

func (p *Processor) SummarizeVideo(ctx context.Context, videoID, transcript, language string) (*Summary, error) {
	return nil, ErrNotImplemented
}

func (p *Processor) AnalyzeComments(ctx context.Context, comments []map[string]interface{}, language string) (*Summary, error) {
	return nil, ErrNotImplemented
}
