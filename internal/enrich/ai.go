package enrich

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sells-group/token-enricher/internal/extract"
	"github.com/sells-group/token-enricher/pkg/aidetect"
)

// TextSource yields the visible text of a web page.
type TextSource interface {
	Text(ctx context.Context, pageURL string) (string, bool)
}

var _ TextSource = (*extract.Extractor)(nil)

// Classify scores text with the AI content detector. It returns nil when the
// text is empty (no call is made) or the detector fails; failures are logged,
// throttling at warn and everything else at error.
func Classify(ctx context.Context, client aidetect.Client, text string) *float64 {
	if text == "" {
		return nil
	}

	log := zap.L().With(zap.String("component", "aidetect"))

	res, err := client.Detect(ctx, text)
	switch {
	case err == nil:
		score := res.ConfidenceScore
		return &score
	case errors.Is(err, aidetect.ErrRateLimited):
		log.Warn("enrich: ai detector rate limit exceeded, skipping analysis")
	case errors.Is(err, aidetect.ErrMissingScore), errors.Is(err, aidetect.ErrScoreOutOfRange):
		log.Error("enrich: ai detector returned an unusable score", zap.Error(err))
	default:
		var se *aidetect.StatusError
		if errors.As(err, &se) {
			log.Error("enrich: ai detector error",
				zap.Int("status", se.StatusCode),
				zap.String("body", se.Body),
			)
			return nil
		}
		log.Error("enrich: ai detector request failed", zap.Error(err))
	}
	return nil
}

// ScoreWebsite extracts the text of websiteURL and classifies it.
func ScoreWebsite(ctx context.Context, src TextSource, client aidetect.Client, websiteURL string) *float64 {
	text, ok := src.Text(ctx, websiteURL)
	if !ok {
		return nil
	}
	return Classify(ctx, client, text)
}
