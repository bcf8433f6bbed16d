package enrich

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/token-enricher/internal/model"
	"github.com/sells-group/token-enricher/pkg/aidetect"
	"github.com/sells-group/token-enricher/pkg/twitter"
)

// --- AI Detector Mock ---

type mockDetector struct {
	mock.Mock
}

func (m *mockDetector) Detect(ctx context.Context, text string) (*aidetect.Result, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aidetect.Result), args.Error(1)
}

// --- Twitter Mock ---

type mockTwitter struct {
	mock.Mock
}

func (m *mockTwitter) Lookup(ctx context.Context, screenName string) (*twitter.Account, error) {
	args := m.Called(ctx, screenName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*twitter.Account), args.Error(1)
}

// --- Page Text Stub ---

type stubPages struct {
	text string
	ok   bool
	got  []string
}

func (s *stubPages) Text(_ context.Context, pageURL string) (string, bool) {
	s.got = append(s.got, pageURL)
	return s.text, s.ok
}

// --- Social Analyzer Stub ---

type socialFunc func(ctx context.Context, profileURL string) *model.SocialProfile

func (f socialFunc) Analyze(ctx context.Context, profileURL string) *model.SocialProfile {
	return f(ctx, profileURL)
}
