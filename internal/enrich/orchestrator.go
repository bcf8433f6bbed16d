// Package enrich fetches the latest launched token each tick, enriches it with
// an AI-content score of its website and the health of its social account,
// and hands the assembled report to a renderer.
package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/token-enricher/internal/config"
	"github.com/sells-group/token-enricher/internal/extract"
	"github.com/sells-group/token-enricher/internal/fetcher"
	"github.com/sells-group/token-enricher/internal/links"
	"github.com/sells-group/token-enricher/internal/model"
	"github.com/sells-group/token-enricher/pkg/aidetect"
	"github.com/sells-group/token-enricher/pkg/twitter"
)

var (
	// ErrNoToken means the token source returned nothing usable this tick.
	ErrNoToken = eris.New("enrich: no token data")
	// ErrInvalidLinks means the token's website or twitter URL is malformed.
	ErrInvalidLinks = eris.New("enrich: invalid website or twitter url")
)

// SocialAnalyzer turns a profile URL into a SocialProfile, or nil.
type SocialAnalyzer interface {
	Analyze(ctx context.Context, profileURL string) *model.SocialProfile
}

// Renderer writes a report to an output sink.
type Renderer interface {
	Render(w io.Writer, r *model.Report) error
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Gateway  *fetcher.Gateway
	Pages    TextSource
	Detector aidetect.Client
	Social   SocialAnalyzer
	Renderer Renderer
	Out      io.Writer
	// Now stamps reports; nil uses time.Now.
	Now func() time.Time
}

// Orchestrator runs one fetch-enrich-report cycle per tick.
type Orchestrator struct {
	endpoints config.EndpointsConfig
	timeout   time.Duration
	threshold float64
	deps      Deps
}

// New creates an Orchestrator from explicit collaborators.
func New(cfg *config.Config, deps Deps) *Orchestrator {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Orchestrator{
		endpoints: cfg.Endpoints,
		timeout:   cfg.Timeouts.Fetch(),
		threshold: cfg.Report.AIThreshold,
		deps:      deps,
	}
}

// NewFromConfig wires the production collaborators: a shared rate-limited
// gateway, the page extractor, both RapidAPI clients and the given renderer.
func NewFromConfig(cfg *config.Config, renderer Renderer, out io.Writer) *Orchestrator {
	gw := fetcher.New(fetcher.Options{
		MaxBodyBytes:      cfg.Extract.MaxBodyBytes,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	})
	apiClient := &http.Client{
		Transport: gw.HTTPClient().Transport,
		Timeout:   cfg.Timeouts.API(),
	}

	detector := aidetect.NewClient(cfg.RapidAPI.Key,
		aidetect.WithBaseURL(cfg.Endpoints.AIDetectorURL),
		aidetect.WithHost(cfg.RapidAPI.AIDetectorHost),
		aidetect.WithHTTPClient(apiClient),
	)
	social := twitter.NewClient(cfg.RapidAPI.Key,
		twitter.WithBaseURL(cfg.Endpoints.TwitterURL),
		twitter.WithHost(cfg.RapidAPI.TwitterHost),
		twitter.WithHTTPClient(apiClient),
	)

	return New(cfg, Deps{
		Gateway:  gw,
		Pages:    extract.New(gw, cfg.Timeouts.Page(), cfg.Extract.MaxChars),
		Detector: detector,
		Social:   NewAnalyzer(social, nil),
		Renderer: renderer,
		Out:      out,
	})
}

// RunTick runs one cycle and renders the report. A missing token or invalid
// links end the tick without output. Panics are recovered and logged. The
// only error returned is the context's, once it has been cancelled.
func (o *Orchestrator) RunTick(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("enrich: panic recovered in tick",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			err = ctx.Err()
		}
	}()

	report, err := o.Tick(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		// Tick has already logged the reason.
		return nil
	}

	if err := o.deps.Renderer.Render(o.deps.Out, report); err != nil {
		zap.L().Error("enrich: render report",
			zap.String("tick_id", report.TickID),
			zap.Error(err),
		)
	}
	return nil
}

// Tick fetches and enriches the latest token without rendering it.
func (o *Orchestrator) Tick(ctx context.Context) (*model.Report, error) {
	tickID := uuid.NewString()
	log := zap.L().With(zap.String("tick_id", tickID))

	token := fetcher.GetJSON[model.TokenRecord](ctx, o.deps.Gateway, fetcher.Request{
		URL:     o.endpoints.TokenURL,
		Timeout: o.timeout,
	})
	if token == nil {
		log.Debug("enrich: no token data this tick")
		return nil, ErrNoToken
	}

	log = log.With(zap.String("symbol", token.Symbol), zap.String("mint", token.Mint))

	if !links.Valid(token.Website) || !links.Valid(token.Twitter) {
		log.Warn("enrich: skipping token, invalid website or twitter url",
			zap.String("website", token.Website),
			zap.String("twitter", token.Twitter),
		)
		return nil, ErrInvalidLinks
	}

	report := &model.Report{
		TickID: tickID,
		Token:  *token,
	}

	// Each branch writes a distinct field of report.
	g, gctx := errgroup.WithContext(ctx)
	o.branch(g, log, "ai", func() {
		report.AIScore = ScoreWebsite(gctx, o.deps.Pages, o.deps.Detector, token.Website)
	})
	o.branch(g, log, "social", func() {
		report.Social = o.deps.Social.Analyze(gctx, token.Twitter)
	})
	o.branch(g, log, "sol_price", func() {
		report.SolPrice = fetcher.GetJSON[model.SolPriceQuote](gctx, o.deps.Gateway, fetcher.Request{
			URL:     o.endpoints.SolPriceURL,
			Timeout: o.timeout,
		})
	})
	o.branch(g, log, "trade", func() {
		if !model.ValidMint(token.Mint) {
			log.Debug("enrich: mint is not a base58 address")
		}
		report.Trade = fetcher.GetJSON[model.TradeRecord](gctx, o.deps.Gateway, fetcher.Request{
			URL:     o.endpoints.TradesURL,
			Timeout: o.timeout,
			Params:  map[string]string{"mint": token.Mint},
		})
	})
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "enrich: enrichment branches")
	}

	report.GeneratedAt = o.deps.Now()

	if report.AIGenerated(o.threshold) {
		log.Warn("enrich: website appears to be AI-generated",
			zap.String("website", token.Website),
			zap.Float64("score", *report.AIScore),
		)
	}

	log.Info("enrich: tick complete",
		zap.Bool("ai_score", report.AIScore != nil),
		zap.Bool("social", report.Social != nil),
		zap.Bool("sol_price", report.SolPrice != nil),
		zap.Bool("trade", report.MatchingTrade() != nil),
	)
	return report, nil
}

// branch runs fn on g, turning a panic into a logged absence so one branch
// cannot take down the others.
func (o *Orchestrator) branch(g *errgroup.Group, log *zap.Logger, name string, fn func()) {
	g.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				log.Error("enrich: panic recovered in branch",
					zap.String("branch", name),
					zap.String("panic", fmt.Sprint(r)),
					zap.Stack("stack"),
				)
			}
		}()
		fn()
		return nil
	})
}
