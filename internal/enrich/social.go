package enrich

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/token-enricher/internal/links"
	"github.com/sells-group/token-enricher/internal/model"
	"github.com/sells-group/token-enricher/pkg/twitter"
)

// CreationDateLayout is the format of the account creation timestamp.
const CreationDateLayout = "2006-01-02 15:04:05"

// Analyzer resolves a social profile URL into a SocialProfile.
type Analyzer struct {
	client twitter.Client
	now    func() time.Time
}

// NewAnalyzer creates an Analyzer. A nil now uses time.Now.
func NewAnalyzer(client twitter.Client, now func() time.Time) *Analyzer {
	if now == nil {
		now = time.Now
	}
	return &Analyzer{client: client, now: now}
}

// Analyze looks up the account behind profileURL. It returns nil when the
// lookup fails; an unparsable creation date only drops the account age.
func (a *Analyzer) Analyze(ctx context.Context, profileURL string) *model.SocialProfile {
	handle := links.Handle(profileURL)
	log := zap.L().With(zap.String("component", "twitter"), zap.String("handle", handle))

	acct, err := a.client.Lookup(ctx, handle)
	if err != nil {
		var se *twitter.StatusError
		switch {
		case errors.Is(err, twitter.ErrRateLimited):
			log.Warn("enrich: twitter rate limit exceeded, skipping analysis")
		case errors.As(err, &se):
			log.Error("enrich: twitter api error",
				zap.Int("status", se.StatusCode),
				zap.String("body", se.Body),
			)
		default:
			log.Error("enrich: error analyzing twitter account",
				zap.String("url", profileURL),
				zap.Error(err),
			)
		}
		return nil
	}

	p := &model.SocialProfile{
		Handle:         handle,
		CreationDate:   acct.CreatedAt,
		FollowersCount: acct.FollowersCount.IntPart(),
		FollowingCount: acct.FollowingCount.IntPart(),
		TweetCount:     acct.StatusesCount.IntPart(),
		Location:       acct.Location,
		Verified:       acct.Verified,
	}

	if acct.CreatedAt != "" {
		days, err := AccountAgeDays(acct.CreatedAt, a.now())
		if err != nil {
			log.Warn("enrich: unparsable account creation date",
				zap.String("creation_date", acct.CreatedAt),
				zap.Error(err),
			)
		} else {
			p.AccountAgeDays = &days
		}
	}

	fields := []zap.Field{
		zap.Int64("followers", p.FollowersCount),
		zap.Int64("following", p.FollowingCount),
		zap.Int64("tweets", p.TweetCount),
		zap.Bool("verified", p.Verified),
	}
	if p.AccountAgeDays != nil {
		fields = append(fields, zap.Int("account_age_days", *p.AccountAgeDays))
	}
	log.Info("enrich: twitter account analyzed", fields...)

	return p
}

// AccountAgeDays returns the whole days elapsed between createdAt (UTC,
// CreationDateLayout) and now, rounded down. Dates in the future yield a
// negative age.
func AccountAgeDays(createdAt string, now time.Time) (int, error) {
	created, err := time.ParseInLocation(CreationDateLayout, createdAt, time.UTC)
	if err != nil {
		return 0, eris.Wrap(err, "enrich: parse creation date")
	}
	return int(math.Floor(now.UTC().Sub(created).Hours() / 24)), nil
}
