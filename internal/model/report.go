package model

import "time"

// SocialProfile summarizes the token's linked social account.
type SocialProfile struct {
	Handle         string `json:"handle"`
	CreationDate   string `json:"creation_date,omitempty"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
	TweetCount     int64  `json:"tweet_count"`
	Location       string `json:"location,omitempty"`
	Verified       bool   `json:"verified"`
	// AccountAgeDays is nil when CreationDate is missing or unparsable.
	AccountAgeDays *int `json:"account_age_days"`
}

// Report is the per-tick aggregate handed to the reporter. Every pointer
// field may be nil; nil means the value could not be obtained this tick.
type Report struct {
	TickID      string         `json:"tick_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Token       TokenRecord    `json:"token"`
	SolPrice    *SolPriceQuote `json:"sol_price"`
	Trade       *TradeRecord   `json:"trade"`
	Social      *SocialProfile `json:"social"`
	AIScore     *float64       `json:"ai_score"`
}

// MatchingTrade returns the trade only when it belongs to the report's token.
// The trade source answers "latest trade" independently of the token source,
// so a mismatched mint means the trade is stale or for another token.
func (r *Report) MatchingTrade() *TradeRecord {
	if r.Trade == nil || r.Trade.Mint != r.Token.Mint {
		return nil
	}
	return r.Trade
}

// AIGenerated reports whether the AI score is present and above threshold.
func (r *Report) AIGenerated(threshold float64) bool {
	return r.AIScore != nil && *r.AIScore > threshold
}
