// Package report renders an enriched token report as console text.
package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/token-enricher/internal/model"
)

// DefaultAIThreshold is the score above which website content is flagged.
const DefaultAIThreshold = 0.7

const (
	unavailable = "unavailable"
	rule        = "=================================================="
	// Trade SOL amounts arrive in lamports.
	solDecimals = 9
)

// Reporter formats reports. It holds no state beyond its settings.
type Reporter struct {
	threshold float64
	p         *message.Printer
}

// New creates a Reporter flagging AI scores above threshold.
func New(threshold float64) *Reporter {
	return &Reporter{
		threshold: threshold,
		p:         message.NewPrinter(language.English),
	}
}

// Render writes the formatted report to w.
func (rp *Reporter) Render(w io.Writer, r *model.Report) error {
	if _, err := io.WriteString(w, rp.Format(r)); err != nil {
		return eris.Wrap(err, "report: write")
	}
	return nil
}

// Format returns the report as text. Absent values render as "unavailable".
func (rp *Reporter) Format(r *model.Report) string {
	var b strings.Builder
	t := r.Token

	b.WriteString("\n" + rule + "\n")
	b.WriteString("Latest Token Details\n")
	b.WriteString(rule + "\n")

	rp.p.Fprintf(&b, "Name: %s\n", t.Name)
	rp.p.Fprintf(&b, "Symbol: %s\n", t.Symbol)
	rp.p.Fprintf(&b, "Description: %s\n", t.Description)
	rp.p.Fprintf(&b, "Market Cap: %s\n", rp.usd(t.MarketCap))
	rp.p.Fprintf(&b, "Total Supply: %d\n", t.TotalSupply)

	rp.p.Fprintf(&b, "Virtual SOL Reserves: %s\n", raw(t.VirtualSolReserves))
	rp.p.Fprintf(&b, "Virtual Token Reserves: %s\n", raw(t.VirtualTokenReserves))
	if r.SolPrice != nil {
		rp.p.Fprintf(&b, "SOL Price: %s\n", rp.usd(r.SolPrice.SolPrice))
	} else {
		b.WriteString("SOL Price: " + unavailable + "\n")
	}

	rp.p.Fprintf(&b, "Website: %s\n", t.Website)
	rp.p.Fprintf(&b, "Twitter: %s\n", t.Twitter)
	rp.p.Fprintf(&b, "Creator: %s\n", t.Creator)

	rp.writeAI(&b, r)
	rp.writeSocial(&b, r.Social)

	b.WriteString("\nSupply Distribution:\n")
	rp.p.Fprintf(&b, "  Real SOL Reserves: %s\n", raw(t.RealSolReserves))
	rp.p.Fprintf(&b, "  Real Token Reserves: %s\n", raw(t.RealTokenReserves))
	rp.p.Fprintf(&b, "  Total Supply: %d\n", t.TotalSupply)

	rp.writeTrade(&b, r.MatchingTrade())

	return b.String()
}

func (rp *Reporter) writeAI(b *strings.Builder, r *model.Report) {
	if r.AIScore == nil {
		b.WriteString("\nWebsite AI Content Analysis: " + unavailable + "\n")
		return
	}
	b.WriteString("\nWebsite AI Content Analysis:\n")
	rp.p.Fprintf(b, "AI Content Score: %.2f\n", *r.AIScore)
	if r.AIGenerated(rp.threshold) {
		b.WriteString("WARNING: Website content appears to be AI-generated\n")
	}
}

func (rp *Reporter) writeSocial(b *strings.Builder, s *model.SocialProfile) {
	if s == nil {
		b.WriteString("\nTwitter Account Analysis: " + unavailable + "\n")
		return
	}
	b.WriteString("\nTwitter Account Analysis:\n")
	if s.Handle != "" {
		rp.p.Fprintf(b, "  Handle: @%s\n", s.Handle)
	}
	created := s.CreationDate
	if created == "" {
		created = unavailable
	}
	rp.p.Fprintf(b, "  Creation Date: %s\n", created)
	if s.AccountAgeDays != nil {
		rp.p.Fprintf(b, "  Account Age: %d days\n", *s.AccountAgeDays)
	} else {
		b.WriteString("  Account Age: " + unavailable + "\n")
	}
	rp.p.Fprintf(b, "  Followers: %d\n", s.FollowersCount)
	rp.p.Fprintf(b, "  Following: %d\n", s.FollowingCount)
	rp.p.Fprintf(b, "  Total Tweets: %d\n", s.TweetCount)
	if s.Location != "" {
		rp.p.Fprintf(b, "  Location: %s\n", s.Location)
	}
	rp.p.Fprintf(b, "  Verified: %t\n", s.Verified)
}

func (rp *Reporter) writeTrade(b *strings.Builder, tr *model.TradeRecord) {
	if tr == nil {
		b.WriteString("\nNo recent trades available\n")
		return
	}
	b.WriteString("\nLatest Trade Details:\n")
	rp.p.Fprintf(b, "Trade Signature: %s\n", tr.Signature)
	rp.p.Fprintf(b, "SOL Amount: %s SOL\n", decimal.New(int64(tr.SolAmount), -solDecimals).String())
	rp.p.Fprintf(b, "Token Amount: %d\n", tr.TokenAmount)
	rp.p.Fprintf(b, "Is Buy: %t\n", tr.IsBuy)
	rp.p.Fprintf(b, "User: %s\n", tr.User)
}

// usd renders d as "$1,234.57".
func (rp *Reporter) usd(d decimal.Decimal) string {
	return rp.p.Sprintf("$%.2f", d.Round(2).InexactFloat64())
}

// raw keeps reserve figures ungrouped, the way the source reports them.
func raw(n model.Count) string {
	return strconv.FormatInt(int64(n), 10)
}
