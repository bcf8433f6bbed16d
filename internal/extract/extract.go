// Package extract downloads a web page and reduces it to a bounded
// plain-text excerpt suitable for a content classifier.
package extract

import (
	"bytes"
	"context"
	"io"
	"mime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/sells-group/token-enricher/internal/fetcher"
)

// DefaultMaxChars is the classifier input cap.
const DefaultMaxChars = 5000

// skipElements are subtrees whose text never reaches the reader.
var skipElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
	"iframe":   true,
}

// Extractor turns a website URL into plain text.
type Extractor struct {
	gateway  *fetcher.Gateway
	timeout  time.Duration
	maxChars int
}

// New creates an Extractor. Zero values fall back to 10s and DefaultMaxChars.
func New(g *fetcher.Gateway, timeout time.Duration, maxChars int) *Extractor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Extractor{gateway: g, timeout: timeout, maxChars: maxChars}
}

// Text downloads pageURL and returns its visible text. The second result is
// false when the page could not be fetched or held no text; the two cases
// are logged differently.
func (e *Extractor) Text(ctx context.Context, pageURL string) (string, bool) {
	log := zap.L().With(zap.String("component", "extract"), zap.String("url", pageURL))

	resp, err := e.gateway.Get(ctx, fetcher.Request{URL: pageURL, Timeout: e.timeout})
	if err != nil {
		if fetcher.IsRateLimited(err) {
			log.Warn("extract: rate limited downloading page", zap.Error(err))
			return "", false
		}
		log.Error("extract: failed to download page",
			zap.Bool("transient", fetcher.IsTransient(err)),
			zap.Error(err),
		)
		return "", false
	}

	text, err := TextFromHTML(decodeBody(resp.Body, resp.Header.Get("Content-Type")), e.maxChars)
	if err != nil {
		log.Error("extract: failed to parse page", zap.Error(err))
		return "", false
	}
	if text == "" {
		log.Warn("extract: no meaningful content found")
		return "", false
	}
	if bt := DetectBlock(text); bt != BlockNone {
		log.Warn("extract: page is an anti-bot interstitial", zap.String("block_type", string(bt)))
		return "", false
	}

	log.Debug("extract: page text extracted", zap.Int("chars", utf8.RuneCountInString(text)))
	return text, true
}

// TextFromHTML strips markup from r, collapses whitespace and truncates the
// result to at most maxChars characters.
func TextFromHTML(r io.Reader, maxChars int) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", eris.Wrap(err, "extract: parse html")
	}

	var sb strings.Builder
	collectText(doc, &sb)

	return Truncate(strings.Join(strings.Fields(sb.String()), " "), maxChars), nil
}

// Truncate returns the first maxChars runes of s.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i]
		}
		n++
	}
	return s
}

func collectText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
		return
	case html.ElementNode:
		if skipElements[n.Data] {
			return
		}
	case html.CommentNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

// decodeBody converts body to UTF-8 using the charset named in contentType.
// Unknown or missing charsets pass through unchanged.
func decodeBody(body []byte, contentType string) io.Reader {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return bytes.NewReader(body)
	}
	charset := strings.ToLower(params["charset"])
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return bytes.NewReader(body)
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return bytes.NewReader(body)
	}
	return enc.NewDecoder().Reader(bytes.NewReader(body))
}
