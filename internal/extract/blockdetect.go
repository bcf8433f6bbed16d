package extract

import "strings"

// BlockType describes the kind of anti-bot page detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
)

// interstitialMaxChars bounds the visible text of a challenge page. Real
// landing pages that merely mention a marker phrase are longer than this.
const interstitialMaxChars = 600

var interstitialMarkers = []struct {
	phrase string
	kind   BlockType
}{
	{"checking your browser before accessing", BlockCloudflare},
	{"enable javascript and cookies to continue", BlockCloudflare},
	{"please complete the security check to access", BlockCaptcha},
	{"verify you are human by completing the action below", BlockCaptcha},
}

// DetectBlock reports whether the visible text of a page is an anti-bot
// interstitial rather than the site's own content. Scripts and widgets never
// reach the text, so an embedded captcha on a normal page is not a block.
func DetectBlock(text string) BlockType {
	if text == "" || len(text) > interstitialMaxChars {
		return BlockNone
	}
	lower := strings.ToLower(text)
	for _, m := range interstitialMarkers {
		if strings.Contains(lower, m.phrase) {
			return m.kind
		}
	}
	return BlockNone
}
