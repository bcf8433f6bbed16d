package fetcher

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DecodeJSONObject decodes a single JSON object from b.
func DecodeJSONObject[T any](b []byte) (*T, error) {
	var obj *T
	if err := json.NewDecoder(bytes.NewReader(b)).Decode(&obj); err != nil {
		return nil, eris.Wrap(err, "json: decode object")
	}
	if obj == nil {
		return nil, eris.New("json: null body")
	}
	return obj, nil
}

// GetJSON fetches r and decodes the body into T. Any failure yields nil and a
// log entry carrying the URL and cause; it never returns an error. Throttling
// (429) is logged at warn, everything else at error.
func GetJSON[T any](ctx context.Context, g *Gateway, r Request) *T {
	resp, err := g.Get(ctx, r)
	if err != nil {
		logFailure(r.URL, err)
		return nil
	}

	obj, err := DecodeJSONObject[T](resp.Body)
	if err != nil {
		logFailure(r.URL, err)
		return nil
	}
	return obj
}

func logFailure(url string, err error) {
	if IsRateLimited(err) {
		zap.L().Warn("fetcher: rate limited", zap.String("url", url), zap.Error(err))
		return
	}
	zap.L().Error("fetcher: error fetching data",
		zap.String("url", url),
		zap.Bool("transient", IsTransient(err)),
		zap.Error(err),
	)
}
