//go:build !integration

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/token-enricher/internal/config"
	"github.com/sells-group/token-enricher/internal/enrich"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return tmpDir
}

func swapConfig(t *testing.T, c *config.Config) {
	t.Helper()
	oldCfg := cfg
	cfg = c
	t.Cleanup(func() { cfg = oldCfg })
}

func TestRootCmd_PersistentPreRunE_WithValidConfig(t *testing.T) {
	tmpDir := chdirTemp(t)
	configContent := `
poll:
  interval_secs: 30
log:
  level: info
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(configContent), 0o644))
	swapConfig(t, nil)

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 30, cfg.Poll.IntervalSecs)
}

func TestRootCmd_PersistentPreRunE_NoConfigFile(t *testing.T) {
	chdirTemp(t)
	swapConfig(t, nil)

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 10, cfg.Poll.IntervalSecs)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestRootCmd_PersistentPreRunE_BadLogLevel(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ENRICHER_LOG_LEVEL", "loud")
	swapConfig(t, nil)

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init logger")
}

func TestRootCmd_PersistentPreRunE_BadConfigFile(t *testing.T) {
	tmpDir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte("poll: [unclosed"), 0o644))
	swapConfig(t, nil)

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestConfigShow_RedactsKey(t *testing.T) {
	chdirTemp(t)
	t.Setenv("RAPIDAPI_KEY", "super-secret")
	swapConfig(t, nil)
	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))

	var out bytes.Buffer
	configShowCmd.SetOut(&out)
	t.Cleanup(func() { configShowCmd.SetOut(nil) })

	require.NoError(t, configShowCmd.RunE(configShowCmd, nil))
	assert.NotContains(t, out.String(), "super-secret")

	var shown config.Config
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &shown))
	assert.Equal(t, "********", shown.RapidAPI.Key)
	assert.Equal(t, "https://frontend-api.pump.fun/coins/latest", shown.Endpoints.TokenURL)
	assert.Equal(t, 10, shown.Poll.IntervalSecs)
}

// onceConfig points every endpoint at one fake server. token receives the
// server's base URL so the token can link to the fake site.
func onceConfig(t *testing.T, token func(base string) string) *config.Config {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/coins/latest", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(token("http://" + r.Host)))
	})
	mux.HandleFunc("/sol-price", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"solPrice": 150}`))
	})
	mux.HandleFunc("/trades/latest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/site", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<p>hello</p>`))
	})
	mux.HandleFunc("/detect", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	mux.HandleFunc("/twitter", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &config.Config{
		Endpoints: config.EndpointsConfig{
			TokenURL:      srv.URL + "/coins/latest",
			SolPriceURL:   srv.URL + "/sol-price",
			TradesURL:     srv.URL + "/trades/latest",
			AIDetectorURL: srv.URL + "/detect",
			TwitterURL:    srv.URL + "/twitter",
		},
		Poll:      config.PollConfig{IntervalSecs: 10},
		Timeouts:  config.TimeoutsConfig{FetchSecs: 5, PageSecs: 5, APISecs: 5},
		Extract:   config.ExtractConfig{MaxChars: 5000},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 100, Burst: 10},
		Report:    config.ReportConfig{AIThreshold: 0.7},
	}
}

func runOnce(t *testing.T) (string, error) {
	t.Helper()
	var out bytes.Buffer
	onceCmd.SetOut(&out)
	onceCmd.SetContext(context.Background())
	t.Cleanup(func() { onceCmd.SetOut(nil) })
	err := onceCmd.RunE(onceCmd, nil)
	return out.String(), err
}

func TestOnceCmd_RendersReport(t *testing.T) {
	swapConfig(t, onceConfig(t, func(base string) string {
		return `{"name":"Moon","symbol":"MOON","website":"` + base + `/site","twitter":"https://x.com/moon"}`
	}))

	out, err := runOnce(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Symbol: MOON")
	assert.Contains(t, out, "SOL Price: $150.00")
	assert.Contains(t, out, "Website AI Content Analysis: unavailable")
	assert.Contains(t, out, "Twitter Account Analysis: unavailable")
	assert.Contains(t, out, "No recent trades available")
}

func TestOnceCmd_InvalidLinks(t *testing.T) {
	swapConfig(t, onceConfig(t, func(string) string {
		return `{"symbol":"BAD","website":"","twitter":""}`
	}))

	out, err := runOnce(t)
	require.Error(t, err)
	assert.ErrorIs(t, err, enrich.ErrInvalidLinks)
	assert.Empty(t, out)
}

func TestOnceCmd_InvalidConfig(t *testing.T) {
	c := onceConfig(t, func(string) string { return `{}` })
	c.Poll.IntervalSecs = 0
	swapConfig(t, c)

	_, err := runOnce(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poll.interval_secs")
}
