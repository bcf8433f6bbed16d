package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/token-enricher/internal/poller"
)

type fakeStatus struct {
	state poller.State
	stats poller.Stats
}

func (f fakeStatus) State() poller.State { return f.state }
func (f fakeStatus) Stats() poller.Stats { return f.stats }

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(Handler(fakeStatus{}, []string{"*"}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestStatus(t *testing.T) {
	started := time.Now().Add(-time.Minute)
	src := fakeStatus{
		state: poller.Running,
		stats: poller.Stats{
			Ticks:        7,
			StartedAt:    started,
			LastTickAt:   started.Add(50 * time.Second),
			LastDuration: 1500 * time.Millisecond,
		},
	}
	srv := httptest.NewServer(Handler(src, []string{"*"}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "running", body.State)
	assert.Equal(t, int64(7), body.Ticks)
	assert.Equal(t, "1.5s", body.LastDuration)
	assert.NotEmpty(t, body.Uptime)
	assert.WithinDuration(t, started, body.StartedAt, time.Millisecond)
}

func TestStatus_Stopped(t *testing.T) {
	srv := httptest.NewServer(Handler(fakeStatus{state: poller.Stopped}, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "stopped", body.State)
	assert.Empty(t, body.Uptime)
}

func TestCORS(t *testing.T) {
	srv := httptest.NewServer(Handler(fakeStatus{}, []string{"https://dash.example"}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://dash.example")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "https://dash.example", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Empty(t, resp2.Header.Get("Access-Control-Allow-Origin"))
}

func TestUnknownRoute(t *testing.T) {
	srv := httptest.NewServer(Handler(fakeStatus{}, nil))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/health", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := New(0, fakeStatus{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
