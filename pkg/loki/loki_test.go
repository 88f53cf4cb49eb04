package loki

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ConfigValidation(t *testing.T) {
	cfg := Config{}
	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)

	cfg.Url = "http://localhost/loki/api/v1/push"
	pusher, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer pusher.Stop()

	assert.Equal(t, 500, pusher.config.BatchSize)
	assert.Equal(t, 5*time.Second, pusher.config.FlushInterval)
	assert.Equal(t, map[string]string{}, pusher.config.Labels)
}

func Test_Push_FlushesOnStop(t *testing.T) {

	received := make(chan pushRequest, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gz, err := gzip.NewReader(r.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(gz)
		require.NoError(t, err)

		var req pushRequest
		require.NoError(t, json.Unmarshal(body, &req))
		received <- req
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	pusher, err := New(context.Background(), Config{
		Url:    server.URL,
		Labels: map[string]string{"app": "test"},
	}, nil)
	require.NoError(t, err)

	pusher.Push(Entry{Level: "error", Message: "boom"})
	pusher.Stop()

	select {
	case req := <-received:
		require.Len(t, req.Streams, 1)
		assert.Equal(t, map[string]string{"app": "test"}, req.Streams[0].Stream)
		require.Len(t, req.Streams[0].Values, 1)
		assert.Contains(t, req.Streams[0].Values[0][1], "boom")
	case <-time.After(2 * time.Second):
		t.Fatal("no push request received")
	}
}
