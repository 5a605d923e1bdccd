package wireclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ForwardRelaysStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write(body)
	}))
	defer server.Close()

	c := New()
	resp, err := c.Forward(context.Background(), server.URL, []byte(`{"node":"n1"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.Status)
	assert.Equal(t, `{"node":"n1"}`, string(resp.Body))
}

func TestClient_GetRelaysBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["cpu-1"]`))
	}))
	defer server.Close()

	c := New()
	resp, err := c.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `["cpu-1"]`, string(resp.Body))
}

func TestClient_DownstreamUnreachableReturnsError(t *testing.T) {
	c := New().WithTimeout(100 * time.Millisecond)
	_, err := c.Post(context.Background(), "http://127.0.0.1:1/stop-all")
	assert.Error(t, err)
}
