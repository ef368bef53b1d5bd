package pushover

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_PostsForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/1/messages.json", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "tok", r.PostForm.Get("token"))
		assert.Equal(t, "usr", r.PostForm.Get("user"))
		assert.Equal(t, DefaultMessage, r.PostForm.Get("message"))

		json.NewEncoder(w).Encode(map[string]any{"status": 1, "request": "abc-123"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok", "usr")
	d, err := client.Send(context.Background(), DefaultMessage)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, d.StatusCode)
	require.Equal(t, "abc-123", d.Request)
}

func TestSend_ErrorStatusStillDelivered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":0,"errors":["application token is invalid"],"request":"r-1"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bad", "usr")
	d, err := client.Send(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, d.StatusCode)
	require.Equal(t, "r-1", d.Request)
}

func TestSend_NonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok", "usr")
	d, err := client.Send(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, http.StatusBadGateway, d.StatusCode)
	require.Empty(t, d.Request)
}

func TestSend_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(url, "tok", "usr")
	_, err := client.Send(context.Background(), "hello")
	require.Error(t, err)
}

func TestSend_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(srv.URL, "tok", "usr")
	client.httpClient.Timeout = 20 * time.Millisecond

	_, err := client.Send(context.Background(), "hello")
	require.Error(t, err)
}

func TestSend_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(srv.URL, "tok", "usr")
	_, err := client.Send(ctx, "hello")
	require.Error(t, err)
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient("", "tok", "usr")
	require.Equal(t, DefaultBaseURL, client.baseURL)

	client = NewClient("https://example.com/", "tok", "usr")
	require.Equal(t, "https://example.com", client.baseURL)
}
