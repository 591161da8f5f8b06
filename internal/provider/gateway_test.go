package provider

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubhaus/backoffice/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGatewayClient_SendText(t *testing.T) {
	var got sendTextRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages/text", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewGatewayClient(srv.URL, "secret-token", testLogger())
	err := client.SendText(context.Background(), 42, "hello")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, "hello", got.Text)
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestGatewayClient_SendMediaGroup(t *testing.T) {
	var got sendMediaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages/media-group", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewGatewayClient(srv.URL, "", testLogger())
	items := []domain.PackItem{
		{FileID: "f1", MediaType: domain.MediaPhoto},
		{FileID: "f2", MediaType: domain.MediaVideo},
	}
	require.NoError(t, client.SendMediaGroup(context.Background(), 42, items))
	assert.Len(t, got.Items, 2)
}

func TestGatewayClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewGatewayClient(srv.URL, "", testLogger())
	err := client.SendText(context.Background(), 42, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestGatewayClient_Unreachable(t *testing.T) {
	client := NewGatewayClient("http://127.0.0.1:1", "", testLogger())
	err := client.SendMedia(context.Background(), 42, domain.PackItem{FileID: "f1"})
	require.Error(t, err)
}
