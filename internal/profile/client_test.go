package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/samplecodes/testkata/internal/apperr"
	"github.com/samplecodes/testkata/internal/config"
)

func TestClient_FetchUserProfile(t *testing.T) {
	var gotReq *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":    "user123",
			"name":  "Yamada Taro",
			"email": "yamada@example.com",
		})
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.InfoLevel)
	client := NewClient(config.APIConfig{BaseURL: srv.URL + "/", Timeout: time.Second}, srv.Client(), zap.New(core))

	data, err := client.FetchUserProfile(context.Background(), "user123")
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{
		"id":    "user123",
		"name":  "Yamada Taro",
		"email": "yamada@example.com",
	}, data)

	require.NotNil(t, gotReq)
	assert.Equal(t, http.MethodGet, gotReq.Method)
	assert.Equal(t, "/users/user123", gotReq.URL.Path)
	assert.Equal(t, "application/json", gotReq.Header.Get("Content-Type"))

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "fetching user profile", logs.All()[0].Message)
	assert.Equal(t, "user profile fetched", logs.All()[1].Message)
	assert.Equal(t, "user123", logs.All()[1].ContextMap()["user_id"])
}

func TestClient_FetchUserProfile_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.InfoLevel)
	client := NewClient(config.APIConfig{BaseURL: srv.URL}, srv.Client(), zap.New(core))

	_, err := client.FetchUserProfile(context.Background(), "user999")
	require.Error(t, err)

	assert.Equal(t, "api error: 404", err.Error())
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))

	errorLogs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errorLogs, 1)
	assert.Equal(t, "user profile fetch failed", errorLogs[0].Message)
	assert.Equal(t, "api error: 404", errorLogs[0].ContextMap()["error"])
}

func TestClient_FetchUserProfile_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := NewClient(config.APIConfig{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, srv.Client(), nil)

	start := time.Now()
	_, err := client.FetchUserProfile(context.Background(), "slow")

	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_FetchData_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewClient(config.APIConfig{BaseURL: srv.URL}, nil, nil)

	_, err := client.FetchData(context.Background(), "/users/1")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	client := NewClient(config.APIConfig{BaseURL: "http://example.invalid"}, nil, nil)
	assert.Equal(t, DefaultTimeout, client.timeout)
	assert.Equal(t, http.DefaultClient, client.httpClient)
}
