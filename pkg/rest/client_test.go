package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset-console/pkg/auth"
	"asset-console/pkg/notify"
)

func TestBearerAttachedWhenAvailable(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), auth.Static("tok-123"), nil, nil)
	require.NoError(t, c.Call(context.Background(), http.MethodGet, "/assets", nil, nil))
	assert.Equal(t, "Bearer tok-123", got)
}

func TestBearerOmittedWhenEmpty(t *testing.T) {
	var got string
	var requestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		requestID = r.Header.Get("X-Request-Id")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), auth.Static(""), nil, nil)
	require.NoError(t, c.Call(context.Background(), http.MethodGet, "/assets", nil, nil))
	assert.Empty(t, got, "no credential means an unauthenticated call, not an empty Bearer")
	assert.NotEmpty(t, requestID)
}

func TestServerErrorPrefersDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail": "scanner backend unreachable"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), auth.Static(""), nil, nil)
	err := c.Call(context.Background(), http.MethodGet, "/assets", nil, nil)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "scanner backend unreachable", apiErr.Message)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
}

func TestValidationErrorCarriesFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail": {"primary_ip": "not a valid address"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), auth.Static(""), nil, nil)
	err := c.Call(context.Background(), http.MethodPost, "/assets", map[string]string{"primary_ip": "nope"}, nil)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "not a valid address", apiErr.Fields["primary_ip"])
}

func TestTransportFailureNormalizedAndNotified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // gone before the call

	notes := notify.New(time.Minute)
	c := NewClient(srv.URL, nil, auth.Static(""), notes, nil)
	err := c.Call(context.Background(), http.MethodGet, "/assets", nil, nil)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Zero(t, apiErr.Status)

	msg, live := notes.Current()
	require.True(t, live)
	assert.Contains(t, msg, "request failed")
}

func TestQuietFailureSkipsNotification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	notes := notify.New(time.Minute)
	c := NewClient(srv.URL, srv.Client(), auth.Static(""), notes, nil)
	err := c.CallQuiet(context.Background(), http.MethodGet, "/scan-tasks/active", nil, nil)
	require.Error(t, err)
	_, live := notes.Current()
	assert.False(t, live, "quiet calls must not touch the notification slot")
}

func TestNullBodyLeavesOutNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("null"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), auth.Static(""), nil, nil)
	var out *struct{ ID int64 }
	require.NoError(t, c.Call(context.Background(), http.MethodGet, "/scan-tasks/active", nil, &out))
	assert.Nil(t, out)
}

func TestSuccessDecodesEcho(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 7, "name": "srv1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), auth.Static(""), nil, nil)
	var out struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, c.Call(context.Background(), http.MethodPost, "/assets", map[string]string{"name": "ignored"}, &out))
	assert.Equal(t, int64(7), out.ID)
	assert.Equal(t, "srv1", out.Name)
}
