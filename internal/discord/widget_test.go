package discord

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/immxrtalbeast/lobby_relay/lib/logger/slogdiscard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWidgetFetcher_Disabled(t *testing.T) {
	f := NewWidgetFetcher("", time.Minute, time.Second, slogdiscard.NewDiscardLogger())

	_, err := f.Widget(context.Background())
	assert.ErrorIs(t, err, ErrWidgetDisabled)

	var nilFetcher *WidgetFetcher
	_, err = nilFetcher.Widget(context.Background())
	assert.ErrorIs(t, err, ErrWidgetDisabled)
}

func TestWidgetFetcher_CachesAndFallsBack(t *testing.T) {
	var (
		calls   atomic.Int32
		failing atomic.Bool
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/guilds/123/widget.json", r.URL.Path)
		if failing.Load() {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"123","name":"Lobby","instant_invite":"https://discord.gg/x","presence_count":42}`))
	}))
	defer srv.Close()

	now := time.Unix(1_700_000_000, 0)
	f := NewWidgetFetcher("123", time.Minute, time.Second, slogdiscard.NewDiscardLogger(),
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithClock(func() time.Time { return now }),
	)

	widget, err := f.Widget(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Lobby", widget.Name)
	assert.Equal(t, 42, widget.PresenceCount)

	_, err = f.Widget(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	now = now.Add(2 * time.Minute)
	failing.Store(true)

	widget, err = f.Widget(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Lobby", widget.Name)
	assert.Equal(t, int32(2), calls.Load())
}

func TestWidgetFetcher_ErrorWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewWidgetFetcher("123", time.Minute, time.Second, slogdiscard.NewDiscardLogger(),
		WithBaseURL(srv.URL),
	)

	_, err := f.Widget(context.Background())
	assert.Error(t, err)
}
