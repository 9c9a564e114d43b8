package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/immxrtalbeast/lobby_relay/lib/logger/sl"
)

const defaultBaseURL = "https://discord.com/api"

var ErrWidgetDisabled = errors.New("discord widget is not configured")

// Widget is the subset of the guild widget document shown on the landing page.
type Widget struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	InstantInvite string `json:"instant_invite"`
	PresenceCount int    `json:"presence_count"`
}

// WidgetFetcher fetches a guild widget and caches the last good copy.
type WidgetFetcher struct {
	client   *http.Client
	baseURL  string
	guildID  string
	ttl      time.Duration
	log      *slog.Logger
	now      func() time.Time
	mu       sync.Mutex
	cached   *Widget
	cachedAt time.Time
}

type Option func(*WidgetFetcher)

func WithBaseURL(baseURL string) Option {
	return func(f *WidgetFetcher) {
		f.baseURL = baseURL
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(f *WidgetFetcher) {
		f.client = client
	}
}

func WithClock(now func() time.Time) Option {
	return func(f *WidgetFetcher) {
		f.now = now
	}
}

func NewWidgetFetcher(guildID string, ttl time.Duration, timeout time.Duration, log *slog.Logger, opts ...Option) *WidgetFetcher {
	if log == nil {
		log = slog.Default()
	}
	f := &WidgetFetcher{
		client:  &http.Client{Timeout: timeout},
		baseURL: defaultBaseURL,
		guildID: guildID,
		ttl:     ttl,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Widget returns the cached widget, refreshing it once the TTL has passed.
// A failed refresh falls back to the previous copy when there is one.
func (f *WidgetFetcher) Widget(ctx context.Context) (*Widget, error) {
	const op = "discord.widget.get"

	if f == nil || f.guildID == "" {
		return nil, ErrWidgetDisabled
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cached != nil && f.now().Sub(f.cachedAt) < f.ttl {
		return f.cached, nil
	}

	widget, err := f.fetch(ctx)
	if err != nil {
		f.log.Warn("failed to refresh discord widget", slog.String("op", op), sl.Err(err))
		if f.cached != nil {
			return f.cached, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f.cached = widget
	f.cachedAt = f.now()
	return widget, nil
}

func (f *WidgetFetcher) fetch(ctx context.Context) (*Widget, error) {
	url := fmt.Sprintf("%s/guilds/%s/widget.json", f.baseURL, f.guildID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var widget Widget
	if err := json.NewDecoder(resp.Body).Decode(&widget); err != nil {
		return nil, fmt.Errorf("decode widget: %w", err)
	}
	return &widget, nil
}
