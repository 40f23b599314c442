// Package live keeps a query cache in step with the backend by applying the
// invalidation events pushed over /ws.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eudaimonia/cache"
	"eudaimonia/client/apiclient"
	"eudaimonia/ws"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ErrUnauthorized is returned by Run when the server refuses the token.
// Retrying with the same token would not help.
var ErrUnauthorized = errors.New("live: token rejected")

type Listener struct {
	url    string
	tokens apiclient.TokenSource
	cache  *cache.Cache
	log    *zap.Logger
	dialer *websocket.Dialer

	MinBackoff time.Duration
	MaxBackoff time.Duration

	// OnEvent, when set, is called after each event has been applied.
	OnEvent func(ws.Event)
}

// New returns a listener for the backend at baseURL (http or https).
func New(baseURL string, tokens apiclient.TokenSource, c *cache.Cache, log *zap.Logger) (*Listener, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path += "/ws"
	if log == nil {
		log = zap.NewNop()
	}
	if tokens == nil {
		tokens = apiclient.StaticToken("")
	}
	return &Listener{
		url:        u.String(),
		tokens:     tokens,
		cache:      c,
		log:        log,
		dialer:     &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		MinBackoff: time.Second,
		MaxBackoff: 30 * time.Second,
	}, nil
}

// Run applies events until ctx is done, reconnecting with backoff when the
// connection drops. It returns nil on cancellation.
func (l *Listener) Run(ctx context.Context) error {
	backoff := l.MinBackoff
	reconnect := false
	for {
		connected, err := l.session(ctx, reconnect)
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, ErrUnauthorized) {
			return err
		}
		if connected {
			reconnect = true
			backoff = l.MinBackoff
		}
		l.log.Warn("live connection lost", zap.Error(err), zap.Duration("retry_in", backoff))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > l.MaxBackoff {
			backoff = l.MaxBackoff
		}
	}
}

// session runs one connection. connected reports whether the dial
// succeeded.
func (l *Listener) session(ctx context.Context, reconnect bool) (connected bool, err error) {
	u := l.url
	if token := l.tokens.Token(); token != "" {
		u += "?" + url.Values{"token": {token}}.Encode()
	}
	conn, resp, err := l.dialer.DialContext(ctx, u, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return false, ErrUnauthorized
		}
		return false, err
	}
	defer conn.Close()

	// Events sent while we were away are lost.
	if reconnect {
		n := l.cache.InvalidatePrefix(cache.Key{})
		l.log.Debug("live reconnected", zap.Int("invalidated", n))
	}

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		var ev ws.Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			l.log.Debug("ignoring malformed live event", zap.Error(err))
			continue
		}
		l.apply(ev)
	}
}

func (l *Listener) apply(ev ws.Event) {
	if ev.Type != ws.EventInvalidate || len(ev.Key) == 0 {
		return
	}
	n := l.cache.InvalidatePrefix(cache.Key(ev.Key))
	l.log.Debug("live invalidate", zap.Strings("key", ev.Key), zap.Int("entries", n))
	if l.OnEvent != nil {
		l.OnEvent(ev)
	}
}
