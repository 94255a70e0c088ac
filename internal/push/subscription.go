// Package push binds the backend's server-push channel to the session core.
// It owns the websocket lifecycle for one facility: authenticate at connect
// time, announce the facility scope on every (re)connect, decode typed events
// into session events, and retry a bounded number of times before surfacing a
// disconnected state. Missed windows are not replayed here; callers reconcile
// them with a snapshot refresh after reconnect.
package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/wardview/internal/alert"
	"github.com/linnemanlabs/wardview/internal/session"
	"github.com/linnemanlabs/wardview/internal/vitals"
)

const (
	maxReconnectAttempts = 5
	reconnectDelay       = time.Second
	handshakeTimeout     = 10 * time.Second
)

// Server-to-client event names.
const (
	eventVitalUpdate = "vital-update"
	eventNewAlert    = "new-alert"
	eventAlertUpdate = "alert-update"
)

// Sink receives decoded events in arrival order.
type Sink interface {
	ApplyPush(ctx context.Context, ev session.Event)
}

// Hooks observe connection state changes. All funcs may be nil.
type Hooks struct {
	// OnConnected fires after every successful connect, including reconnects,
	// once the facility scope has been announced. Callers are expected to
	// trigger a snapshot refresh here to reconcile any missed window.
	OnConnected func()

	// OnDisconnected fires once reconnect attempts are exhausted.
	OnDisconnected func()

	// OnDropped fires when an undecodable message is discarded.
	OnDropped func()
}

// envelope is the wire frame for every server-to-client message.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// joinMessage re-arms server-side facility filtering after each connect.
type joinMessage struct {
	Type       string `json:"type"`
	FacilityID string `json:"facilityId"`
}

type vitalUpdatePayload struct {
	ResidentID string               `json:"residentId"`
	Vitals     *vitals.VitalReading `json:"vitals"`
}

// Subscription is a push-channel client scoped to one facility.
type Subscription struct {
	url        string
	token      string
	facilityID string
	sink       Sink
	logger     log.Logger
	hooks      Hooks
	dialer     *websocket.Dialer
	delay      time.Duration

	mu        sync.Mutex
	connected bool
	closed    bool
	done      chan struct{}
}

// New creates a subscription. Start must be called to connect.
func New(wsURL, token, facilityID string, sink Sink, logger log.Logger, hooks Hooks) *Subscription {
	if logger == nil {
		logger = log.Nop()
	}
	return &Subscription{
		url:        wsURL,
		token:      token,
		facilityID: facilityID,
		sink:       sink,
		logger:     logger,
		hooks:      hooks,
		dialer:     &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		delay:      reconnectDelay,
		done:       make(chan struct{}),
	}
}

// Start connects, announces the facility scope, and begins delivering events
// to the sink from a background goroutine. It returns an error only if the
// initial connect fails; later failures go through the reconnect path.
func (s *Subscription) Start(ctx context.Context) error {
	conn, err := s.dial(ctx)
	if err != nil {
		return fmt.Errorf("push connect: %w", err)
	}
	s.setConnected(true)
	if s.hooks.OnConnected != nil {
		s.hooks.OnConnected()
	}

	go s.readLoop(ctx, conn)
	return nil
}

// Connected reports the current channel state. False only after reconnect
// attempts were exhausted or the subscription was closed.
func (s *Subscription) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Close tears the subscription down. Safe to call once.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.connected = false
	close(s.done)
	s.mu.Unlock()
}

func (s *Subscription) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+s.token)

	conn, resp, err := s.dialer.DialContext(ctx, s.url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", s.url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", s.url, err)
	}

	if err := conn.WriteJSON(joinMessage{Type: "join-facility", FacilityID: s.facilityID}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("announce facility: %w", err)
	}

	s.logger.Info(ctx, "push channel connected", "facility_id", s.facilityID)
	return conn, nil
}

func (s *Subscription) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer func() { _ = conn.Close() }()

	for {
		select {
		case <-s.done:
			return
		default:
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if s.isClosed() {
				return
			}
			s.logger.Warn(ctx, "push channel read failed", "error", err)
			next, ok := s.reconnect(ctx)
			if !ok {
				return
			}
			_ = conn.Close()
			conn = next
			continue
		}

		s.dispatch(ctx, data)
	}
}

// reconnect retries the connection a bounded number of times with fixed
// spacing. On success the facility scope has been re-announced; on exhaustion
// the subscription reports disconnected until closed.
func (s *Subscription) reconnect(ctx context.Context) (*websocket.Conn, bool) {
	s.setConnected(false)

	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		select {
		case <-s.done:
			return nil, false
		case <-time.After(s.delay):
		}

		conn, err := s.dial(ctx)
		if err != nil {
			s.logger.Warn(ctx, "push reconnect failed",
				"attempt", attempt,
				"max_attempts", maxReconnectAttempts,
				"error", err,
			)
			continue
		}

		s.setConnected(true)
		if s.hooks.OnConnected != nil {
			s.hooks.OnConnected()
		}
		return conn, true
	}

	s.logger.Error(ctx, fmt.Errorf("gave up after %d attempts", maxReconnectAttempts), "push channel disconnected")
	if s.hooks.OnDisconnected != nil {
		s.hooks.OnDisconnected()
	}
	return nil, false
}

func (s *Subscription) dispatch(ctx context.Context, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.drop(ctx, "", err)
		return
	}

	switch env.Type {
	case eventVitalUpdate:
		var p vitalUpdatePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			s.drop(ctx, env.Type, err)
			return
		}
		s.sink.ApplyPush(ctx, session.VitalUpdateEvent{ResidentID: p.ResidentID, Vitals: p.Vitals})

	case eventNewAlert:
		var al alert.Alert
		if err := json.Unmarshal(env.Data, &al); err != nil {
			s.drop(ctx, env.Type, err)
			return
		}
		s.sink.ApplyPush(ctx, session.NewAlertEvent{Alert: al})

	case eventAlertUpdate:
		var al alert.Alert
		if err := json.Unmarshal(env.Data, &al); err != nil {
			s.drop(ctx, env.Type, err)
			return
		}
		s.sink.ApplyPush(ctx, session.AlertUpdateEvent{Alert: al})

	default:
		// unknown event types are skipped, not errors: the backend may ship
		// new types before this client learns them
		s.logger.Info(ctx, "skipping unknown push event", "type", env.Type)
	}
}

func (s *Subscription) drop(ctx context.Context, kind string, err error) {
	s.logger.Warn(ctx, "dropping undecodable push message", "type", kind, "error", err)
	if s.hooks.OnDropped != nil {
		s.hooks.OnDropped()
	}
}

func (s *Subscription) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}

func (s *Subscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
