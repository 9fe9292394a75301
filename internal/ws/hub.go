package ws

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vladimirvolkov/tinyfootball/internal/middleware"
)

const (
	defaultMaxSpectators = 64
	// Spectators only send pings; anything bigger is abuse.
	readLimit = 1024
)

// Observer is notified when the spectator count changes.
type Observer interface {
	SpectatorsChanged(ctx context.Context, delta int64)
}

// HubStats holds live server metrics.
type HubStats struct {
	Spectators       int64  `json:"spectators"`
	TotalConnections uint64 `json:"totalConnections"`
	Broadcasts       uint64 `json:"broadcasts"`
	LastTick         uint32 `json:"lastTick"`
}

// HubOptions configures a Hub.
type HubOptions struct {
	MaxSpectators  int
	OriginPatterns []string
	Limiter        *middleware.IPRateLimiter
	Observer       Observer
	Log            zerolog.Logger
}

// Hub keeps the set of spectators and fans game frames out to them.
type Hub struct {
	mu    sync.RWMutex
	conns map[*Conn]struct{}

	nextID           atomic.Uint64
	spectators       atomic.Int64
	totalConnections atomic.Uint64
	broadcasts       atomic.Uint64
	lastTick         atomic.Uint32

	maxSpectators  int
	originPatterns []string
	limiter        *middleware.IPRateLimiter
	observer       Observer
	log            zerolog.Logger
}

func NewHub(opts HubOptions) *Hub {
	if opts.MaxSpectators <= 0 {
		opts.MaxSpectators = defaultMaxSpectators
	}
	return &Hub{
		conns:          make(map[*Conn]struct{}),
		maxSpectators:  opts.MaxSpectators,
		originPatterns: opts.OriginPatterns,
		limiter:        opts.Limiter,
		observer:       opts.Observer,
		log:            opts.Log,
	}
}

// Stats returns a snapshot of current server metrics.
func (h *Hub) Stats() HubStats {
	return HubStats{
		Spectators:       h.spectators.Load(),
		TotalConnections: h.totalConnections.Load(),
		Broadcasts:       h.broadcasts.Load(),
		LastTick:         h.lastTick.Load(),
	}
}

// Broadcast encodes msg at most once per codec and queues it on every
// spectator. It never blocks on a slow connection.
func (h *Hub) Broadcast(msg Message) {
	h.broadcasts.Add(1)
	h.lastTick.Store(msg.Tick)

	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.conns) == 0 {
		return
	}

	var encoded [2][]byte
	for c := range h.conns {
		data := encoded[c.Codec]
		if data == nil {
			var err error
			data, err = Encode(c.Codec, msg)
			if err != nil {
				h.log.Error().Err(err).Str("codec", c.Codec.String()).Msg("broadcast encode error")
				continue
			}
			encoded[c.Codec] = data
		}
		c.SendRaw(data)
	}
}

// CloseAll disconnects every spectator.
func (h *Hub) CloseAll(reason string) {
	h.mu.RLock()
	conns := make([]*Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	for _, c := range conns {
		c.CloseWith(websocket.StatusGoingAway, reason)
	}
}

func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ip := middleware.RealIP(r)
	if h.limiter != nil && !h.limiter.ConnectAllowed(ip) {
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}
	release := func() {
		if h.limiter != nil {
			h.limiter.Disconnect(ip)
		}
	}

	acceptOpts := &websocket.AcceptOptions{}
	if len(h.originPatterns) > 0 {
		acceptOpts.OriginPatterns = h.originPatterns
	}

	wsConn, err := websocket.Accept(w, r, acceptOpts)
	if err != nil {
		release()
		h.log.Warn().Err(err).Str("ip", ip).Msg("ws accept error")
		return
	}
	wsConn.SetReadLimit(readLimit)

	h.totalConnections.Add(1)
	id := fmt.Sprintf("spectator-%d", h.nextID.Add(1))
	codec := ParseCodec(r.URL.Query().Get("codec"))
	conn := NewConn(wsConn, id, ip, codec, h.limiter, h.log)

	if !h.register(conn) {
		release()
		h.log.Warn().Str("conn", id).Msg("spectator limit reached, rejecting")
		conn.CloseWith(websocket.StatusTryAgainLater, "server full")
		return
	}
	h.log.Info().Str("conn", id).Str("ip", ip).Str("codec", codec.String()).
		Int64("spectators", h.spectators.Load()).Msg("spectator connected")

	// The connection outlives the request context.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go conn.WriteLoop(ctx)

	welcome, err := NewMessage(MsgWelcome, h.lastTick.Load(), WelcomePayload{
		ID:         id,
		Codec:      codec.String(),
		Spectators: int(h.spectators.Load()),
	})
	if err == nil {
		conn.Send(welcome)
	}

	h.serve(ctx, conn)

	h.unregister(conn)
	release()
	h.log.Info().Str("conn", id).Msg("spectator disconnected")
}

// serve answers pings until the connection closes.
func (h *Hub) serve(ctx context.Context, conn *Conn) {
	msgs := conn.ReadLoop(ctx)
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			h.handleMessage(conn, msg)
		case <-conn.Done():
			return
		}
	}
}

func (h *Hub) handleMessage(conn *Conn, msg Message) {
	switch msg.Type {
	case MsgPing:
		var ping PingPayload
		if err := msg.Unmarshal(&ping); err != nil {
			return
		}
		pong, err := NewMessage(MsgPong, h.lastTick.Load(), PongPayload{
			ClientTime: ping.ClientTime,
			ServerTime: uint64(time.Now().UnixMilli()),
		})
		if err != nil {
			return
		}
		conn.Send(pong)
	default:
		conn.log.Debug().Uint8("type", msg.Type).Msg("ignoring spectator message")
	}
}

func (h *Hub) register(c *Conn) bool {
	h.mu.Lock()
	if len(h.conns) >= h.maxSpectators {
		h.mu.Unlock()
		return false
	}
	h.conns[c] = struct{}{}
	h.mu.Unlock()

	h.spectators.Add(1)
	if h.observer != nil {
		h.observer.SpectatorsChanged(context.Background(), 1)
	}
	return true
}

func (h *Hub) unregister(c *Conn) {
	h.mu.Lock()
	_, ok := h.conns[c]
	delete(h.conns, c)
	h.mu.Unlock()

	if !ok {
		return
	}
	h.spectators.Add(-1)
	if h.observer != nil {
		h.observer.SpectatorsChanged(context.Background(), -1)
	}
}
