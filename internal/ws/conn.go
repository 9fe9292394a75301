package ws

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vladimirvolkov/tinyfootball/internal/middleware"
)

const (
	sendBuffer   = 64
	writeTimeout = 5 * time.Second
)

// Conn is one spectator connection. Outgoing frames are queued and written
// by WriteLoop; a full queue drops frames rather than stalling the game.
type Conn struct {
	ws      *websocket.Conn
	sendCh  chan []byte
	done    chan struct{}
	once    sync.Once
	ID      string
	IP      string
	Codec   Codec
	limiter *middleware.IPRateLimiter
	log     zerolog.Logger
}

func NewConn(ws *websocket.Conn, id, ip string, codec Codec, limiter *middleware.IPRateLimiter, log zerolog.Logger) *Conn {
	return &Conn{
		ws:      ws,
		sendCh:  make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		ID:      id,
		IP:      ip,
		Codec:   codec,
		limiter: limiter,
		log:     log.With().Str("conn", id).Logger(),
	}
}

// Send encodes msg with the connection's codec and queues it.
func (c *Conn) Send(msg Message) {
	data, err := Encode(c.Codec, msg)
	if err != nil {
		c.log.Error().Err(err).Msg("encode error")
		return
	}
	c.SendRaw(data)
}

// SendRaw queues an already encoded frame.
func (c *Conn) SendRaw(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.sendCh <- data:
		return true
	default:
		c.log.Debug().Msg("send buffer full, dropping frame")
		return false
	}
}

func (c *Conn) ReadLoop(ctx context.Context) <-chan Message {
	ch := make(chan Message, sendBuffer)
	go func() {
		defer close(ch)
		for {
			_, data, err := c.ws.Read(ctx)
			if err != nil {
				c.log.Debug().Err(err).Msg("read error")
				c.Close()
				return
			}
			if c.limiter != nil && !c.limiter.MessageAllowed(c.IP) {
				continue // drop silently, keep the connection
			}
			msg, err := Decode(c.Codec, data)
			if err != nil {
				c.log.Debug().Err(err).Msg("decode error")
				continue
			}
			select {
			case ch <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func (c *Conn) WriteLoop(ctx context.Context) {
	for {
		select {
		case data := <-c.sendCh:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.ws.Write(wctx, c.Codec.FrameType(), data)
			cancel()
			if err != nil {
				c.log.Debug().Err(err).Msg("write error")
				c.Close()
				return
			}
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *Conn) Close() {
	c.CloseWith(websocket.StatusNormalClosure, "")
}

// CloseWith closes the connection with an explicit status code.
func (c *Conn) CloseWith(code websocket.StatusCode, reason string) {
	c.once.Do(func() {
		close(c.done)
		c.ws.Close(code, reason)
	})
}

func (c *Conn) Done() <-chan struct{} {
	return c.done
}
