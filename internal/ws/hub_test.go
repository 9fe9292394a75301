package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimirvolkov/tinyfootball/internal/middleware"
)

type countingObserver struct{ n atomic.Int64 }

func (o *countingObserver) SpectatorsChanged(_ context.Context, delta int64) { o.n.Add(delta) }

func newTestServer(t *testing.T, opts HubOptions) (*Hub, string) {
	t.Helper()
	opts.Log = zerolog.Nop()
	hub := NewHub(opts)
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, ctx context.Context, url string) *websocket.Conn {
	t.Helper()
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.CloseNow() })
	return c
}

func readMessage(t *testing.T, ctx context.Context, c *websocket.Conn, codec Codec) Message {
	t.Helper()
	_, data, err := c.Read(ctx)
	require.NoError(t, err)
	msg, err := Decode(codec, data)
	require.NoError(t, err)
	return msg
}

func TestHubWelcomeAndBroadcast(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	obs := &countingObserver{}
	hub, url := newTestServer(t, HubOptions{Observer: obs})
	c := dial(t, ctx, url)

	welcome := readMessage(t, ctx, c, CodecJSON)
	require.Equal(t, MsgWelcome, welcome.Type)
	var wp WelcomePayload
	require.NoError(t, welcome.Unmarshal(&wp))
	assert.Equal(t, "json", wp.Codec)
	assert.Equal(t, 1, wp.Spectators)
	assert.EqualValues(t, 1, obs.n.Load())

	msg, err := NewMessage(MsgScored, 99, map[string]int{"team": 1})
	require.NoError(t, err)
	hub.Broadcast(msg)

	got := readMessage(t, ctx, c, CodecJSON)
	assert.Equal(t, MsgScored, got.Type)
	assert.EqualValues(t, 99, got.Tick)

	stats := hub.Stats()
	assert.EqualValues(t, 1, stats.Spectators)
	assert.EqualValues(t, 1, stats.TotalConnections)
	assert.EqualValues(t, 1, stats.Broadcasts)
	assert.EqualValues(t, 99, stats.LastTick)
}

func TestHubMsgpackCodecAndPing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, url := newTestServer(t, HubOptions{})
	c := dial(t, ctx, url+"?codec=msgpack")

	typ, data, err := c.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageBinary, typ)
	welcome, err := Decode(CodecMsgpack, data)
	require.NoError(t, err)
	assert.Equal(t, MsgWelcome, welcome.Type)

	ping, err := NewMessage(MsgPing, 0, PingPayload{ClientTime: 555})
	require.NoError(t, err)
	frame, err := Encode(CodecMsgpack, ping)
	require.NoError(t, err)
	require.NoError(t, c.Write(ctx, websocket.MessageBinary, frame))

	pong := readMessage(t, ctx, c, CodecMsgpack)
	require.Equal(t, MsgPong, pong.Type)
	var pp PongPayload
	require.NoError(t, pong.Unmarshal(&pp))
	assert.EqualValues(t, 555, pp.ClientTime)
	assert.NotZero(t, pp.ServerTime)
}

func TestHubRejectsWhenFull(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, url := newTestServer(t, HubOptions{MaxSpectators: 1})
	first := dial(t, ctx, url)
	readMessage(t, ctx, first, CodecJSON)

	second := dial(t, ctx, url)
	_, _, err := second.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusTryAgainLater, websocket.CloseStatus(err))
}

func TestHubEnforcesPerIPLimit(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	limiter := middleware.NewIPRateLimiter(1, 10, time.Second)
	t.Cleanup(limiter.Stop)
	_, url := newTestServer(t, HubOptions{Limiter: limiter})

	first := dial(t, ctx, url)
	readMessage(t, ctx, first, CodecJSON)

	_, resp, err := websocket.Dial(ctx, url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestHubUnregistersOnClose(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	obs := &countingObserver{}
	hub, url := newTestServer(t, HubOptions{Observer: obs})
	c := dial(t, ctx, url)
	readMessage(t, ctx, c, CodecJSON)

	require.NoError(t, c.Close(websocket.StatusNormalClosure, "bye"))
	assert.Eventually(t, func() bool {
		return hub.Stats().Spectators == 0 && obs.n.Load() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBroadcastWithoutSpectators(t *testing.T) {
	hub := NewHub(HubOptions{Log: zerolog.Nop()})
	msg, err := NewMessage(MsgGameState, 3, struct{}{})
	require.NoError(t, err)
	hub.Broadcast(msg)
	assert.EqualValues(t, 3, hub.Stats().LastTick)
}
