package relay

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/glassbox/internal/signal"
)

func TestWebSocketHandlerStreamsBroadcasts(t *testing.T) {
	b := NewBroker()
	srv := httptest.NewServer(WebSocketHandler(b))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?events=price"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	_, err = b.Publish(signal.Broadcast{Topic: signal.DefaultTopic, Event: signal.KindLog, Payload: map[string]any{"message": "skip"}})
	require.NoError(t, err)
	_, err = b.Publish(priceBroadcast())
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got signal.Broadcast
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, signal.KindPrice, got.Event, "filtered log event must not be delivered")
}

func TestWebSocketHandlerReleasesSubscriptionOnClose(t *testing.T) {
	b := NewBroker()
	srv := httptest.NewServer(WebSocketHandler(b))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return b.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestSSEHandlerStreamsBroadcasts(t *testing.T) {
	b := NewBroker()
	srv := httptest.NewServer(SSEHandler(b))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	_, err = b.Publish(priceBroadcast())
	require.NoError(t, err)

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: price\n", line)

	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "data: {"), "got %q", line)
	assert.Contains(t, line, `"SOL/USDT"`)
}

func TestRelayIngestPublishes(t *testing.T) {
	b := NewBroker()
	r := NewRelay(b, "")
	r.now = func() time.Time { return time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC) }

	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	env, err := r.Ingest(context.Background(), []byte(`{"type":"price","data":{"symbol":"SOL/USDT","price":150.00}}`))
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18T00:00:00.000Z", env.Timestamp)

	evt := <-ch
	var got signal.Broadcast
	require.NoError(t, json.Unmarshal(evt.Data, &got))
	assert.Equal(t, signal.DefaultTopic, got.Topic)
	assert.Equal(t, "2026-10-18T00:00:00.000Z", got.Payload["timestamp"])
	assert.EqualValues(t, 150, got.Payload["price"])
}

func TestRelayIngestRejectsBadBody(t *testing.T) {
	b := NewBroker()
	r := NewRelay(b, "custom")
	_, err := r.Ingest(context.Background(), []byte(`not json`))
	require.Error(t, err)
	assert.Zero(t, b.Published())
	assert.Equal(t, "custom", r.Topic())
}
