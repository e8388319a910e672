package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/glassbox/internal/relay"
	"github.com/dgnsrekt/glassbox/internal/signal"
)

func newRelayServer(t *testing.T) (http.Handler, *relay.Broker) {
	t.Helper()
	b := relay.NewBroker()
	t.Cleanup(b.Close)
	return NewServer(relay.NewRelay(b, "")), b
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestPostSignalBroadcasts(t *testing.T) {
	h, b := newRelayServer(t)
	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	w := serve(h, http.MethodPost, "/signals", `{"type":"price","data":{"symbol":"SOL/USDT","price":150.00}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Success   bool   `json:"success"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Signal price broadcasted", body.Message)
	_, err := time.Parse(signal.ISOFormat, body.Timestamp)
	assert.NoError(t, err)

	select {
	case evt := <-ch:
		assert.Equal(t, "price", evt.Name)
	case <-time.After(time.Second):
		t.Fatal("expected broadcast event")
	}
}

func TestPostSignalMalformedBody(t *testing.T) {
	h, b := newRelayServer(t)

	w := serve(h, http.MethodPost, "/signals", `{"type": "price",`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
	assert.Zero(t, b.Published())
}

func TestPostSignalEmptyBody(t *testing.T) {
	h, b := newRelayServer(t)

	w := serve(h, http.MethodPost, "/signals", "")
	require.Equal(t, http.StatusInternalServerError, w.Code, w.Body.String())

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
	assert.Zero(t, b.Published())
}

func TestPostSignalOversizedBody(t *testing.T) {
	h, b := newRelayServer(t)

	big := `{"type":"log","data":{"message":"` + strings.Repeat("x", maxSignalBodyBytes) + `"}}`
	w := serve(h, http.MethodPost, "/signals", big)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "exceeds")
	assert.Zero(t, b.Published())
}

func TestPostSignalUnknownType(t *testing.T) {
	h, _ := newRelayServer(t)

	w := serve(h, http.MethodPost, "/signals", `{"type":"funding","data":{}}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "unknown signal type")
}

func TestGetSignalsHealthy(t *testing.T) {
	h, _ := newRelayServer(t)

	w := serve(h, http.MethodGet, "/signals", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, serviceName, body["service"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestOptionsSignalsPreflight(t *testing.T) {
	h, _ := newRelayServer(t)

	w := serve(h, http.MethodOptions, "/signals", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, corsAllowHeaders, w.Header().Get("Access-Control-Allow-Headers"))
}

func TestSignalsMethodNotAllowed(t *testing.T) {
	h, _ := newRelayServer(t)

	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		w := serve(h, method, "/signals", "")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		assert.JSONEq(t, `{"error":"Method not allowed"}`, w.Body.String(), method)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"), method)
	}
}

func TestErrorResponsesCarryCORS(t *testing.T) {
	h, _ := newRelayServer(t)

	w := serve(h, http.MethodPost, "/signals", `garbage`)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthReportsBrokerStats(t *testing.T) {
	h, b := newRelayServer(t)
	id, _ := b.Subscribe()
	defer b.Unsubscribe(id)

	serve(h, http.MethodPost, "/signals", `{"type":"log","data":{"message":"hi"}}`)

	w := serve(h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","subscribers":1,"published":1}`, w.Body.String())
}

func TestDocsPage(t *testing.T) {
	h, _ := newRelayServer(t)

	w := serve(h, http.MethodGet, "/docs", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `data-theme="dark"`)
	assert.Contains(t, w.Body.String(), "/signals/stream")
}
