package relay

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

const sseHeartbeat = 20 * time.Second

// eventFilter parses the optional ?events=log,price query parameter.
// nil means accept all.
func eventFilter(r *http.Request) map[string]bool {
	q := r.URL.Query().Get("events")
	if q == "" {
		return nil
	}
	filter := make(map[string]bool)
	for _, e := range strings.Split(q, ",") {
		if e = strings.TrimSpace(e); e != "" {
			filter[e] = true
		}
	}
	return filter
}

// SSEHandler returns an http.HandlerFunc that streams topic events as SSE.
func SSEHandler(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}
		filter := eventFilter(r)

		id, ch := broker.Subscribe()
		defer broker.Unsubscribe(id)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		heartbeat := time.NewTicker(sseHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-heartbeat.C:
				fmt.Fprint(w, ": heartbeat\n\n")
				flusher.Flush()
			case evt, ok := <-ch:
				if !ok {
					return
				}
				if filter != nil && !filter[evt.Name] {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Name, evt.Data)
				flusher.Flush()
			}
		}
	}
}
