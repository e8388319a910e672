// Package netutil binds listeners for the relay and subscriber servers.
package netutil

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
)

// ErrNoAddr is returned when neither the preferred address nor any
// candidate could be bound.
var ErrNoAddr = errors.New("netutil: no available bind address")

// Listen binds preferred, then each candidate in order when autoFallback
// is set. The listener is returned still open so the chosen port cannot
// be taken between the check and the serve.
func Listen(preferred string, candidates []string, autoFallback bool) (net.Listener, error) {
	if preferred != "" {
		ln, err := net.Listen("tcp", preferred)
		if err == nil {
			return ln, nil
		}
		if !autoFallback {
			return nil, fmt.Errorf("netutil: preferred bind address in use: %s: %w", preferred, err)
		}
		slog.Warn("preferred bind address unavailable, trying fallbacks", "addr", preferred, "error", err)
	}

	for _, addr := range candidates {
		if addr == preferred {
			continue
		}
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			return ln, nil
		}
		slog.Debug("bind candidate unavailable", "addr", addr, "error", err)
	}
	return nil, ErrNoAddr
}

// Candidates expands a comma separated port list ("8080,8081") or address
// list into host:port pairs on host.
func Candidates(host, list string) []string {
	var out []string
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.Contains(item, ":") {
			out = append(out, item)
			continue
		}
		out = append(out, net.JoinHostPort(host, item))
	}
	return out
}

// HostOf returns the host part of addr, or addr itself when it has no port.
func HostOf(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
