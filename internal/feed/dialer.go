package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// Conn is an open stream of text frames.
type Conn interface {
	ReadText() ([]byte, error)
	Close() error
}

// Dialer opens a Conn to url.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WSDialer dials WebSocket endpoints.
type WSDialer struct{}

func (WSDialer) Dial(ctx context.Context, url string) (Conn, error) {
	slog.Debug("feed connecting", "url", url)
	conn, _, _, err := ws.Dial(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("feed: dial: %w", err)
	}
	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	conn      net.Conn
	closeOnce sync.Once
}

// ReadText returns the next text frame. Pings are answered inside wsutil.
func (c *wsConn) ReadText() ([]byte, error) {
	return wsutil.ReadServerText(c.conn)
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if werr := wsutil.WriteClientMessage(c.conn, ws.OpClose, ws.NewCloseFrameBody(ws.StatusNormalClosure, "")); werr != nil {
			slog.Debug("feed close frame write failed", "error", werr)
		}
		err = c.conn.Close()
	})
	return err
}
