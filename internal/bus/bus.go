// Package bus connects the assistant to its presentation shell over a
// websocket hub. Frames are JSON objects addressed by shard name.
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
)

const (
	KindUtterance  = "utterance"
	KindAudio      = "audio"
	KindStop       = "stop"
	KindRepeat     = "repeat"
	KindCommands   = "commands"
	KindReply      = "reply"
	KindTranscript = "transcript"
	KindOpenURL    = "open_url"
	KindVibrate    = "vibrate"
	KindError      = "error"
)

var ErrClosed = errors.New("bus closed")

type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
	Audio   []byte `json:"audio,omitempty"`
}

type Conn struct {
	url    string
	reconn time.Duration

	wmu  sync.Mutex
	mu   sync.Mutex
	conn *ws.Conn

	closed bool
}

// Dial connects to the hub. A zero reconn disables reconnecting.
func Dial(ctx context.Context, url string, reconn time.Duration) (*Conn, error) {
	log.Debug("Dialing bus", "url", url)

	conn, _, err := ws.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	log.Info("Connected to bus", "url", url)
	return &Conn{url: url, reconn: reconn, conn: conn}, nil
}

func (c *Conn) current() (*ws.Conn, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn, c.closed
}

// Read returns the next well-formed frame. A dropped connection is redialed
// every reconn until ctx ends. Malformed frames are logged and skipped.
func (c *Conn) Read(ctx context.Context) (*Message, error) {
	for {
		conn, closed := c.current()
		if closed {
			return nil, ErrClosed
		}

		stop := context.AfterFunc(ctx, func() {
			_ = conn.SetReadDeadline(time.Now())
		})
		_, raw, err := conn.ReadMessage()
		stop()

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if _, closed := c.current(); closed {
				return nil, ErrClosed
			}
			if c.reconn <= 0 {
				return nil, fmt.Errorf("bus read: %w", err)
			}
			log.Warn("Bus connection lost", "err", err, "closed", IsClosed(err))
			if err := c.redial(ctx); err != nil {
				return nil, err
			}
			continue
		}

		var m Message
		if err := json.Unmarshal(raw, &m); err != nil {
			log.Warn("Dropping malformed frame", "err", err)
			continue
		}
		log.Debug("Bus read", "from", m.From, "kind", m.Kind)
		return &m, nil
	}
}

func (c *Conn) redial(ctx context.Context) error {
	for {
		conn, _, err := ws.DefaultDialer.DialContext(ctx, c.url, nil)
		if err == nil {
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				conn.Close()
				return ErrClosed
			}
			old := c.conn
			c.conn = conn
			c.mu.Unlock()
			old.Close()

			log.Info("Reconnected to bus", "url", c.url)
			return nil
		}
		log.Debug("Bus redial failed", "err", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.reconn):
		}
	}
}

func (c *Conn) Write(m *Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}

	conn, closed := c.current()
	if closed {
		return ErrClosed
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	log.Debug("Bus write", "to", m.To, "kind", m.Kind)
	return conn.WriteMessage(ws.TextMessage, data)
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	_ = c.conn.WriteControl(ws.CloseMessage,
		ws.FormatCloseMessage(ws.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return c.conn.Close()
}

func IsClosed(err error) bool {
	return ws.IsCloseError(err,
		ws.CloseNormalClosure,
		ws.CloseGoingAway,
		ws.CloseAbnormalClosure)
}
