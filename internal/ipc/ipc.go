// Package ipc is the daemon's local control socket: one JSON request and
// one JSON reply per connection over a unix socket.
package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	CmdTrigger      = "trigger"
	CmdSay          = "say"
	CmdStop         = "stop"
	CmdRepeat       = "repeat"
	CmdHistory      = "history"
	CmdClearHistory = "clear-history"
	CmdPrefs        = "prefs"
	CmdPrefsSet     = "prefs-set"
	CmdCommands     = "commands"
)

type ControlMessage struct {
	Cmd  string `json:"cmd"`
	Text string `json:"text,omitempty"`
}

type ControlReply struct {
	OK    bool   `json:"ok"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

type Handler func(ctx context.Context, msg ControlMessage) ControlReply

// DefaultSocketPath prefers $XDG_RUNTIME_DIR and falls back to /tmp.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "hadassah.sock")
	}
	return filepath.Join(os.TempDir(), "hadassah.sock")
}

type Server struct {
	ln      net.Listener
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Listen replaces any stale socket at path and starts serving.
func Listen(path string, handler Handler) (*Server, error) {
	_ = os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{ln: ln, handler: handler, ctx: ctx, cancel: cancel}

	s.wg.Add(1)
	go s.accept()

	log.Debug("Control socket ready", "path", path)
	return s, nil
}

func (s *Server) accept() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Warn("Accept failed", "err", err)
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	var msg ControlMessage
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		log.Debug("Bad control message", "err", err)
		_ = json.NewEncoder(conn).Encode(ControlReply{Error: "malformed request"})
		return
	}

	log.Debug("Control message", "cmd", msg.Cmd)
	reply := s.handler(s.ctx, msg)
	if err := json.NewEncoder(conn).Encode(reply); err != nil {
		log.Debug("Control reply failed", "err", err)
	}
}

// Close stops accepting, cancels in-flight handlers and waits for them.
func (s *Server) Close() error {
	s.cancel()
	err := s.ln.Close()
	s.wg.Wait()
	return err
}

// Send performs one request against the daemon at path.
func Send(ctx context.Context, path string, msg ControlMessage) (ControlReply, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return ControlReply{}, err
	}
	defer conn.Close()

	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	} else {
		_ = conn.SetDeadline(time.Now().Add(2 * time.Minute))
	}

	if err := json.NewEncoder(conn).Encode(msg); err != nil {
		return ControlReply{}, err
	}

	var reply ControlReply
	if err := json.NewDecoder(conn).Decode(&reply); err != nil {
		return ControlReply{}, fmt.Errorf("read reply: %w", err)
	}
	return reply, nil
}
