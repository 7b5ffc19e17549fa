package ipc

import (
	"context"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func socketPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "c.sock")
}

func echo(_ context.Context, msg ControlMessage) ControlReply {
	switch msg.Cmd {
	case CmdSay:
		return ControlReply{OK: true, Text: strings.ToUpper(msg.Text)}
	default:
		return ControlReply{Error: "unknown command " + msg.Cmd}
	}
}

func TestRequestReply(t *testing.T) {
	path := socketPath(t)
	srv, err := Listen(path, echo)
	require.NoError(t, err)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	reply, err := Send(ctx, path, ControlMessage{Cmd: CmdSay, Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, ControlReply{OK: true, Text: "HELLO"}, reply)

	reply, err = Send(ctx, path, ControlMessage{Cmd: "dance"})
	require.NoError(t, err)
	assert.False(t, reply.OK)
	assert.Equal(t, "unknown command dance", reply.Error)
}

func TestMalformedRequest(t *testing.T) {
	path := socketPath(t)
	srv, err := Listen(path, echo)
	require.NoError(t, err)
	defer srv.Close()

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("{oops\n"))
	require.NoError(t, err)

	buf := make([]byte, 256)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := conn.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), "malformed request")
}

func TestStaleSocketReplaced(t *testing.T) {
	path := socketPath(t)
	first, err := Listen(path, echo)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Listen(path, echo)
	require.NoError(t, err)
	defer second.Close()

	_, err = Send(context.Background(), path, ControlMessage{Cmd: CmdSay, Text: "x"})
	assert.NoError(t, err)
}

func TestCloseCancelsHandlers(t *testing.T) {
	path := socketPath(t)
	started := make(chan struct{})
	srv, err := Listen(path, func(ctx context.Context, _ ControlMessage) ControlReply {
		close(started)
		<-ctx.Done()
		return ControlReply{Error: ctx.Err().Error()}
	})
	require.NoError(t, err)

	done := make(chan ControlReply, 1)
	go func() {
		reply, _ := Send(context.Background(), path, ControlMessage{Cmd: CmdTrigger})
		done <- reply
	}()

	<-started
	require.NoError(t, srv.Close())
	assert.Equal(t, context.Canceled.Error(), (<-done).Error)
}

func TestSendNoDaemon(t *testing.T) {
	_, err := Send(context.Background(), socketPath(t), ControlMessage{Cmd: CmdStop})
	assert.Error(t, err)
}
