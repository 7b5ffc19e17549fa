package assistant

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hadassah/internal/ipc"
	"hadassah/internal/prefs"
)

func TestControl(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	voiceOff(t, store)
	l := &fakeListener{text: "hello"}
	s := New(echoInterpreter(), store, WithListener(l))

	reply := s.Control(ctx, ipc.ControlMessage{Cmd: ipc.CmdSay, Text: "ping"})
	assert.Equal(t, ipc.ControlReply{OK: true, Text: "you said ping"}, reply)

	reply = s.Control(ctx, ipc.ControlMessage{Cmd: ipc.CmdTrigger})
	assert.Equal(t, ipc.ControlReply{OK: true, Text: "you said hello"}, reply)

	reply = s.Control(ctx, ipc.ControlMessage{Cmd: ipc.CmdRepeat})
	assert.Equal(t, "you said hello", reply.Text)

	reply = s.Control(ctx, ipc.ControlMessage{Cmd: ipc.CmdHistory})
	require.True(t, reply.OK)
	var convs []prefs.Conversation
	require.NoError(t, json.Unmarshal([]byte(reply.Text), &convs))
	require.Len(t, convs, 2)
	assert.Equal(t, "hello", convs[0].UserMessage)

	reply = s.Control(ctx, ipc.ControlMessage{Cmd: ipc.CmdClearHistory})
	assert.True(t, reply.OK)
	convs, err := store.Conversations(ctx)
	require.NoError(t, err)
	assert.Empty(t, convs)

	reply = s.Control(ctx, ipc.ControlMessage{Cmd: ipc.CmdStop})
	assert.True(t, reply.OK)
	assert.Equal(t, 1, l.stops)

	reply = s.Control(ctx, ipc.ControlMessage{Cmd: ipc.CmdCommands})
	assert.Contains(t, reply.Text, "Open WhatsApp")
}

func TestControlPrefs(t *testing.T) {
	ctx := context.Background()
	s := New(echoInterpreter(), newStore())

	reply := s.Control(ctx, ipc.ControlMessage{Cmd: ipc.CmdPrefsSet, Text: `{"darkMode": true}`})
	require.True(t, reply.OK, reply.Error)

	reply = s.Control(ctx, ipc.ControlMessage{Cmd: ipc.CmdPrefs})
	var p prefs.Preferences
	require.NoError(t, json.Unmarshal([]byte(reply.Text), &p))

	want := prefs.Defaults()
	want.DarkMode = true
	assert.Equal(t, want, p)

	reply = s.Control(ctx, ipc.ControlMessage{Cmd: ipc.CmdPrefsSet, Text: `{not json`})
	assert.False(t, reply.OK)
	assert.NotEmpty(t, reply.Error)
}

func TestControlErrors(t *testing.T) {
	ctx := context.Background()
	s := New(echoInterpreter(), newStore())

	reply := s.Control(ctx, ipc.ControlMessage{Cmd: "dance"})
	assert.False(t, reply.OK)
	assert.Contains(t, reply.Error, "dance")

	reply = s.Control(ctx, ipc.ControlMessage{Cmd: ipc.CmdSay})
	assert.Equal(t, ErrEmptyInput.Error(), reply.Error)

	reply = s.Control(ctx, ipc.ControlMessage{Cmd: ipc.CmdTrigger})
	assert.Equal(t, ErrNoSpeech.Error(), reply.Error)
}
