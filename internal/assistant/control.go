package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"hadassah/internal/ipc"
)

// Control answers one control socket request.
func (s *Session) Control(ctx context.Context, msg ipc.ControlMessage) ipc.ControlReply {
	text, err := s.control(ctx, msg)
	if err != nil {
		return ipc.ControlReply{Error: err.Error()}
	}
	return ipc.ControlReply{OK: true, Text: text}
}

func (s *Session) control(ctx context.Context, msg ipc.ControlMessage) (string, error) {
	switch msg.Cmd {
	case ipc.CmdTrigger:
		_, reply, err := s.Listen(ctx)
		return reply, err
	case ipc.CmdSay:
		return s.Submit(ctx, msg.Text)
	case ipc.CmdStop:
		s.StopSpeaking()
		s.StopListening()
		return "", nil
	case ipc.CmdRepeat:
		return s.Repeat(ctx)
	case ipc.CmdHistory:
		convs, err := s.prefs.Conversations(ctx)
		if err != nil {
			return "", err
		}
		return toJSON(convs)
	case ipc.CmdClearHistory:
		return "", s.prefs.ClearConversations(ctx)
	case ipc.CmdPrefs:
		return toJSON(s.preferences(ctx))
	case ipc.CmdPrefsSet:
		p, err := s.prefs.Patch(ctx, []byte(msg.Text))
		if err != nil {
			return "", err
		}
		return toJSON(p)
	case ipc.CmdCommands:
		var b strings.Builder
		for _, c := range s.Commands() {
			fmt.Fprintf(&b, "%s %-20s %s\n", c.Icon, c.Text, c.Description)
		}
		return b.String(), nil
	}
	return "", fmt.Errorf("unknown command %q", msg.Cmd)
}

func toJSON(v any) (string, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
