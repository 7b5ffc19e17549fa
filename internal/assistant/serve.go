package assistant

import (
	"context"
	"encoding/json"
	"errors"
	log "log/slog"
	"sync"

	"hadassah/internal/bus"
)

type Transport interface {
	Read(ctx context.Context) (*bus.Message, error)
	Write(m *bus.Message) error
}

// ServeBus answers frames addressed to this session until ctx ends or the
// transport closes. Frames are handled concurrently so a stop frame can
// interrupt a running request.
func (s *Session) ServeBus(ctx context.Context, t Transport) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		m, err := t.Read(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, bus.ErrClosed) {
				return nil
			}
			return err
		}
		if m.To != "" && m.To != s.name {
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleFrame(ctx, t, m)
		}()
	}
}

func (s *Session) handleFrame(ctx context.Context, t Transport, m *bus.Message) {
	send := func(kind, content string) {
		if err := t.Write(&bus.Message{From: s.name, To: m.From, Kind: kind, Content: content}); err != nil {
			log.Warn("Bus write failed", "kind", kind, "err", err)
		}
	}

	switch m.Kind {
	case bus.KindUtterance:
		reply, err := s.Submit(ctx, m.Content)
		if err != nil {
			send(bus.KindError, err.Error())
			return
		}
		send(bus.KindReply, reply)

	case bus.KindAudio:
		transcript, reply, err := s.Transcribe(ctx, m.Audio, m.Content)
		if transcript != "" {
			send(bus.KindTranscript, transcript)
		}
		if err != nil {
			send(bus.KindError, err.Error())
			return
		}
		send(bus.KindReply, reply)

	case bus.KindStop:
		s.StopSpeaking()
		s.StopListening()

	case bus.KindRepeat:
		reply, err := s.Repeat(ctx)
		if err != nil {
			send(bus.KindError, err.Error())
			return
		}
		send(bus.KindReply, reply)

	case bus.KindCommands:
		raw, err := json.Marshal(s.Commands())
		if err != nil {
			send(bus.KindError, err.Error())
			return
		}
		send(bus.KindCommands, string(raw))

	default:
		log.Debug("Ignoring bus frame", "kind", m.Kind, "from", m.From)
	}
}
