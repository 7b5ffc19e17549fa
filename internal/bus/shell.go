package bus

import (
	"context"
	"strconv"
	"time"
)

// Shell forwards host actions the daemon cannot perform itself (opening a
// URL in the user's browser, vibrating a handset) to the presentation shell.
type Shell struct {
	Conn *Conn
	From string
	To   string
}

func (s Shell) OpenURL(_ context.Context, url string) error {
	return s.Conn.Write(&Message{From: s.From, To: s.To, Kind: KindOpenURL, Content: url})
}

// Vibrate sends the pulse length in milliseconds.
func (s Shell) Vibrate(_ context.Context, d time.Duration) error {
	return s.Conn.Write(&Message{
		From:    s.From,
		To:      s.To,
		Kind:    KindVibrate,
		Content: strconv.FormatInt(d.Milliseconds(), 10),
	})
}
