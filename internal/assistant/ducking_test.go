package assistant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuckingSpeaker(t *testing.T) {
	sp := &fakeSpeaker{}
	d := &fakeDucker{}
	ds := NewDuckingSpeaker(sp, d, 0.3, 0)
	ds.poll = 5 * time.Millisecond

	require.NoError(t, ds.Speak("hello", Voice{Pitch: 1, Rate: 1}))
	ducks, restores := d.counts()
	assert.Equal(t, 1, ducks)
	assert.Equal(t, 0, restores)
	assert.True(t, ds.Speaking())

	require.NoError(t, ds.Stop())
	ds.Wait()

	_, restores = d.counts()
	assert.Equal(t, 1, restores)
	assert.Equal(t, []string{"hello"}, sp.Said())
}

func TestDuckingSpeakerRestoresOnError(t *testing.T) {
	d := &fakeDucker{}
	ds := NewDuckingSpeaker(&fakeSpeaker{err: errBoom}, d, 0.3, 0)

	assert.ErrorIs(t, ds.Speak("hello", Voice{}), errBoom)
	ducks, restores := d.counts()
	assert.Equal(t, 1, ducks)
	assert.Equal(t, 1, restores)
}
