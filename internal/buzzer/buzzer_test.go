package buzzer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Speshl/gorrc_rover/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLetter(t *testing.T) {
	pulses := Encode("a")

	expected := []Pulse{
		{On: true, Duration: Dot},
		{On: false, Duration: SymbolGap},
		{On: true, Duration: Dash},
		{On: false, Duration: SymbolGap},
		{On: false, Duration: LetterGap},
	}
	assert.Equal(t, expected, pulses)
}

func TestEncodeWordsAndUnknown(t *testing.T) {
	pulses := Encode("e t!")

	expected := []Pulse{
		{On: true, Duration: Dot},
		{On: false, Duration: SymbolGap},
		{On: false, Duration: LetterGap},
		{On: false, Duration: WordGap},
		{On: true, Duration: Dash},
		{On: false, Duration: SymbolGap},
		{On: false, Duration: LetterGap},
	}
	assert.Equal(t, expected, pulses)
}

func TestEncodeNothingPlayable(t *testing.T) {
	assert.Empty(t, Encode("#$%"))
	assert.Empty(t, Encode(""))
}

func TestPatternDuration(t *testing.T) {
	pattern := Pattern{Pulses: Encode("SOS")}
	// 6 dots, 3 dashes, 9 symbol gaps, 3 letter gaps
	expected := 6*Dot + 3*Dash + 9*SymbolGap + 3*LetterGap
	assert.Equal(t, expected, pattern.Duration())
}

func TestAlertPlays(t *testing.T) {
	pin := &FakePin{}
	b := NewBuzzer(config.BuzzerConfig{QueueSize: 2}, pin)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := b.Start(ctx)
		assert.NoError(t, err)
	}()

	b.Alert(5 * time.Millisecond)

	require.Eventually(t, func() bool {
		states := pin.States()
		return len(states) >= 2 && states[0] && !states[len(states)-1]
	}, time.Second, 5*time.Millisecond)

	cancel()
	wg.Wait()

	states := pin.States()
	assert.False(t, states[len(states)-1])
}

func TestQueueFullDrops(t *testing.T) {
	pin := &FakePin{}
	b := NewBuzzer(config.BuzzerConfig{QueueSize: 1}, pin)

	// nothing is consuming the queue
	b.Alert(time.Millisecond)
	b.Alert(time.Millisecond)
	b.PlayMorse("hi")

	assert.Len(t, b.patterns, 1)
	assert.Empty(t, pin.States())
}

func TestPlayMorseSkipsEmpty(t *testing.T) {
	b := NewBuzzer(config.BuzzerConfig{}, &FakePin{})

	b.PlayMorse("???")
	assert.Len(t, b.patterns, 0)
	assert.Equal(t, config.DefaultBuzzerQueueSize, cap(b.patterns))
}
