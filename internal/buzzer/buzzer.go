// Package buzzer plays alert tones and morse messages on the car buzzer.
//
// Patterns are queued and played one at a time by Start, so callers holding
// the rover lock never wait on the sound.
package buzzer

import (
	"context"
	"time"

	"github.com/Speshl/gorrc_rover/internal/config"
	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
)

type Pulse struct {
	On       bool
	Duration time.Duration
}

type Pattern struct {
	Name   string
	Pulses []Pulse
}

func (p Pattern) Duration() time.Duration {
	total := time.Duration(0)
	for i := range p.Pulses {
		total += p.Pulses[i].Duration
	}
	return total
}

type PinIFace interface {
	SetOn(bool) error
}

type Buzzer struct {
	cfg      config.BuzzerConfig
	pin      PinIFace
	clock    clock.Clock
	patterns chan Pattern
}

func NewBuzzer(cfg config.BuzzerConfig, pin PinIFace) *Buzzer {
	queueSize := cfg.QueueSize
	if queueSize < 1 {
		queueSize = config.DefaultBuzzerQueueSize
	}
	return &Buzzer{
		cfg:      cfg,
		pin:      pin,
		clock:    clock.New(),
		patterns: make(chan Pattern, queueSize),
	}
}

func (b *Buzzer) Start(ctx context.Context) error {
	log.Println("starting buzzer")
	defer b.off()

	for {
		select {
		case <-ctx.Done():
			log.Println("buzzer done due to ctx")
			return nil
		case pattern, ok := <-b.patterns:
			if !ok {
				log.Println("buzzer channel closed, stopping")
				return nil
			}
			b.play(ctx, pattern)
		}
	}
}

// Alert sounds the buzzer once for the given duration
func (b *Buzzer) Alert(duration time.Duration) {
	b.enqueue(Pattern{
		Name:   "alert",
		Pulses: []Pulse{{On: true, Duration: duration}},
	})
}

func (b *Buzzer) PlayMorse(message string) {
	pulses := Encode(message)
	if len(pulses) == 0 {
		log.Printf("nothing to play for message %q", message)
		return
	}
	b.enqueue(Pattern{
		Name:   "morse",
		Pulses: pulses,
	})
}

func (b *Buzzer) enqueue(pattern Pattern) {
	select {
	case b.patterns <- pattern:
	default:
		log.Printf("buzzer queue full, dropping %s pattern", pattern.Name)
	}
}

func (b *Buzzer) play(ctx context.Context, pattern Pattern) {
	log.Debugf("start playing %s pattern (%s)", pattern.Name, pattern.Duration())
	defer b.off()

	for _, pulse := range pattern.Pulses {
		err := b.pin.SetOn(pulse.On)
		if err != nil {
			log.Printf("failed setting buzzer - %s", err.Error())
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-b.clock.After(pulse.Duration):
		}
	}
}

func (b *Buzzer) off() {
	err := b.pin.SetOn(false)
	if err != nil {
		log.Printf("failed turning buzzer off - %s", err.Error())
	}
}
