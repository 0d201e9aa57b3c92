package buzzer

import (
	"fmt"
	"sync"

	"github.com/Speshl/gorrc_rover/internal/gpio"
	log "github.com/sirupsen/logrus"
)

// PiPin drives an active buzzer through a transistor on a gpio pin
type PiPin struct {
	pin *gpio.OutputPin
}

func NewPiPin(number int) (*PiPin, error) {
	err := gpio.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening gpio for buzzer - %w", err)
	}
	log.Printf("buzzer ready on gpio %d", number)
	return &PiPin{pin: gpio.NewOutputPin(number)}, nil
}

func (p *PiPin) SetOn(on bool) error {
	return p.pin.SetOn(on)
}

func (p *PiPin) Close() error {
	p.pin.Low()
	return gpio.Close()
}

// FakePin remembers every state it was set to
type FakePin struct {
	lock   sync.Mutex
	states []bool
}

func (p *FakePin) SetOn(on bool) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.states = append(p.states, on)
	return nil
}

func (p *FakePin) Close() error {
	return nil
}

func (p *FakePin) States() []bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	states := make([]bool, len(p.states))
	copy(states, p.states)
	return states
}
