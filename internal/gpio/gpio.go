// Package gpio shares the raspberry pi gpio memory mapping between drivers.
// rpio keeps a single global mapping, so the last driver to stop closes it.
package gpio

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/stianeikeland/go-rpio/v4"
)

var (
	lock  sync.Mutex
	users int
)

func Open() error {
	lock.Lock()
	defer lock.Unlock()

	if users == 0 {
		err := rpio.Open()
		if err != nil {
			return fmt.Errorf("failed opening rpio: %w", err)
		}
		log.Println("gpio memory mapped")
	}
	users++
	return nil
}

func Close() error {
	lock.Lock()
	defer lock.Unlock()

	if users == 0 {
		return nil
	}
	users--
	if users > 0 {
		return nil
	}

	err := rpio.Close()
	if err != nil {
		return fmt.Errorf("failed closing rpio: %w", err)
	}
	log.Println("gpio memory unmapped")
	return nil
}

// OutputPin is a gpio pin driven high or low
type OutputPin struct {
	pin rpio.Pin
}

func NewOutputPin(number int) *OutputPin {
	pin := rpio.Pin(number)
	pin.Output()
	pin.Low()
	return &OutputPin{pin: pin}
}

func (p *OutputPin) High() {
	p.pin.High()
}

func (p *OutputPin) Low() {
	p.pin.Low()
}

func (p *OutputPin) SetOn(on bool) error {
	if on {
		p.pin.High()
	} else {
		p.pin.Low()
	}
	return nil
}

// InputPin is a gpio pin that is only read
type InputPin struct {
	pin rpio.Pin
}

func NewInputPin(number int) *InputPin {
	pin := rpio.Pin(number)
	pin.Input()
	return &InputPin{pin: pin}
}

func (p *InputPin) IsHigh() bool {
	return p.pin.Read() == rpio.High
}
