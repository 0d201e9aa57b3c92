// Package fake provides a motor driver that only records what it was asked to do.
// It is used when the rover runs off the vehicle and in tests.
package fake

import (
	"errors"
	"sync"

	"github.com/Speshl/gorrc_rover/internal/vehicle"
	log "github.com/sirupsen/logrus"
)

var ErrNotInitialized = errors.New("fake motor driver not initialized")

type CommandDriver struct {
	lock        sync.Mutex
	initialized bool
	failWith    error
	history     []vehicle.WheelPower
}

func NewCommand() *CommandDriver {
	return &CommandDriver{}
}

func (c *CommandDriver) Init() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	log.Println("using fake motor driver")
	c.initialized = true
	return nil
}

func (c *CommandDriver) Stop() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.initialized = false
	return nil
}

func (c *CommandDriver) SetWheelPower(fl, fr, bl, br int) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if !c.initialized {
		return ErrNotInitialized
	}
	if c.failWith != nil {
		return c.failWith
	}

	c.history = append(c.history, vehicle.WheelPower{
		FrontLeft:  fl,
		FrontRight: fr,
		BackLeft:   bl,
		BackRight:  br,
	})
	return nil
}

// FailWith makes every following SetWheelPower return err, nil clears it
func (c *CommandDriver) FailWith(err error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.failWith = err
}

func (c *CommandDriver) History() []vehicle.WheelPower {
	c.lock.Lock()
	defer c.lock.Unlock()
	history := make([]vehicle.WheelPower, len(c.history))
	copy(history, c.history)
	return history
}

func (c *CommandDriver) Last() (vehicle.WheelPower, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if len(c.history) == 0 {
		return vehicle.WheelPower{}, false
	}
	return c.history[len(c.history)-1], true
}
