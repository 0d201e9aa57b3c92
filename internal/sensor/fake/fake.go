// Package fake provides ranging and adc stand-ins with settable readings.
package fake

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

type Ranger struct {
	lock     sync.Mutex
	distance float64
	err      error
	reads    int
}

func NewRanger(distance float64) *Ranger {
	return &Ranger{distance: distance}
}

func (r *Ranger) Init() error {
	log.Println("using fake ultrasonic sensor")
	return nil
}

func (r *Ranger) Stop() error {
	return nil
}

func (r *Ranger) Distance(ctx context.Context) (float64, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.reads++
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	if r.err != nil {
		return 0, r.err
	}
	return r.distance, nil
}

func (r *Ranger) Set(distance float64) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.distance = distance
}

// FailWith makes reads return err until cleared with nil
func (r *Ranger) FailWith(err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.err = err
}

func (r *Ranger) Reads() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.reads
}

type ADC struct {
	lock  sync.Mutex
	volts map[int]float64
	err   error
}

func NewADC() *ADC {
	return &ADC{volts: make(map[int]float64)}
}

func (a *ADC) Init() error {
	log.Println("using fake adc")
	return nil
}

func (a *ADC) Stop() error {
	return nil
}

func (a *ADC) ReadChannel(channel int) (float64, error) {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.err != nil {
		return 0, a.err
	}
	return a.volts[channel], nil
}

func (a *ADC) Set(channel int, volts float64) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.volts[channel] = volts
}

func (a *ADC) FailWith(err error) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.err = err
}
