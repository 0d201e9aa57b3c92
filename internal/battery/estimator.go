// Package battery turns noisy, load dependent battery voltage samples into a
// stable charge percentage.
//
// Samples taken while the vehicle is driving sag under load, so the estimator
// prefers the best resting sample in its window and only falls back to the
// best sample overall when no resting sample is available. The reported
// percentage is sticky: it only moves when the new estimate leaves a
// hysteresis band around the last reported value.
package battery

import "math"

const (
	DefaultWindowSize = 30
	DefaultHysteresis = 2.0
)

type Breakpoint struct {
	Voltage float64
	Percent float64
}

// Breakpoints for a 2S li-ion pack, ordered by descending voltage
var Breakpoints = []Breakpoint{
	{Voltage: 8.4, Percent: 100},
	{Voltage: 8.2, Percent: 90},
	{Voltage: 8.0, Percent: 80},
	{Voltage: 7.8, Percent: 70},
	{Voltage: 7.6, Percent: 60},
	{Voltage: 7.4, Percent: 50},
	{Voltage: 7.2, Percent: 40},
	{Voltage: 7.0, Percent: 30},
	{Voltage: 6.8, Percent: 20},
	{Voltage: 6.4, Percent: 10},
	{Voltage: 6.0, Percent: 0},
}

// FilterBranch reports which samples produced the filtered voltage
type FilterBranch int

const (
	FilterNone FilterBranch = iota
	FilterRest
	FilterAll
)

func (b FilterBranch) String() string {
	switch b {
	case FilterRest:
		return "rest"
	case FilterAll:
		return "all"
	default:
		return "none"
	}
}

type sample struct {
	voltage float64
	moving  bool
}

type Estimator struct {
	windowSize int
	hysteresis float64

	samples []sample

	restVoltage    float64
	hasRestVoltage bool

	lastPercent float64
	hasPercent  bool
}

func NewEstimator(windowSize int, hysteresis float64) *Estimator {
	if windowSize < 1 {
		windowSize = DefaultWindowSize
	}
	if hysteresis < 0 {
		hysteresis = DefaultHysteresis
	}
	return &Estimator{
		windowSize: windowSize,
		hysteresis: hysteresis,
		samples:    make([]sample, 0, windowSize+1),
	}
}

// Update records a raw sample and returns the filtered voltage with the
// sticky percentage.
func (e *Estimator) Update(voltage float64, isMoving bool) (float64, float64) {
	e.addSample(voltage, isMoving)

	filtered, branch := e.FilteredVoltage()
	if branch == FilterNone {
		return voltage, e.lastPercent
	}

	newPercent := CalculatePercentage(filtered)
	if !e.hasPercent || math.Abs(newPercent-e.lastPercent) > e.hysteresis {
		e.lastPercent = newPercent
		e.hasPercent = true
	}
	return filtered, e.lastPercent
}

func (e *Estimator) addSample(voltage float64, isMoving bool) {
	e.samples = append(e.samples, sample{voltage: voltage, moving: isMoving})
	for len(e.samples) > e.windowSize {
		e.samples = e.samples[1:]
	}

	if !isMoving && (!e.hasRestVoltage || voltage > e.restVoltage) {
		e.restVoltage = voltage
		e.hasRestVoltage = true
	}
}

// FilteredVoltage is the highest resting sample in the window. Without any
// resting sample it is the highest sample of all.
func (e *Estimator) FilteredVoltage() (float64, FilterBranch) {
	if len(e.samples) == 0 {
		return 0, FilterNone
	}

	if restMax, ok := maxVoltage(e.samples, true); ok {
		return restMax, FilterRest
	}

	allMax, _ := maxVoltage(e.samples, false)
	return allMax, FilterAll
}

func maxVoltage(samples []sample, restOnly bool) (float64, bool) {
	found := false
	max := 0.0
	for i := range samples {
		if restOnly && samples[i].moving {
			continue
		}
		if !found || samples[i].voltage > max {
			max = samples[i].voltage
			found = true
		}
	}
	return max, found
}

// RestVoltage is the highest voltage ever seen while not moving
func (e *Estimator) RestVoltage() (float64, bool) {
	return e.restVoltage, e.hasRestVoltage
}

func (e *Estimator) Reported() (float64, bool) {
	return e.lastPercent, e.hasPercent
}

func (e *Estimator) Len() int {
	return len(e.samples)
}

// CalculatePercentage linearly interpolates between breakpoints. It is
// non-decreasing in voltage.
func CalculatePercentage(voltage float64) float64 {
	for i, point := range Breakpoints {
		if voltage >= point.Voltage {
			if i == 0 {
				return Breakpoints[0].Percent
			}
			upper := Breakpoints[i-1]
			return point.Percent + (upper.Percent-point.Percent)*(voltage-point.Voltage)/(upper.Voltage-point.Voltage)
		}
	}
	return 0
}
