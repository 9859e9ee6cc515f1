package sim

import (
	"log"
)

// Freq defines the type of frequency
type Freq float64

// Hz is one tick per second.
const Hz Freq = 1

// Period returns the time between two consecutive ticks
func (f Freq) Period() VTimeInSec {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}

	return VTimeInSec(1.0 / f)
}
