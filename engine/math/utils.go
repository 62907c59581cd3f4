package math

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/rand"
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Random is a seeded generator. Each owner keeps its own so results are
// reproducible for a given seed.
type Random struct {
	r *rand.Rand
}

func NewRandom(seed uint64) *Random {
	return &Random{r: rand.New(rand.NewSource(seed))}
}

// Float returns a value in [0, 1).
func (r *Random) Float() float32 {
	return r.r.Float32()
}

// InRange returns a value in [min, max).
func (r *Random) InRange(min, max float32) float32 {
	return min + r.Float()*(max-min)
}

// Intn returns a value in [0, n). n must be positive.
func (r *Random) Intn(n int) int {
	return r.r.Intn(n)
}
