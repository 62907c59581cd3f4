package core

import "sync"

const AVG_COUNT uint8 = 30

// Metrics tracks tick timings and the amount of wood work done per tick.
type Metrics struct {
	mu sync.Mutex

	tickAVGCounter uint8
	msTimes        [AVG_COUNT]float64
	msAvg          float64

	ticks             int32
	accumulatedTickMS float64
	tps               float64

	Breaks      uint64
	Repairs     uint64
	DirtyRanges uint64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// Update records the duration of one tick, in seconds.
func (m *Metrics) Update(tickElapsedTime float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tickMS := tickElapsedTime * 1000.0
	m.msTimes[m.tickAVGCounter] = tickMS
	if m.tickAVGCounter == AVG_COUNT-1 {
		sum := 0.0
		for i := uint8(0); i < AVG_COUNT; i++ {
			sum += m.msTimes[i]
		}
		m.msAvg = sum / float64(AVG_COUNT)
	}
	m.tickAVGCounter++
	m.tickAVGCounter %= AVG_COUNT

	m.accumulatedTickMS += tickMS
	m.ticks++
	if m.accumulatedTickMS > 1000 {
		m.tps = float64(m.ticks)
		m.accumulatedTickMS -= 1000
		m.ticks = 0
	}
}

// AddWork accumulates counters reported by a tick.
func (m *Metrics) AddWork(breaks, repairs, dirtyRanges int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Breaks += uint64(breaks)
	m.Repairs += uint64(repairs)
	m.DirtyRanges += uint64(dirtyRanges)
}

// Tick returns the ticks per second and the rolling average tick time in ms.
func (m *Metrics) Tick() (float64, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tps, m.msAvg
}
