package wood

import "github.com/spaghettifunk/timber/engine/core"

const (
	DefaultMaxSplinters  uint32  = 32
	DefaultNumJags       uint32  = 8
	DefaultReflexRetries uint32  = 8
	DefaultMaxHealth     float32 = 100
	DefaultSeed          uint64  = 0x5eed
)

// Config sizes the splinter pool and tunes the splinter generator.
type Config struct {
	// MaxSplinters is the number of slots reserved in the mesh. Zero disables splintering.
	MaxSplinters uint32
	// NumJags is the number of points on each splinter ring. Rounded up to a multiple of 4
	// so every loop corner lands on a ring point.
	NumJags uint32
	// ReflexRetries bounds the convexity correction passes per splinter.
	ReflexRetries uint32
	// Seed feeds the jitter generator.
	Seed uint64
}

func DefaultConfig() Config {
	return Config{
		MaxSplinters:  DefaultMaxSplinters,
		NumJags:       DefaultNumJags,
		ReflexRetries: DefaultReflexRetries,
		Seed:          DefaultSeed,
	}
}

func (c Config) normalized() Config {
	if c.NumJags < 4 {
		if c.NumJags != 0 {
			core.LogWarn("NumJags must be at least 4. Defaulting to %d.", DefaultNumJags)
		}
		c.NumJags = DefaultNumJags
	}
	if rem := c.NumJags % 4; rem != 0 {
		c.NumJags += 4 - rem
	}
	if c.ReflexRetries == 0 {
		c.ReflexRetries = DefaultReflexRetries
	}
	return c
}
