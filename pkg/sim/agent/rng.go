package agent

import (
	"hash/fnv"
	"math"
	"math/rand"
)

// RNG derives independent named random streams from one agent seed.
// Stream identity depends only on the seed and the name, never on the
// order streams are first used, so adding a consumer cannot shift the
// draws of existing ones.
type RNG struct {
	seed    int64
	streams map[string]*rand.Rand
}

func NewRNG(seed int64) *RNG {
	return &RNG{seed: seed, streams: make(map[string]*rand.Rand)}
}

func (r *RNG) Stream(name string) *rand.Rand {
	if s, ok := r.streams[name]; ok {
		return s
	}
	h := fnv.New64a()
	h.Write([]byte(name))
	s := rand.New(rand.NewSource(r.seed ^ int64(h.Sum64())))
	r.streams[name] = s
	return s
}

// LogNormal draws exp(N(mean, sd)).
func LogNormal(rng *rand.Rand, mean, sd float64) float64 {
	return math.Exp(mean + sd*rng.NormFloat64())
}
