// Package level draws the maximum layer of newly inserted graph nodes.
package level

import "math"

// Generator assigns layers with an exponentially decaying distribution:
// floor(-ln(u) * mL) with u uniform in (0, 1] and mL = 1/ln(M).
//
// Generator is not safe for concurrent use.
type Generator struct {
	state uint64
	ml    float64
}

// New returns a generator for branching factor m, seeded deterministically.
// m values below 2 are raised to 2 (1/ln(1) is undefined).
func New(m int, seed int64) *Generator {
	if m < 2 {
		m = 2
	}
	g := &Generator{ml: 1 / math.Log(float64(m))}
	g.Seed(seed)
	return g
}

// Seed resets the random stream.
func (g *Generator) Seed(seed int64) {
	g.state = uint64(seed)
}

// ML returns the level normalization factor 1/ln(M).
func (g *Generator) ML() float64 {
	return g.ml
}

// Next returns the level of the next node.
func (g *Generator) Next() int {
	return int(math.Floor(-math.Log(g.uniform()) * g.ml))
}

// uniform returns a value in (0, 1] from an xorshift64* stream.
func (g *Generator) uniform() float64 {
	g.state += 0x9E3779B97F4A7C15
	x := g.state
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	r := float64(x*0x2545F4914F6CDD1D>>11) / float64(1<<53)
	return 1 - r
}
