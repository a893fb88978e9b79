// Package layout computes 2D positions for an ego-network graph with a
// self-contained force-directed simulation: centering, pairwise charge
// repulsion, and edge springs, cooled by a geometrically decaying alpha.
//
// The simulation advances in discrete ticks driven by a host scheduler and
// is optimized for single-decision ego networks (tens of nodes); the
// all-pairs repulsion loop is O(n²) and computed serially.
package layout

import (
	"math"
	"math/rand"
	"time"

	"github.com/lexsearch/citegraph/network"
)

const (
	// alphaMin is the convergence threshold: once alpha decays below it,
	// no further ticks are scheduled.
	alphaMin = 0.001

	// alphaDecay is the per-tick geometric cooling factor.
	alphaDecay = 0.98

	// centerStrength pulls every node toward the canvas center.
	centerStrength = 0.01

	// velocityDecay is the per-tick exponential velocity damping.
	velocityDecay = 0.6

	// focalDamping additionally damps the focal node's velocity so it
	// stays visually anchored without being frozen.
	focalDamping = 0.3

	// linkRestLength is the spring rest distance between linked nodes.
	linkRestLength = 120.0

	// linkStrength scales the spring force.
	linkStrength = 0.05

	// seedRadiusFactor places non-focal nodes on a circle of this
	// fraction of the smaller canvas dimension.
	seedRadiusFactor = 0.35

	// seedJitter is the per-axis uniform jitter applied to seeded
	// positions so symmetric layouts can break apart.
	seedJitter = 25.0
)

// Config controls canvas geometry and force parameters. Zero values fall
// back to defaults.
type Config struct {
	Width  float64
	Height float64

	// Margin keeps every node at least this far from the canvas edge.
	Margin float64

	// ChargeStrength is the pairwise repulsion charge; negative values
	// repel. Defaults to -300.
	ChargeStrength float64

	// Rand is the jitter source used when seeding positions. Injecting a
	// seeded source makes layouts fully deterministic; when nil a
	// time-seeded source is used.
	Rand *rand.Rand
}

func (c Config) withDefaults() Config {
	if c.Width <= 0 {
		c.Width = 800
	}
	if c.Height <= 0 {
		c.Height = 600
	}
	if c.Margin <= 0 {
		c.Margin = 20
	}
	if c.ChargeStrength == 0 {
		c.ChargeStrength = -300
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c
}

// Position is a node's current canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// body is the per-node simulation state. The tick function is its only
// mutator and never runs concurrently with itself.
type body struct {
	id     string
	x, y   float64
	vx, vy float64
	fx, fy float64 // force accumulator, reset each tick
	focal  bool
}

// Simulation owns all per-node state plus the global alpha for one graph
// view's lifetime. Input changes require a fresh Simulation; there is no
// incremental update path.
type Simulation struct {
	cfg    Config
	bodies []body
	edges  [][2]int // resolved body indices; unknown endpoints dropped
	alpha  float64
}

// New seeds a simulation for the given graph: the focal node at the
// canvas center, all others evenly on a circle around it with a small
// jitter, velocities zero, alpha 1.
func New(g *network.Graph, cfg Config) *Simulation {
	cfg = cfg.withDefaults()
	s := &Simulation{cfg: cfg, alpha: 1.0}

	cx, cy := cfg.Width/2, cfg.Height/2
	radius := seedRadiusFactor * math.Min(cfg.Width, cfg.Height)

	// Count non-focal nodes for even angular spacing.
	outer := 0
	for _, n := range g.Nodes {
		if !n.Focal {
			outer++
		}
	}

	index := make(map[string]int, len(g.Nodes))
	i := 0
	for _, n := range g.Nodes {
		b := body{id: n.ID, focal: n.Focal}
		if n.Focal {
			b.x, b.y = cx, cy
		} else {
			angle := 2 * math.Pi * float64(i) / float64(outer)
			b.x = cx + radius*math.Cos(angle) + jitter(cfg.Rand)
			b.y = cy + radius*math.Sin(angle) + jitter(cfg.Rand)
			i++
		}
		if _, dup := index[n.ID]; dup {
			continue
		}
		index[n.ID] = len(s.bodies)
		s.bodies = append(s.bodies, b)
	}

	for _, e := range g.Edges {
		si, ok1 := index[e.SourceID]
		ti, ok2 := index[e.TargetID]
		if !ok1 || !ok2 || si == ti {
			// Edges referencing unknown nodes are skipped, not fatal.
			continue
		}
		s.edges = append(s.edges, [2]int{si, ti})
	}
	return s
}

// jitter returns a uniform value in [-seedJitter, +seedJitter].
func jitter(r *rand.Rand) float64 {
	return (r.Float64()*2 - 1) * seedJitter
}

// Alpha returns the current simulation temperature.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Converged reports whether alpha has decayed below the stop threshold.
func (s *Simulation) Converged() bool { return s.alpha < alphaMin }

// Positions returns a snapshot of every node's current position keyed by
// node ID. The map is freshly allocated on each call so rendering
// surfaces may hold it across ticks.
func (s *Simulation) Positions() map[string]Position {
	out := make(map[string]Position, len(s.bodies))
	for i := range s.bodies {
		out[s.bodies[i].id] = Position{X: s.bodies[i].x, Y: s.bodies[i].y}
	}
	return out
}

// Tick advances the simulation by one step: accumulate centering,
// repulsion, and spring forces for every node, integrate velocities and
// positions, clamp to the canvas, and decay alpha. It reports whether
// further ticks should be scheduled; once it returns false the layout
// has converged.
//
// With zero or one node there are no meaningful forces; alpha still
// decays so the simulation terminates in bounded ticks regardless.
func (s *Simulation) Tick() bool {
	if s.Converged() {
		return false
	}

	if len(s.bodies) > 1 {
		s.accumulateForces()
		s.integrate()
	}

	s.alpha *= alphaDecay
	return !s.Converged()
}

func (s *Simulation) accumulateForces() {
	cx, cy := s.cfg.Width/2, s.cfg.Height/2

	for i := range s.bodies {
		b := &s.bodies[i]
		// Centering.
		b.fx = (cx - b.x) * centerStrength
		b.fy = (cy - b.y) * centerStrength

		// Pairwise repulsion. Distance is floored at 1 so coincident
		// nodes produce a large but finite push instead of a numeric
		// fault.
		for j := range s.bodies {
			if i == j {
				continue
			}
			o := &s.bodies[j]
			dx, dy := b.x-o.x, b.y-o.y
			dist := math.Hypot(dx, dy)
			if dist < 1 {
				dist = 1
				// Coincident nodes get an arbitrary but stable
				// direction so they separate.
				dx, dy = 1, 0
			}
			mag := -s.cfg.ChargeStrength * s.alpha / (dist * dist)
			b.fx += dx / dist * mag
			b.fy += dy / dist * mag
		}
	}

	// Edge springs pull both endpoints toward the rest distance.
	for _, e := range s.edges {
		a := &s.bodies[e[0]]
		b := &s.bodies[e[1]]
		dx, dy := b.x-a.x, b.y-a.y
		dist := math.Hypot(dx, dy)
		if dist < 1 {
			dist = 1
			dx, dy = 1, 0
		}
		mag := (dist - linkRestLength) * linkStrength * s.alpha
		ux, uy := dx/dist, dy/dist
		a.fx += ux * mag
		a.fy += uy * mag
		b.fx -= ux * mag
		b.fy -= uy * mag
	}
}

func (s *Simulation) integrate() {
	minX, maxX := s.cfg.Margin, s.cfg.Width-s.cfg.Margin
	minY, maxY := s.cfg.Margin, s.cfg.Height-s.cfg.Margin

	for i := range s.bodies {
		b := &s.bodies[i]
		b.vx = b.vx*velocityDecay + b.fx
		b.vy = b.vy*velocityDecay + b.fy
		if b.focal {
			b.vx *= focalDamping
			b.vy *= focalDamping
		}
		b.x += b.vx
		b.y += b.vy
		b.x = clamp(b.x, minX, maxX)
		b.y = clamp(b.y, minY, maxY)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Run ticks the simulation to convergence and returns the final position
// map. Interactive consumers drive ticks through a Runner instead; Run is
// for callers that only need the settled layout.
func Run(g *network.Graph, cfg Config) map[string]Position {
	s := New(g, cfg)
	for s.Tick() {
	}
	return s.Positions()
}
