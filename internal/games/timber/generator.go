package timber

import "github.com/vovakirdan/timber/internal/config"

// Obstacle is what a trunk segment carries.
type Obstacle int

const (
	ObstacleNone Obstacle = iota
	ObstacleLeft
	ObstacleRight
)

func (o Obstacle) String() string {
	switch o {
	case ObstacleLeft:
		return "left"
	case ObstacleRight:
		return "right"
	default:
		return "none"
	}
}

// Side is where the lumberjack stands.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// Obstacle returns the branch that kills a player standing on this side.
func (s Side) Obstacle() Obstacle {
	if s == SideRight {
		return ObstacleRight
	}
	return ObstacleLeft
}

// opposite returns the branch on the other side of the trunk.
func (o Obstacle) opposite() Obstacle {
	switch o {
	case ObstacleLeft:
		return ObstacleRight
	case ObstacleRight:
		return ObstacleLeft
	default:
		return ObstacleNone
	}
}

// TreeSegment is one visible block of the trunk.
type TreeSegment struct {
	Obstacle Obstacle
}

// Rand is the randomness source. *math/rand.Rand satisfies it, so a
// seeded source gives reproducible trees.
type Rand interface {
	Float64() float64
}

// Generator produces trunk segments.
// It never places two branches on the same side back to back: after a
// branch the next segment is either the opposite branch or a gap, with
// even odds.
type Generator struct {
	rng        Rand
	difficulty *config.DifficultyManager
	safe       int
}

// NewGenerator creates a generator using the obstacle tuning from cfg.
func NewGenerator(rng Rand, cfg config.TimberConfig) *Generator {
	return &Generator{
		rng:        rng,
		difficulty: config.NewDifficultyManager(cfg),
		safe:       cfg.Obstacles.SafeSegments,
	}
}

// ObstacleChance returns the branch probability at a difficulty counter.
func (g *Generator) ObstacleChance(difficulty int) float64 {
	return g.difficulty.ObstacleChance(difficulty)
}

// Next returns the segment to place above history.
func (g *Generator) Next(history []TreeSegment, difficulty int) TreeSegment {
	if g.rng.Float64() >= g.ObstacleChance(difficulty) {
		return TreeSegment{}
	}

	if len(history) == 0 || history[len(history)-1].Obstacle == ObstacleNone {
		if g.rng.Float64() < 0.5 {
			return TreeSegment{Obstacle: ObstacleLeft}
		}
		return TreeSegment{Obstacle: ObstacleRight}
	}

	last := history[len(history)-1].Obstacle
	if g.rng.Float64() < 0.5 {
		return TreeSegment{Obstacle: last.opposite()}
	}
	return TreeSegment{}
}

// Initial builds the trunk for a new game, bottom first.
// The lowest segments are always clear so the first chop is safe.
func (g *Generator) Initial(n int) []TreeSegment {
	segments := make([]TreeSegment, 0, n)
	for i := 0; i < n; i++ {
		if i < g.safe {
			segments = append(segments, TreeSegment{})
			continue
		}
		segments = append(segments, g.Next(segments, 0))
	}
	return segments
}
