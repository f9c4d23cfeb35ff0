// Package game drives one player's run through the level sequence: it owns
// the current stage, the score, and the level transitions, and it serializes
// ticks against input and snapshots.
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/lawnchairsociety/dragogauntlet/internal/config"
	"github.com/lawnchairsociety/dragogauntlet/internal/gen"
	"github.com/lawnchairsociety/dragogauntlet/internal/level"
	"github.com/lawnchairsociety/dragogauntlet/internal/logger"
	"github.com/lawnchairsociety/dragogauntlet/internal/stage"
)

// ErrNoPlayer is returned when a level has no player spawn.
var ErrNoPlayer = errors.New("level has no player")

// Game is the driver around the current stage. All methods are safe for
// concurrent use.
type Game struct {
	mu sync.Mutex

	cfg   *config.Config
	store level.Store
	gen   *gen.Generator
	subs  *broadcaster

	stage     *stage.Stage
	explored  *stage.Exploration
	index     int
	name      string
	levelTick int64
	ticks     int64
	score     int
	revision  int64

	pending bool
	over    bool
	err     error
}

// New creates a driver. store may be nil, in which case every level is
// generated.
func New(cfg *config.Config, store level.Store, seed int64) *Game {
	return &Game{
		cfg:      cfg,
		store:    store,
		gen:      gen.NewGenerator(cfg.Generator, seed),
		subs:     newBroadcaster(),
		explored: stage.NewExploration(),
	}
}

// Start loads the first level with a fresh player.
func (g *Game) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.score = 0
	g.ticks = 0
	g.over = false
	g.err = nil
	return g.enterLevel(ctx, 0, nil)
}

// enterLevel replaces the stage with level index. Stored campaign levels
// take precedence over generated ones. Must be called with g.mu held.
func (g *Game) enterLevel(ctx context.Context, index int, carry *stage.PlayerState) error {
	name := level.CampaignName(index)
	rng := rand.New(rand.NewSource(g.gen.LevelSeed(index)))
	st := stage.New(g.cfg.Simulation, g.hooks(), rng)

	source := "generated"
	doc, err := g.storedLevel(ctx, name)
	if err != nil {
		return err
	}
	if doc != nil {
		if err := st.LoadDocument(doc, carry); err != nil {
			return fmt.Errorf("level %s: %w", name, err)
		}
		source = "store"
	} else {
		grid, err := g.gen.Level(index)
		if err != nil {
			return fmt.Errorf("generate level %d: %w", index, err)
		}
		if err := st.LoadProc(grid, carry); err != nil {
			return fmt.Errorf("level %s: %w", name, err)
		}
	}
	if st.Player() == nil {
		return fmt.Errorf("%w: %s", ErrNoPlayer, name)
	}

	g.stage = st
	g.index = index
	g.name = name
	g.levelTick = 0
	g.pending = false
	g.revision = st.Revision()
	g.explored.Reset()
	g.explored.Reveal(st.Player().Cell, g.cfg.Simulation.RevealRadius)

	logger.Info("Level started", "level", index, "name", name, "source", source)
	g.subs.send(Event{Type: EventLevel, Level: st.Document(name), Frame: g.snapshot()})
	return nil
}

func (g *Game) storedLevel(ctx context.Context, name string) (*level.Document, error) {
	if g.store == nil {
		return nil, nil
	}
	doc, err := g.store.Load(ctx, name)
	if errors.Is(err, level.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load level %s: %w", name, err)
	}
	return doc, nil
}

// hooks runs inside Stage.Tick, which only happens with g.mu held.
func (g *Game) hooks() stage.Hooks {
	return stage.Hooks{
		OnScore: func(points int) {
			g.score += points
		},
		OnExit: func() {
			g.pending = true
		},
		OnPlayerDeath: func() {
			g.over = true
		},
	}
}

// Step runs one logical tick. It is the scheduler's step function and
// returns false once the game is over or has failed.
func (g *Game) Step(int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stage == nil || g.over || g.err != nil {
		return false
	}

	g.ticks++
	g.levelTick++
	if err := g.stage.Tick(g.levelTick); err != nil {
		g.err = err
		logger.Error("Simulation halted", "level", g.index, "tick", g.levelTick, "error", err)
		return false
	}

	if p := g.stage.Player(); p != nil {
		g.explored.Reveal(p.Cell, g.cfg.Simulation.RevealRadius)
	}

	if g.over {
		logger.Event("Game over", "level", g.index, "score", g.score, "ticks", g.ticks)
		g.subs.send(Event{Type: EventGameOver, Frame: g.snapshot()})
		return false
	}

	if g.pending {
		logger.Event("Level cleared", "level", g.index, "score", g.score, "ticks", g.levelTick)
		carry := g.stage.PlayerState()
		if err := g.enterLevel(context.Background(), g.index+1, carry); err != nil {
			g.err = err
			logger.Error("Level transition failed", "level", g.index+1, "error", err)
			return false
		}
		return true
	}

	if rev := g.stage.Revision(); rev != g.revision {
		g.revision = rev
		g.subs.send(Event{Type: EventTerrain, Level: g.stage.Document(g.name), Frame: g.snapshot()})
	} else if every := int64(g.cfg.Server.BroadcastEvery); every > 0 && g.ticks%every == 0 {
		g.subs.send(Event{Type: EventFrame, Frame: g.snapshot()})
	}
	return true
}

// Input replaces the player's held controls.
func (g *Game) Input(in stage.Input) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stage != nil {
		g.stage.SetInput(in)
	}
}

// Snapshot returns the current view of the game.
func (g *Game) Snapshot() *Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

// LevelDocument exports the current stage.
func (g *Game) LevelDocument() *level.Document {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stage == nil {
		return nil
	}
	return g.stage.Document(g.name)
}

// Err returns the error that halted the simulation, if any.
func (g *Game) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// Over reports whether the player has died.
func (g *Game) Over() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.over
}

// Subscribe registers for game events. The returned cancel function closes
// the channel.
func (g *Game) Subscribe() (<-chan Event, func()) {
	id, ch := g.subs.subscribe()
	return ch, func() { g.subs.unsubscribe(id) }
}

// Subscribers returns the number of live subscriptions.
func (g *Game) Subscribers() int {
	return g.subs.count()
}
