// Command analyze plays many seeded 2048 games without a UI and prints
// aggregate statistics: win rate, score spread, game length and how often
// each max tile was reached. Game i uses seed+i, so a run is reproducible
// regardless of how many workers play it.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/game2048/game/engine"
	"github.com/wricardo/game2048/internal/render"
)

// maxMovesPerGame guards against a policy that never finishes a game.
const maxMovesPerGame = 100000

// Policy picks the next direction for a state. It must return a direction
// that changes the grid whenever one exists.
type Policy func(state engine.GameState, rng *rand.Rand) engine.Direction

var policies = map[string]Policy{
	"random": randomPolicy,
	"corner": cornerPolicy,
}

// randomPolicy picks uniformly among the directions that move something.
func randomPolicy(state engine.GameState, rng *rand.Rand) engine.Direction {
	var legal []engine.Direction
	for _, d := range engine.Directions {
		if state.CanMove(d) {
			legal = append(legal, d)
		}
	}
	if len(legal) == 0 {
		return engine.Left
	}
	return legal[rng.Intn(len(legal))]
}

// cornerPolicy keeps tiles packed toward the bottom-left corner.
func cornerPolicy(state engine.GameState, _ *rand.Rand) engine.Direction {
	for _, d := range []engine.Direction{engine.Down, engine.Left, engine.Right, engine.Up} {
		if state.CanMove(d) {
			return d
		}
	}
	return engine.Left
}

// GameResult summarizes one finished game.
type GameResult struct {
	Seed    int64
	Outcome engine.Outcome
	Score   int
	Moves   int
	MaxTile int
}

// Stats aggregates a batch of games.
type Stats struct {
	Games      int
	Wins       int
	Losses     int
	Unfinished int
	TotalScore int
	BestScore  int
	BestSeed   int64
	TotalMoves int
	MaxTiles   map[int]int
}

// playGame plays a single game to its end with the given policy.
func playGame(seed int64, policy Policy) GameResult {
	src := engine.NewRandomSource(seed)
	rng := rand.New(rand.NewSource(seed ^ 0x2048))
	state := engine.NewGame(src)

	for i := 0; i < maxMovesPerGame && !state.Terminal; i++ {
		next := engine.ApplyDirection(state, policy(state, rng), src)
		if next == state {
			break
		}
		state = next
	}

	return GameResult{
		Seed:    seed,
		Outcome: state.Outcome,
		Score:   state.Score,
		Moves:   state.Moves,
		MaxTile: engine.MaxTile(state.Grid),
	}
}

// simulate plays games concurrently and returns the results in seed order.
func simulate(ctx context.Context, games int, seed int64, workers int, policy Policy) ([]GameResult, error) {
	results := make([]GameResult, games)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < games; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = playGame(seed+int64(i), policy)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// aggregate folds game results into Stats.
func aggregate(results []GameResult) Stats {
	stats := Stats{MaxTiles: make(map[int]int)}
	for _, r := range results {
		stats.Games++
		switch r.Outcome {
		case engine.OutcomeWon:
			stats.Wins++
		case engine.OutcomeLost:
			stats.Losses++
		default:
			stats.Unfinished++
		}
		stats.TotalScore += r.Score
		stats.TotalMoves += r.Moves
		if stats.Games == 1 || r.Score > stats.BestScore {
			stats.BestScore = r.Score
			stats.BestSeed = r.Seed
		}
		stats.MaxTiles[r.MaxTile]++
	}
	return stats
}

// report writes a human readable summary of stats.
func report(w io.Writer, policyName string, stats Stats, r *render.Renderer) {
	if stats.Games == 0 {
		fmt.Fprintln(w, "No games played")
		return
	}

	fmt.Fprintf(w, "\n=== %d games, %s policy ===\n", stats.Games, policyName)
	fmt.Fprintf(w, "Wins: %d (%.1f%%)\n", stats.Wins, 100*float64(stats.Wins)/float64(stats.Games))
	fmt.Fprintf(w, "Losses: %d\n", stats.Losses)
	if stats.Unfinished > 0 {
		fmt.Fprintf(w, "Unfinished: %d\n", stats.Unfinished)
	}
	fmt.Fprintf(w, "Average score: %s\n", r.Score(stats.TotalScore/stats.Games))
	fmt.Fprintf(w, "Best score: %s (seed %d)\n", r.Score(stats.BestScore), stats.BestSeed)
	fmt.Fprintf(w, "Average moves: %.1f\n", float64(stats.TotalMoves)/float64(stats.Games))

	tiles := make([]int, 0, len(stats.MaxTiles))
	for tile := range stats.MaxTiles {
		tiles = append(tiles, tile)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(tiles)))

	fmt.Fprintln(w, "Max tile reached:")
	for _, tile := range tiles {
		count := stats.MaxTiles[tile]
		fmt.Fprintf(w, "  %5d: %4d %s\n", tile, count, strings.Repeat("#", count*40/stats.Games))
	}
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "play seeded 2048 games headlessly and report statistics",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "games", Value: 100, Usage: "number of games to play"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "seed of the first game; game i uses seed+i"},
			&cli.IntFlag{Name: "workers", Usage: "games played in parallel (default: number of CPUs)"},
			&cli.StringFlag{Name: "policy", Value: "random", Usage: "move policy: random or corner"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			games := int(cmd.Int("games"))
			if games <= 0 {
				return fmt.Errorf("games must be positive, got %d", games)
			}
			workers := int(cmd.Int("workers"))
			if workers <= 0 {
				workers = runtime.NumCPU()
			}
			policyName := cmd.String("policy")
			policy, ok := policies[policyName]
			if !ok {
				return fmt.Errorf("unknown policy %q", policyName)
			}

			results, err := simulate(ctx, games, int64(cmd.Int("seed")), workers, policy)
			if err != nil {
				return err
			}
			report(out, policyName, aggregate(results), render.Default())
			return nil
		},
	}
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
