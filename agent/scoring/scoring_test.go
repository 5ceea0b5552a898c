package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	roundx "github.com/tanpawarit/golf-caddy-agent/agent/round"
)

type parTable map[int]int

func (p parTable) Par(_ context.Context, hole int) (int, error) {
	if par, ok := p[hole]; ok {
		return par, nil
	}
	return 0, errors.New("no par for hole")
}

func TestAggregatePartialFrontNine(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(parTable{1: 4, 5: 5, 9: 3}, DefaultPar, zerolog.Nop())
	sum := agg.Aggregate(context.Background(), []roundx.HoleScore{
		{HoleNumber: 1, Strokes: 4, Par: 4},
		{HoleNumber: 5, Strokes: 5, Par: 5},
		{HoleNumber: 9, Strokes: 3, Par: 3},
	})

	if sum.FrontNineStrokes != 12 {
		t.Fatalf("FrontNineStrokes = %d, want 12", sum.FrontNineStrokes)
	}
	if sum.HolesPlayed != 3 {
		t.Fatalf("HolesPlayed = %d, want 3", sum.HolesPlayed)
	}
	if sum.FrontNinePar != 12 || sum.TotalToPar != 0 || sum.ParStatus != "even par" {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if sum.BackNineStrokes != 0 || sum.BackNineHoles != 0 {
		t.Fatalf("back nine should be empty: %+v", sum)
	}
	if sum.Approximate {
		t.Fatal("summary marked approximate with stored pars")
	}
}

func TestAggregateSplitsNines(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(nil, DefaultPar, zerolog.Nop())
	sum := agg.Aggregate(context.Background(), []roundx.HoleScore{
		{HoleNumber: 9, Strokes: 6, Par: 4},
		{HoleNumber: 10, Strokes: 3, Par: 4},
		{HoleNumber: 18, Strokes: 5, Par: 5},
	})
	if sum.FrontNineToPar != 2 || sum.BackNineToPar != -1 || sum.TotalToPar != 1 {
		t.Fatalf("to-par = front %d back %d total %d", sum.FrontNineToPar, sum.BackNineToPar, sum.TotalToPar)
	}
	if sum.TotalStrokes != 14 || sum.TotalPar != 13 {
		t.Fatalf("totals = %d/%d", sum.TotalStrokes, sum.TotalPar)
	}
	if sum.ParStatus != "1 over par" {
		t.Fatalf("ParStatus = %q", sum.ParStatus)
	}
	if sum.Holes[0].ScoreDescription != "double bogey" || sum.Holes[1].ScoreDescription != "birdie" {
		t.Fatalf("descriptions = %q, %q", sum.Holes[0].ScoreDescription, sum.Holes[1].ScoreDescription)
	}
}

func TestAggregateFallsBackForMissingPar(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(parTable{2: 3}, DefaultPar, zerolog.Nop())
	sum := agg.Aggregate(context.Background(), []roundx.HoleScore{
		{HoleNumber: 2, Strokes: 3, Par: 0},
		{HoleNumber: 7, Strokes: 5, Par: 0},
	})
	if sum.Holes[0].Par != 3 || sum.Holes[0].Approximate {
		t.Fatalf("hole 2 = %+v, want par 3 from lookup", sum.Holes[0])
	}
	if sum.Holes[1].Par != DefaultPar || !sum.Holes[1].Approximate {
		t.Fatalf("hole 7 = %+v, want approximate default par", sum.Holes[1])
	}
	if !sum.Approximate {
		t.Fatal("summary should be approximate")
	}
}

func TestAggregateKeepsApproximatePar(t *testing.T) {
	t.Parallel()

	unknown := NewAggregator(parTable{}, DefaultPar, zerolog.Nop())
	sum := unknown.Aggregate(context.Background(), []roundx.HoleScore{
		{HoleNumber: 7, Strokes: 5, Par: DefaultPar, Approximate: true},
		{HoleNumber: 8, Strokes: 3, Par: 3},
	})
	if !sum.Holes[0].Approximate || sum.Holes[0].Par != DefaultPar {
		t.Fatalf("hole 7 = %+v, want approximate default par", sum.Holes[0])
	}
	if sum.Holes[1].Approximate {
		t.Fatalf("hole 8 = %+v, want known par", sum.Holes[1])
	}
	if !sum.Approximate {
		t.Fatal("summary should be approximate")
	}

	// once the course knows the par it replaces the default
	known := NewAggregator(parTable{7: 3}, DefaultPar, zerolog.Nop())
	sum = known.Aggregate(context.Background(), []roundx.HoleScore{
		{HoleNumber: 7, Strokes: 5, Par: DefaultPar, Approximate: true},
	})
	if sum.Holes[0].Approximate || sum.Holes[0].Par != 3 || sum.TotalToPar != 2 {
		t.Fatalf("hole 7 = %+v, want par 3 from lookup", sum.Holes[0])
	}
}

func TestNewAggregatorRejectsInvalidDefaultPar(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(nil, 9, zerolog.Nop())
	par, approx := agg.ParFor(context.Background(), 1)
	if par != DefaultPar || !approx {
		t.Fatalf("ParFor() = %d, %v", par, approx)
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	cases := map[int]string{
		-4: "4 under par",
		-3: "albatross",
		-2: "eagle",
		-1: "birdie",
		0:  "par",
		1:  "bogey",
		2:  "double bogey",
		3:  "triple bogey",
		5:  "5 over par",
	}
	for toPar, want := range cases {
		if got := Describe(toPar); got != want {
			t.Fatalf("Describe(%d) = %q, want %q", toPar, got, want)
		}
	}
}
