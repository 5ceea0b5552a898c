package scoring

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/golf-caddy-agent/agent/contract"
	roundx "github.com/tanpawarit/golf-caddy-agent/agent/round"
)

const DefaultPar = 4

// HoleResult is one recorded hole with its resolved par.
type HoleResult struct {
	HoleNumber       int    `json:"hole_number"`
	Strokes          int    `json:"strokes"`
	Par              int    `json:"par"`
	ScoreToPar       int    `json:"score_to_par"`
	ScoreDescription string `json:"score_description"`
	Approximate      bool   `json:"approximate,omitempty"`
}

type Summary struct {
	FrontNineStrokes int          `json:"front_nine_strokes"`
	FrontNinePar     int          `json:"front_nine_par"`
	FrontNineToPar   int          `json:"front_nine_to_par"`
	FrontNineHoles   int          `json:"front_nine_holes"`
	BackNineStrokes  int          `json:"back_nine_strokes"`
	BackNinePar      int          `json:"back_nine_par"`
	BackNineToPar    int          `json:"back_nine_to_par"`
	BackNineHoles    int          `json:"back_nine_holes"`
	TotalStrokes     int          `json:"total_strokes"`
	TotalPar         int          `json:"total_par"`
	TotalToPar       int          `json:"total_to_par"`
	HolesPlayed      int          `json:"holes_played"`
	ParStatus        string       `json:"par_status"`
	Approximate      bool         `json:"approximate"`
	Holes            []HoleResult `json:"holes"`
}

// Aggregator sums recorded holes into front nine, back nine and total.
type Aggregator struct {
	pars       contractx.ParLookup
	defaultPar int
	log        zerolog.Logger
}

func NewAggregator(pars contractx.ParLookup, defaultPar int, log zerolog.Logger) *Aggregator {
	if !roundx.ValidPar(defaultPar) {
		defaultPar = DefaultPar
	}
	return &Aggregator{pars: pars, defaultPar: defaultPar, log: log}
}

// ParFor resolves the par of a hole through the lookup. When the lookup has no
// usable answer the default par is returned with approximate set.
func (a *Aggregator) ParFor(ctx context.Context, hole int) (par int, approximate bool) {
	if a.pars != nil {
		p, err := a.pars.Par(ctx, hole)
		if err == nil && roundx.ValidPar(p) {
			return p, false
		}
		a.log.Debug().Err(err).Int("hole", hole).Int("par", p).Msg("par lookup unusable, using default")
	}
	return a.defaultPar, true
}

// Aggregate only counts recorded holes; absent holes are not zero-filled.
func (a *Aggregator) Aggregate(ctx context.Context, scores []roundx.HoleScore) Summary {
	sum := Summary{Holes: make([]HoleResult, 0, len(scores))}
	for _, hs := range scores {
		par, approx := hs.Par, false
		// a default par is looked up again in case the course now knows it
		if hs.Approximate || !roundx.ValidPar(par) {
			par, approx = a.ParFor(ctx, hs.HoleNumber)
		}
		toPar := hs.Strokes - par
		sum.Holes = append(sum.Holes, HoleResult{
			HoleNumber:       hs.HoleNumber,
			Strokes:          hs.Strokes,
			Par:              par,
			ScoreToPar:       toPar,
			ScoreDescription: Describe(toPar),
			Approximate:      approx,
		})
		sum.Approximate = sum.Approximate || approx

		if hs.HoleNumber <= 9 {
			sum.FrontNineStrokes += hs.Strokes
			sum.FrontNinePar += par
			sum.FrontNineHoles++
		} else {
			sum.BackNineStrokes += hs.Strokes
			sum.BackNinePar += par
			sum.BackNineHoles++
		}
	}
	sum.FrontNineToPar = sum.FrontNineStrokes - sum.FrontNinePar
	sum.BackNineToPar = sum.BackNineStrokes - sum.BackNinePar
	sum.TotalStrokes = sum.FrontNineStrokes + sum.BackNineStrokes
	sum.TotalPar = sum.FrontNinePar + sum.BackNinePar
	sum.TotalToPar = sum.TotalStrokes - sum.TotalPar
	sum.HolesPlayed = len(sum.Holes)
	sum.ParStatus = ParStatus(sum.TotalToPar)
	return sum
}

var descriptions = map[int]string{
	-3: "albatross",
	-2: "eagle",
	-1: "birdie",
	0:  "par",
	1:  "bogey",
	2:  "double bogey",
	3:  "triple bogey",
}

// Describe names a single-hole score relative to par.
func Describe(toPar int) string {
	if d, ok := descriptions[toPar]; ok {
		return d
	}
	return ParStatus(toPar)
}

// ParStatus renders a running score, e.g. "even par" or "2 over par".
func ParStatus(toPar int) string {
	switch {
	case toPar == 0:
		return "even par"
	case toPar < 0:
		return fmt.Sprintf("%d under par", -toPar)
	default:
		return fmt.Sprintf("%d over par", toPar)
	}
}
