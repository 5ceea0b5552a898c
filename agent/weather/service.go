package weather

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/golf-caddy-agent/agent/contract"
)

const (
	SourceLive     = "live"
	SourceFallback = "fallback"
)

type Wind struct {
	SpeedMPH  int    `json:"speed_mph"`
	Direction string `json:"direction"`
}

// Report is the get_weather result.
type Report struct {
	Summary     string    `json:"summary"`
	Temperature int       `json:"temperature"`
	Humidity    int       `json:"humidity"`
	UVIndex     float64   `json:"uv_index"`
	Wind        Wind      `json:"wind"`
	Advice      Advice    `json:"advice"`
	Playability int       `json:"playability"`
	Source      string    `json:"source"`
	Location    string    `json:"location"`
	ObservedAt  time.Time `json:"observed_at"`
	Note        string    `json:"note,omitempty"`
}

// Service never fails: provider errors degrade to deterministic simulated conditions.
type Service struct {
	provider contractx.WeatherProvider
	location string
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(provider contractx.WeatherProvider, defaultLocation string, log zerolog.Logger) *Service {
	return &Service{provider: provider, location: defaultLocation, log: log, now: time.Now}
}

// Report returns current conditions with golf advice. location only relabels
// the report; conditions are always fetched for the course.
func (s *Service) Report(ctx context.Context, location string) Report {
	label := strings.TrimSpace(location)
	if label == "" {
		label = s.location
	}

	if s.provider != nil {
		cond, err := s.provider.Current(ctx)
		if err == nil {
			cond.Location = label
			return buildReport(cond, SourceLive)
		}
		s.log.Warn().Err(err).Str("location", label).Msg("weather provider failed, using fallback")
	}

	rep := buildReport(Fallback(label, s.now()), SourceFallback)
	rep.Note = "Using simulated weather data"
	return rep
}

// Fallback derives stable conditions from the location label.
func Fallback(label string, now time.Time) contractx.Conditions {
	h := fnv.New64a()
	h.Write([]byte(label))
	rng := rand.New(rand.NewPCG(h.Sum64(), 0))

	directions := []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	return contractx.Conditions{
		Location:      label,
		TemperatureF:  65 + rng.IntN(18),
		Humidity:      45 + rng.IntN(31),
		WindSpeedMPH:  3 + rng.IntN(13),
		WindDirection: directions[rng.IntN(len(directions))],
		UVIndex:       float64(4 + rng.IntN(5)),
		ObservedAt:    now.UTC(),
	}
}

func buildReport(c contractx.Conditions, source string) Report {
	return Report{
		Summary: fmt.Sprintf("%d°F, %d%% humidity, wind %d mph from the %s",
			c.TemperatureF, c.Humidity, c.WindSpeedMPH, c.WindDirection),
		Temperature: c.TemperatureF,
		Humidity:    c.Humidity,
		UVIndex:     c.UVIndex,
		Wind:        Wind{SpeedMPH: c.WindSpeedMPH, Direction: c.WindDirection},
		Advice:      AdviseFor(c),
		Playability: Playability(c),
		Source:      source,
		Location:    c.Location,
		ObservedAt:  c.ObservedAt,
	}
}
