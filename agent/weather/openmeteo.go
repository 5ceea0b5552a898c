package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	contractx "github.com/tanpawarit/golf-caddy-agent/agent/contract"
)

const maxResponseSizeBytes = 1 << 20

// Config is loaded with prefix "WEATHER".
type Config struct {
	URL       string        `envconfig:"URL" default:"https://api.open-meteo.com/v1/forecast"`
	Timeout   time.Duration `envconfig:"TIMEOUT" default:"5s"`
	Latitude  float64       `envconfig:"LATITUDE" default:"37.7749"`
	Longitude float64       `envconfig:"LONGITUDE" default:"-122.4194"`
	Timezone  string        `envconfig:"TIMEZONE" default:"auto"`
	Location  string        `envconfig:"LOCATION"`
}

// OpenMeteo fetches current conditions for one fixed coordinate.
type OpenMeteo struct {
	baseURL    string
	latitude   float64
	longitude  float64
	timezone   string
	label      string
	httpClient *http.Client
	now        func() time.Time
}

type openMeteoResponse struct {
	Current struct {
		Time          string   `json:"time"`
		Temperature   *float64 `json:"temperature_2m"`
		Humidity      *float64 `json:"relative_humidity_2m"`
		WindSpeed     *float64 `json:"wind_speed_10m"`
		WindDirection *float64 `json:"wind_direction_10m"`
		UVIndex       *float64 `json:"uv_index"`
	} `json:"current"`
}

func NewOpenMeteo(cfg Config, label string, httpClient *http.Client) (*OpenMeteo, error) {
	base := strings.TrimSpace(cfg.URL)
	if base == "" {
		return nil, errors.New("weather url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid weather url: %w", err)
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if l := strings.TrimSpace(cfg.Location); l != "" {
		label = l
	}
	tz := strings.TrimSpace(cfg.Timezone)
	if tz == "" {
		tz = "auto"
	}
	return &OpenMeteo{
		baseURL:    base,
		latitude:   cfg.Latitude,
		longitude:  cfg.Longitude,
		timezone:   tz,
		label:      label,
		httpClient: httpClient,
		now:        time.Now,
	}, nil
}

func (o *OpenMeteo) Label() string { return o.label }

func (o *OpenMeteo) Current(ctx context.Context) (contractx.Conditions, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(o.latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(o.longitude, 'f', -1, 64))
	q.Set("current", "temperature_2m,relative_humidity_2m,wind_speed_10m,wind_direction_10m,uv_index")
	q.Set("timezone", o.timezone)
	q.Set("forecast_days", "1")
	q.Set("temperature_unit", "fahrenheit")
	q.Set("wind_speed_unit", "mph")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return contractx.Conditions{}, fmt.Errorf("build weather request: %w", err)
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return contractx.Conditions{}, fmt.Errorf("execute weather request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return contractx.Conditions{}, fmt.Errorf("read weather response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return contractx.Conditions{}, fmt.Errorf("weather http status=%d", resp.StatusCode)
	}

	var parsed openMeteoResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return contractx.Conditions{}, fmt.Errorf("decode weather response: %w", err)
	}
	cur := parsed.Current
	if cur.Temperature == nil || cur.WindSpeed == nil {
		return contractx.Conditions{}, errors.New("weather response missing current conditions")
	}

	observed := o.now().UTC()
	if t, err := time.Parse("2006-01-02T15:04", cur.Time); err == nil {
		observed = t
	}
	direction := "Variable"
	if cur.WindDirection != nil {
		direction = CompassPoint(*cur.WindDirection)
	}
	return contractx.Conditions{
		Location:      o.label,
		TemperatureF:  int(math.Round(*cur.Temperature)),
		Humidity:      int(math.Round(valueOr(cur.Humidity, 60))),
		WindSpeedMPH:  int(math.Round(*cur.WindSpeed)),
		WindDirection: direction,
		UVIndex:       valueOr(cur.UVIndex, 5),
		ObservedAt:    observed,
	}, nil
}

var compass = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// CompassPoint converts degrees to one of 16 compass points.
func CompassPoint(degrees float64) string {
	idx := int(math.Round(degrees/22.5)) % 16
	if idx < 0 {
		idx += 16
	}
	return compass[idx]
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
