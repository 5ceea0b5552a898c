package weather

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/golf-caddy-agent/agent/contract"
)

type Advice struct {
	Overall         string   `json:"overall"`
	Temperature     string   `json:"temperature"`
	Wind            string   `json:"wind"`
	Conditions      string   `json:"conditions"`
	Recommendations []string `json:"recommendations"`
}

func AdviseFor(c contractx.Conditions) Advice {
	return Advice{
		Overall:         overallAssessment(c),
		Temperature:     temperatureAdvice(c.TemperatureF),
		Wind:            windAdvice(c.WindSpeedMPH, c.WindDirection),
		Conditions:      conditionsAdvice(c.UVIndex, c.Humidity),
		Recommendations: equipment(c),
	}
}

func temperatureAdvice(f int) string {
	switch {
	case f < 60:
		return "Cold conditions will reduce ball compression. Consider softer compression balls for better distance. Expect shorter drives and less spin control."
	case f < 70:
		return "Cool but playable conditions. Ball performance will be slightly reduced. Good conditions for accuracy-focused play."
	case f <= 80:
		return "Ideal golf temperature. Ball compression and performance are optimal."
	case f <= 90:
		return "Warm conditions will increase ball compression for longer drives. Expect firmer, faster greens with more roll and less stopping power."
	default:
		return "Hot conditions, stay hydrated. Expect maximum ball distance but very firm, fast greens."
	}
}

func windAdvice(mph int, direction string) string {
	switch {
	case mph <= 5:
		return fmt.Sprintf("Light breeze from the %s. Excellent conditions for accuracy and putting.", direction)
	case mph <= 12:
		return fmt.Sprintf("Moderate %d mph wind from the %s. Adjust club selection and aim accordingly; a lower ball flight gives better control.", mph, direction)
	case mph <= 20:
		return fmt.Sprintf("Strong %d mph wind from the %s. Expect significant ball movement. Take one club more into the wind and one less downwind.", mph, direction)
	default:
		return fmt.Sprintf("Very strong %d mph wind from the %s. Play conservatively and focus on course management.", mph, direction)
	}
}

func conditionsAdvice(uv float64, humidity int) string {
	var parts []string
	switch {
	case uv <= 2:
		parts = append(parts, "Low UV, minimal sun protection needed.")
	case uv <= 5:
		parts = append(parts, "Moderate UV, consider sunscreen and a hat.")
	case uv <= 7:
		parts = append(parts, "High UV, sunscreen and protective clothing recommended.")
	default:
		parts = append(parts, "Very high UV, use strong sunscreen and a hat and seek shade when possible.")
	}
	switch {
	case humidity < 40:
		parts = append(parts, "Low humidity means firmer conditions and more ball roll.")
	case humidity > 70:
		parts = append(parts, "High humidity will make greens softer and more receptive.")
	}
	return strings.Join(parts, " ")
}

// Playability scores conditions from 10 down; temperature and wind extremes cost points.
func Playability(c contractx.Conditions) int {
	score := 10
	switch t := c.TemperatureF; {
	case t < 50 || t > 95:
		score -= 3
	case t < 60 || t > 85:
		score--
	}
	switch w := c.WindSpeedMPH; {
	case w > 20:
		score -= 3
	case w > 12:
		score--
	}
	return score
}

func overallAssessment(c contractx.Conditions) string {
	switch score := Playability(c); {
	case score >= 9:
		return "Excellent golf conditions. Perfect day to be on the course."
	case score >= 7:
		return "Very good conditions with minor challenges."
	case score >= 5:
		return "Good playable conditions. Some adjustments needed."
	case score >= 3:
		return "Challenging but manageable conditions. Focus on course management."
	default:
		return "Difficult conditions. Consider waiting for better weather."
	}
}

func equipment(c contractx.Conditions) []string {
	recs := []string{}
	switch {
	case c.TemperatureF < 60:
		recs = append(recs, "Bring extra layers and consider softer compression balls")
	case c.TemperatureF > 85:
		recs = append(recs, "Bring plenty of water and electrolyte drinks")
	}
	if c.WindSpeedMPH > 12 {
		recs = append(recs,
			"Focus on grip control and consider rain gloves for better hold",
			"Practice low ball flight shots on the range")
	}
	switch {
	case c.Humidity > 70:
		recs = append(recs, "Expect softer greens; be more aggressive with approach shots")
	case c.Humidity < 40:
		recs = append(recs, "Expect firm conditions; plan for extra roll on drives and approaches")
	}
	return recs
}
