package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/golf-caddy-agent/agent/contract"
	openrouterx "github.com/tanpawarit/golf-caddy-agent/pkg/openrouter"
)

// Purpose selects per-use model overrides.
type Purpose string

const (
	PurposeDefault  Purpose = "default"
	PurposeHoleInfo Purpose = "hole_info"
)

// Config is the optional knowledge model. Loaded with prefix "OPENROUTER";
// an empty API key disables it.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"openai/gpt-4o-mini"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"400"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.3"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"20s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	HoleInfoModel       string  `envconfig:"HOLE_INFO_MODEL" split_words:"true"`
	HoleInfoTemperature float32 `envconfig:"HOLE_INFO_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

func (c Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required when an api key is set", contractx.ErrInvalidArguments)
	}
	if c.MaxCompletionToken < 0 {
		return fmt.Errorf("%w: max completion token must be >= 0", contractx.ErrInvalidArguments)
	}
	return nil
}

func (c Config) OpenRouterFor(purpose Purpose) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch purpose {
	case PurposeHoleInfo:
		if v := strings.TrimSpace(c.HoleInfoModel); v != "" {
			modelName = v
		}
		if c.HoleInfoTemperature >= 0 {
			temp = c.HoleInfoTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
