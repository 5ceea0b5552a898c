package tool

import (
	"fmt"

	"github.com/cloudwego/eino/schema"
)

var descriptions = map[Kind]string{
	KindGetWeather: "Get current weather conditions for the golf course or a named location. " +
		"Provides temperature, wind conditions, and golf-specific weather advice.",
	KindGetHoleInfo: "Get information about a specific hole including par, distance, hazards, and strategy. " +
		"Use this when players ask about hole strategy or course layout.",
	KindRecordScore: "Record a golf score for a specific hole. Use this when players mention their score, " +
		"strokes taken, or golf terms like birdie, eagle, bogey. Convert golf terms to stroke counts based on par.",
	KindGetScoreStatus: "Get current scoring status: total score, front nine, back nine, or overall round. " +
		"Use when players ask about their score or how they are doing.",
	KindRegisterPlayer: "Register a player by first name when they introduce themselves " +
		"(e.g. 'I'm Ben', 'Call me Mike'). Required before scores can be recorded.",
}

func Description(k Kind) string { return descriptions[k] }

// Infos describes every tool for an eino tool-calling model.
func Infos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(All))
	for _, k := range All {
		infos = append(infos, &schema.ToolInfo{
			Name:        k.String(),
			Desc:        Description(k),
			ParamsOneOf: schema.NewParamsOneOfByParams(params(k)),
		})
	}
	return infos
}

func params(k Kind) map[string]*schema.ParameterInfo {
	switch k {
	case KindRegisterPlayer:
		return map[string]*schema.ParameterInfo{
			"first_name": {Type: schema.String, Desc: "The player's first name", Required: true},
		}
	case KindGetWeather:
		return map[string]*schema.ParameterInfo{
			"location": {Type: schema.String, Desc: "Label for the report; defaults to the golf course"},
		}
	case KindGetHoleInfo:
		return map[string]*schema.ParameterInfo{
			"hole_number": {Type: schema.Integer, Desc: "The hole number (1-18)", Required: true},
		}
	case KindRecordScore:
		return map[string]*schema.ParameterInfo{
			"hole_number": {Type: schema.Integer, Desc: "The hole number (1-18)", Required: true},
			"strokes":     {Type: schema.Integer, Desc: "Number of strokes taken on this hole (1-15)", Required: true},
		}
	case KindGetScoreStatus:
		return map[string]*schema.ParameterInfo{
			"query": {
				Type: schema.String,
				Desc: "Which score to report",
				Enum: []string{QueryCurrent, QueryTotal, QueryOverall, QueryFront9, QueryBack9},
			},
		}
	default:
		return nil
	}
}

// Spec is one entry of the voice model's tool configuration. InputSchema
// carries the schema as a JSON string.
type Spec struct {
	ToolSpec struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		InputSchema struct {
			JSON string `json:"json"`
		} `json:"inputSchema"`
	} `json:"toolSpec"`
}

// Specs renders every tool in the voice model's toolSpec format.
func Specs() ([]Spec, error) {
	specs := make([]Spec, 0, len(All))
	for _, k := range All {
		raw, err := Schema(k)
		if err != nil {
			return nil, fmt.Errorf("schema for %s: %w", k, err)
		}
		var s Spec
		s.ToolSpec.Name = k.String()
		s.ToolSpec.Description = Description(k)
		s.ToolSpec.InputSchema.JSON = string(raw)
		specs = append(specs, s)
	}
	return specs, nil
}
