package tool

import "strings"

// Kind is the closed set of tools the dispatcher can run.
type Kind int

const (
	KindUnknown Kind = iota
	KindRegisterPlayer
	KindGetWeather
	KindGetHoleInfo
	KindRecordScore
	KindGetScoreStatus
)

// All lists every runnable tool in catalog order.
var All = []Kind{
	KindGetWeather,
	KindGetHoleInfo,
	KindRecordScore,
	KindGetScoreStatus,
	KindRegisterPlayer,
}

func (k Kind) String() string {
	switch k {
	case KindRegisterPlayer:
		return "register_player"
	case KindGetWeather:
		return "get_weather"
	case KindGetHoleInfo:
		return "get_hole_info"
	case KindRecordScore:
		return "record_score"
	case KindGetScoreStatus:
		return "get_score_status"
	default:
		return "unknown"
	}
}

// aliases is keyed by the squashed form of a name: lower case with
// separators and a trailing "tool" removed.
var aliases = map[string]Kind{
	"registerplayer":     KindRegisterPlayer,
	"getweather":         KindGetWeather,
	"getholeinfo":        KindGetHoleInfo,
	"getholeinformation": KindGetHoleInfo,
	"recordscore":        KindRecordScore,
	"getscorestatus":     KindGetScoreStatus,
}

// ParseTool accepts snake_case names ("record_score") and the camelCase
// names used by the voice model ("recordScoreTool"), case-insensitively.
func ParseTool(name string) (Kind, bool) {
	k, ok := aliases[squash(name)]
	return k, ok
}

func squash(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch r {
		case '_', '-', '.', ' ':
			continue
		}
		b.WriteRune(r)
	}
	s := b.String()
	if trimmed, ok := strings.CutSuffix(s, "tool"); ok && trimmed != "" {
		return trimmed
	}
	return s
}
