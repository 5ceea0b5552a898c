package tool

// Score status query modes.
const (
	QueryCurrent = "current"
	QueryTotal   = "total"
	QueryOverall = "overall"
	QueryFront9  = "front9"
	QueryBack9   = "back9"
)

type RegisterPlayerArgs struct {
	FirstName string `json:"first_name" jsonschema:"minLength=1" jsonschema_description:"The player's first name"`
}

type GetWeatherArgs struct {
	Location string `json:"location,omitempty" jsonschema_description:"Label for the report; defaults to the golf course"`
}

type GetHoleInfoArgs struct {
	HoleNumber int `json:"hole_number" jsonschema:"minimum=1,maximum=18" jsonschema_description:"The hole number (1-18)"`
}

type RecordScoreArgs struct {
	HoleNumber int `json:"hole_number" jsonschema:"minimum=1,maximum=18" jsonschema_description:"The hole number (1-18)"`
	Strokes    int `json:"strokes" jsonschema:"minimum=1,maximum=15" jsonschema_description:"Number of strokes taken on this hole"`
}

type GetScoreStatusArgs struct {
	Query string `json:"query,omitempty" jsonschema:"enum=current,enum=total,enum=overall,enum=front9,enum=back9" jsonschema_description:"Which score to report: current, total, front9 or back9"`
}

// argsFor returns a pointer to a zero argument value for k.
func argsFor(k Kind) any {
	switch k {
	case KindRegisterPlayer:
		return &RegisterPlayerArgs{}
	case KindGetWeather:
		return &GetWeatherArgs{}
	case KindGetHoleInfo:
		return &GetHoleInfoArgs{}
	case KindRecordScore:
		return &RecordScoreArgs{}
	case KindGetScoreStatus:
		return &GetScoreStatusArgs{}
	default:
		return nil
	}
}
