package contract

import (
	"encoding/json"
	"time"
)

// ToolCall is one request from the conversational session.
// Arguments is either a JSON object or a JSON string holding an object.
type ToolCall struct {
	SessionID string          `json:"session_id"`
	ToolName  string          `json:"tool_name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

type ToolResponse struct {
	Success bool          `json:"success"`
	Result  any           `json:"result,omitempty"`
	Error   *ErrorPayload `json:"error,omitempty"`
}

type ErrorPayload struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func Success(result any) ToolResponse {
	return ToolResponse{Success: true, Result: result}
}

func Failure(kind ErrorKind, message string) ToolResponse {
	if message == "" {
		message = Guidance(kind)
	}
	return ToolResponse{
		Success: false,
		Error:   &ErrorPayload{Kind: kind, Message: message},
	}
}

// HoleInfo is what the course knowledge collaborator knows about one hole.
type HoleInfo struct {
	HoleNumber  int    `json:"hole_number"`
	Par         int    `json:"par"`
	Yardage     int    `json:"yardage"`
	Handicap    int    `json:"handicap"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

// Conditions is a weather observation already converted to golf units
// (fahrenheit, mph).
type Conditions struct {
	Location      string    `json:"location"`
	TemperatureF  int       `json:"temperature_f"`
	Humidity      int       `json:"humidity"`
	WindSpeedMPH  int       `json:"wind_speed_mph"`
	WindDirection string    `json:"wind_direction"`
	UVIndex       float64   `json:"uv_index"`
	ObservedAt    time.Time `json:"observed_at"`
}

// RoundEvent is published when a round changes lifecycle state.
type RoundEvent struct {
	Type          string    `json:"type"`
	PlayerName    string    `json:"player_name"`
	SessionID     string    `json:"session_id"`
	CourseName    string    `json:"course_name"`
	HolesRecorded int       `json:"holes_recorded"`
	TotalStrokes  int       `json:"total_strokes"`
	TotalToPar    int       `json:"total_to_par"`
	OccurredAt    time.Time `json:"occurred_at"`
}

const RoundEventCompleted = "round.completed"
