package round

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	contractx "github.com/tanpawarit/golf-caddy-agent/agent/contract"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

const (
	FirstHole  = 1
	LastHole   = 18
	MinPar     = 3
	MaxPar     = 5
	MaxStrokes = 15
)

var (
	ErrInvalidPlayer  = fmt.Errorf("%w: first name is required", contractx.ErrInvalidArguments)
	ErrInvalidHole    = fmt.Errorf("%w: hole number must be between 1 and 18", contractx.ErrInvalidArguments)
	ErrInvalidStrokes = fmt.Errorf("%w: strokes must be between 1 and 15", contractx.ErrInvalidArguments)
	ErrInvalidPar     = fmt.Errorf("%w: par must be between 3 and 5", contractx.ErrInvalidArguments)
	ErrNoRound        = errors.New("round has no session id")
)

// Round is one player's round, keyed by its session id.
type Round struct {
	PlayerName    string
	SessionID     string
	CourseName    string
	Status        Status
	StartedAt     time.Time
	LastTouchedAt time.Time
	CompletedAt   *time.Time
	HolesRecorded int
}

// touched is the activity timestamp used for resumption.
func (r Round) touched() time.Time {
	if r.LastTouchedAt.IsZero() {
		return r.StartedAt
	}
	return r.LastTouchedAt
}

// HoleScore is one recorded hole. Approximate marks a par that was not
// known when the hole was recorded.
type HoleScore struct {
	HoleNumber  int       `json:"hole_number"`
	Strokes     int       `json:"strokes"`
	Par         int       `json:"par"`
	Approximate bool      `json:"approximate,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

type metadataRecord struct {
	Status        Status     `json:"status"`
	StartedAt     time.Time  `json:"started_at"`
	LastTouchedAt time.Time  `json:"last_touched_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CourseName    string     `json:"course_name"`
	HolesRecorded int        `json:"holes_recorded"`
}

type bindingRecord struct {
	PlayerName string    `json:"player_name"`
	BoundAt    time.Time `json:"bound_at"`
}

const (
	metadataSuffix      = "#metadata"
	holeInfix           = "#hole_"
	bindingPartition    = "#conversation"
	bindingSuffix       = "#binding"
	sessionTimeLayout   = "20060102T150405"
	sessionSuffixLength = 8
)

func metadataKey(sessionID string) string { return sessionID + metadataSuffix }

func holeKey(sessionID string, hole int) string {
	return fmt.Sprintf("%s%s%02d", sessionID, holeInfix, hole)
}

func holePrefix(sessionID string) string { return sessionID + holeInfix }

func bindingKey(conversationID string) string { return conversationID + bindingSuffix }

// NormalizeName trims, lower-cases and capitalizes the first letter.
// Names containing '#' are rejected since it separates sort key parts.
func NormalizeName(raw string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" || strings.ContainsRune(name, '#') {
		return "", ErrInvalidPlayer
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:], nil
}

// NewSessionID builds "{UTC yyyymmddThhmmss}_{player}_{8 hex}". The player
// part keeps letters and digits only so the id never contains '#'.
func NewSessionID(player string, now time.Time) string {
	var b strings.Builder
	for _, r := range strings.ToLower(player) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:sessionSuffixLength]
	return fmt.Sprintf("%s_%s_%s", now.UTC().Format(sessionTimeLayout), b.String(), suffix)
}

func validateHole(hole int) error {
	if hole < FirstHole || hole > LastHole {
		return ErrInvalidHole
	}
	return nil
}

// ValidPar reports whether par is a legal hole par.
func ValidPar(par int) bool { return par >= MinPar && par <= MaxPar }
