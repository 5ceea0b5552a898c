package dispatcher

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/golf-caddy-agent/agent/contract"
	roundx "github.com/tanpawarit/golf-caddy-agent/agent/round"
	"github.com/tanpawarit/golf-caddy-agent/agent/scoring"
	toolx "github.com/tanpawarit/golf-caddy-agent/agent/tool"
)

type RegisterResult struct {
	PlayerName    string   `json:"player_name"`
	RoundResumed  bool     `json:"round_resumed"`
	SessionID     string   `json:"session_id,omitempty"`
	HolesRecorded int      `json:"holes_recorded"`
	StaleRounds   []string `json:"stale_rounds"`
	Message       string   `json:"message"`
}

type RecordResult struct {
	HoleNumber       int    `json:"hole_number"`
	Strokes          int    `json:"strokes"`
	Par              int    `json:"par"`
	ScoreToPar       int    `json:"score_to_par"`
	ScoreDescription string `json:"score_description"`
	RoundCompleted   bool   `json:"round_completed"`
	Approximate      bool   `json:"approximate"`
	SessionID        string `json:"session_id"`
	HolesRecorded    int    `json:"holes_recorded"`
	Message          string `json:"message"`
}

type StatusResult struct {
	scoring.Summary
	PlayerName string `json:"player_name"`
	SessionID  string `json:"session_id,omitempty"`
	Query      string `json:"query"`
	Message    string `json:"message"`
}

// Execute implements the dispatch graph's executor.
func (d *Dispatcher) Execute(ctx context.Context, kind toolx.Kind, call contractx.ToolCall, args any) (any, error) {
	var (
		result any
		err    error
	)
	switch kind {
	case toolx.KindRegisterPlayer:
		result, err = d.registerPlayer(ctx, call, args.(*toolx.RegisterPlayerArgs))
	case toolx.KindGetWeather:
		result, err = d.weather.Report(ctx, args.(*toolx.GetWeatherArgs).Location), nil
	case toolx.KindGetHoleInfo:
		result, err = d.holeInfo(ctx, args.(*toolx.GetHoleInfoArgs))
	case toolx.KindRecordScore:
		result, err = d.recordScore(ctx, call, args.(*toolx.RecordScoreArgs))
	case toolx.KindGetScoreStatus:
		result, err = d.scoreStatus(ctx, call, args.(*toolx.GetScoreStatusArgs))
	default:
		return nil, fmt.Errorf("%w: %s", contractx.ErrUnknownTool, kind)
	}
	if err != nil {
		switch contractx.KindOf(err) {
		case contractx.KindStoreUnavailable, contractx.KindInternal:
			d.log.Error().Err(err).Str("session_id", call.SessionID).Str("tool", kind.String()).Msg("tool failed")
		}
	}
	return result, err
}

func (d *Dispatcher) registerPlayer(ctx context.Context, call contractx.ToolCall, args *toolx.RegisterPlayerArgs) (RegisterResult, error) {
	name, err := roundx.NormalizeName(args.FirstName)
	if err != nil {
		return RegisterResult{}, err
	}
	if err := d.rounds.BindConversation(ctx, call.SessionID, name); err != nil {
		return RegisterResult{}, err
	}
	res, err := d.rounds.FindResumable(ctx, name)
	if err != nil {
		return RegisterResult{}, err
	}

	out := RegisterResult{PlayerName: name, StaleRounds: []string{}}
	for _, stale := range res.Stale {
		out.StaleRounds = append(out.StaleRounds, stale.SessionID)
	}
	if res.Active == nil {
		out.Message = fmt.Sprintf("Welcome to %s, %s! Your round starts with the first score you record.", d.clubName, name)
		return out, nil
	}

	out.RoundResumed = true
	out.SessionID = res.Active.SessionID
	out.HolesRecorded = res.Active.HolesRecorded
	out.Message = fmt.Sprintf("Welcome back, %s! Resuming your round with %s recorded.", name, holes(res.Active.HolesRecorded))
	return out, nil
}

func (d *Dispatcher) holeInfo(ctx context.Context, args *toolx.GetHoleInfoArgs) (contractx.HoleInfo, error) {
	info, err := d.course.HoleInfo(ctx, args.HoleNumber)
	if err != nil {
		return contractx.HoleInfo{}, contractx.NewToolError(
			contractx.KindExternalServiceDegraded,
			fmt.Sprintf("No information is available for hole %d right now.", args.HoleNumber),
			err,
		)
	}
	return info, nil
}

func (d *Dispatcher) recordScore(ctx context.Context, call contractx.ToolCall, args *toolx.RecordScoreArgs) (RecordResult, error) {
	player, err := d.rounds.PlayerFor(ctx, call.SessionID)
	if err != nil {
		return RecordResult{}, err
	}
	rnd, err := d.rounds.RoundForScore(ctx, player, d.courseName, args.HoleNumber)
	if err != nil {
		return RecordResult{}, err
	}
	correction := rnd.Status == roundx.StatusCompleted

	par, approximate := d.scores.ParFor(ctx, args.HoleNumber)
	rnd, err = d.rounds.RecordHoleScore(ctx, rnd, args.HoleNumber, args.Strokes, par, approximate)
	if err != nil {
		return RecordResult{}, err
	}

	toPar := args.Strokes - par
	out := RecordResult{
		HoleNumber:       args.HoleNumber,
		Strokes:          args.Strokes,
		Par:              par,
		ScoreToPar:       toPar,
		ScoreDescription: scoring.Describe(toPar),
		Approximate:      approximate,
		SessionID:        rnd.SessionID,
		HolesRecorded:    rnd.HolesRecorded,
	}
	out.Message = fmt.Sprintf("Recorded %d on hole %d, par %d: %s.", args.Strokes, args.HoleNumber, par, out.ScoreDescription)

	if args.HoleNumber != roundx.LastHole {
		return out, nil
	}

	out.RoundCompleted = true
	if correction {
		summary := d.summarize(ctx, rnd)
		out.Message += fmt.Sprintf(" Final card updated: %d strokes, %s.", summary.TotalStrokes, summary.ParStatus)
		return out, nil
	}
	rnd, err = d.rounds.CloseRound(ctx, rnd)
	if err != nil {
		return RecordResult{}, err
	}
	summary := d.summarize(ctx, rnd)
	d.publishCompleted(ctx, rnd, summary)
	out.Message += fmt.Sprintf(" Round complete: %d strokes, %s.", summary.TotalStrokes, summary.ParStatus)
	return out, nil
}

func (d *Dispatcher) summarize(ctx context.Context, rnd roundx.Round) scoring.Summary {
	scores, err := d.rounds.LoadRoundScores(ctx, rnd)
	if err != nil {
		d.log.Warn().Err(err).Str("session_id", rnd.SessionID).Msg("load scores for completed round")
	}
	return d.scores.Aggregate(ctx, scores)
}

// publishCompleted announces a closed round. Failures are logged only; the
// score is already stored.
func (d *Dispatcher) publishCompleted(ctx context.Context, rnd roundx.Round, summary scoring.Summary) {
	evt := contractx.RoundEvent{
		Type:          contractx.RoundEventCompleted,
		PlayerName:    rnd.PlayerName,
		SessionID:     rnd.SessionID,
		CourseName:    rnd.CourseName,
		HolesRecorded: rnd.HolesRecorded,
		TotalStrokes:  summary.TotalStrokes,
		TotalToPar:    summary.TotalToPar,
		OccurredAt:    d.now().UTC(),
	}
	if err := d.events.Publish(ctx, evt); err != nil {
		d.log.Warn().Err(err).Str("session_id", rnd.SessionID).Msg("publish round completed")
	}
}

func (d *Dispatcher) scoreStatus(ctx context.Context, call contractx.ToolCall, args *toolx.GetScoreStatusArgs) (StatusResult, error) {
	player, err := d.rounds.PlayerFor(ctx, call.SessionID)
	if err != nil {
		return StatusResult{}, err
	}
	query := args.Query
	if query == "" {
		query = toolx.QueryCurrent
	}

	out := StatusResult{PlayerName: player, Query: query}
	rnd, ok, err := d.rounds.LatestRound(ctx, player)
	if err != nil {
		return StatusResult{}, err
	}
	if !ok {
		out.Summary = d.scores.Aggregate(ctx, nil)
		out.Message = fmt.Sprintf("No scores recorded yet, %s. Tell me your score after each hole.", player)
		return out, nil
	}

	scores, err := d.rounds.LoadRoundScores(ctx, rnd)
	if err != nil {
		return StatusResult{}, err
	}
	out.SessionID = rnd.SessionID
	out.Summary = d.scores.Aggregate(ctx, scores)
	out.Message = statusMessage(player, query, out.Summary)
	return out, nil
}

func statusMessage(player, query string, s scoring.Summary) string {
	switch query {
	case toolx.QueryFront9:
		return nineMessage("front", s.FrontNineHoles, s.FrontNineStrokes, s.FrontNineToPar)
	case toolx.QueryBack9:
		return nineMessage("back", s.BackNineHoles, s.BackNineStrokes, s.BackNineToPar)
	default:
		if s.HolesPlayed == 0 {
			return fmt.Sprintf("No scores recorded yet, %s.", player)
		}
		return fmt.Sprintf("%s, you are %s through %s with %d strokes.",
			player, s.ParStatus, holes(s.HolesPlayed), s.TotalStrokes)
	}
}

func nineMessage(nine string, played, strokes, toPar int) string {
	if played == 0 {
		return fmt.Sprintf("No holes recorded on the %s nine yet.", nine)
	}
	return fmt.Sprintf("On the %s nine you have %d strokes through %s, %s.",
		nine, strokes, holes(played), scoring.ParStatus(toPar))
}

func holes(n int) string {
	if n == 1 {
		return "1 hole"
	}
	return fmt.Sprintf("%d holes", n)
}
