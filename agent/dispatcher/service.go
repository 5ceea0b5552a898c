package dispatcher

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/golf-caddy-agent/agent/contract"
	nodex "github.com/tanpawarit/golf-caddy-agent/agent/nodes/dispatch"
	roundx "github.com/tanpawarit/golf-caddy-agent/agent/round"
	"github.com/tanpawarit/golf-caddy-agent/agent/scoring"
	weatherx "github.com/tanpawarit/golf-caddy-agent/agent/weather"
)

type Config struct {
	ClubName   string
	CourseName string
}

// Dispatcher routes tool calls to their handlers. It keeps no state between
// calls other than the set of sessions with a call in flight.
type Dispatcher struct {
	rounds  *roundx.Store
	scores  *scoring.Aggregator
	course  contractx.CourseKnowledge
	weather *weatherx.Service
	events  contractx.EventPublisher
	log     zerolog.Logger

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]
	busy        *busyGuard

	clubName   string
	courseName string

	now func() time.Time
}

func New(
	rounds *roundx.Store,
	scores *scoring.Aggregator,
	course contractx.CourseKnowledge,
	weather *weatherx.Service,
	events contractx.EventPublisher,
	cfg Config,
	log zerolog.Logger,
) (*Dispatcher, error) {
	if rounds == nil {
		return nil, errors.New("round store is required")
	}
	if scores == nil {
		return nil, errors.New("score aggregator is required")
	}
	if course == nil {
		return nil, errors.New("course knowledge is required")
	}
	if weather == nil {
		return nil, errors.New("weather service is required")
	}
	if events == nil {
		events = noopPublisher{}
	}

	clubName := strings.TrimSpace(cfg.ClubName)
	if clubName == "" {
		clubName = "Sunny Hills Golf Club"
	}
	courseName := strings.TrimSpace(cfg.CourseName)
	if courseName == "" {
		courseName = clubName
	}

	d := &Dispatcher{
		rounds:     rounds,
		scores:     scores,
		course:     course,
		weather:    weather,
		events:     events,
		log:        log,
		busy:       newBusyGuard(),
		clubName:   clubName,
		courseName: courseName,
		now:        time.Now,
	}

	graphRunner, err := d.compileDispatchGraph(context.Background())
	if err != nil {
		return nil, err
	}
	d.graphRunner = graphRunner

	return d, nil
}

// Dispatch runs one tool call and always returns an envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, call contractx.ToolCall) contractx.ToolResponse {
	start := d.now()
	sessionID := strings.TrimSpace(call.SessionID)

	if sessionID != "" {
		if !d.busy.acquire(sessionID) {
			d.log.Warn().Str("session_id", sessionID).Str("tool", call.ToolName).Msg("call rejected, session busy")
			return contractx.Failure(contractx.KindBusy, "")
		}
		defer d.busy.release(sessionID)
	}

	out, err := d.graphRunner.Invoke(ctx, nodex.GraphInput{Call: call})
	if err != nil {
		d.log.Error().Err(err).Str("session_id", sessionID).Str("tool", call.ToolName).Msg("dispatch graph failed")
		return contractx.Failure(contractx.KindInternal, "")
	}

	evt := d.log.Info()
	if !out.Response.Success {
		evt = d.log.Warn().Str("kind", string(out.Response.Error.Kind)).Str("error", out.Response.Error.Message)
	}
	evt.Str("session_id", sessionID).
		Str("tool", call.ToolName).
		Bool("success", out.Response.Success).
		Dur("elapsed", d.now().Sub(start)).
		Msg("tool call handled")
	return out.Response
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, contractx.RoundEvent) error { return nil }
