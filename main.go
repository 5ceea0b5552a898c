package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	contractx "github.com/tanpawarit/golf-caddy-agent/agent/contract"
	"github.com/tanpawarit/golf-caddy-agent/agent/course"
	"github.com/tanpawarit/golf-caddy-agent/agent/dispatcher"
	"github.com/tanpawarit/golf-caddy-agent/agent/llm"
	promptx "github.com/tanpawarit/golf-caddy-agent/agent/prompt"
	roundx "github.com/tanpawarit/golf-caddy-agent/agent/round"
	"github.com/tanpawarit/golf-caddy-agent/agent/scoring"
	storex "github.com/tanpawarit/golf-caddy-agent/agent/store"
	toolx "github.com/tanpawarit/golf-caddy-agent/agent/tool"
	weatherx "github.com/tanpawarit/golf-caddy-agent/agent/weather"
	configx "github.com/tanpawarit/golf-caddy-agent/pkg/config"
	logx "github.com/tanpawarit/golf-caddy-agent/pkg/logger"
	openrouterx "github.com/tanpawarit/golf-caddy-agent/pkg/openrouter"
	qstashx "github.com/tanpawarit/golf-caddy-agent/pkg/qstash"
)

type AppConfig struct {
	ClubName     string        `split_words:"true" default:"Sunny Hills Golf Club"`
	ResumeWindow time.Duration `split_words:"true" default:"4h"`
	DefaultPar   int           `split_words:"true" default:"4"`
	CourseFile   string        `split_words:"true"`
	Workers      int           `split_words:"true" default:"8"`
}

// outputLine is one response envelope tagged with the call it answers.
type outputLine struct {
	SessionID string `json:"session_id"`
	ToolName  string `json:"tool_name"`
	contractx.ToolResponse
}

func main() {
	flags, err := configx.ParseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	appCfg := configx.MustNew[AppConfig]("CADDIE")
	prompts, err := promptx.LoadPromptSet(appCfg.ClubName)
	if err != nil {
		panic(err)
	}

	if flags.PrintTools {
		if err := printTools(os.Stdout, prompts); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	logCfg := configx.MustNew[logx.Config]("LOG")
	logCfg.Debug = logCfg.Debug || flags.Debug
	logs := logx.New(*logCfg)
	log := logs.For("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, closeAll, err := build(ctx, *appCfg, prompts, logs)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer closeAll()

	log.Info().Str("club", appCfg.ClubName).Msg("caddie ready, reading tool calls from stdin")
	serve(ctx, d, os.Stdin, os.Stdout, appCfg.Workers, log)
}

func build(ctx context.Context, appCfg AppConfig, prompts promptx.PromptSet, logs *logx.Loggers) (*dispatcher.Dispatcher, func(), error) {
	storeCfg, err := configx.New[storex.Config]("STORE")
	if err != nil {
		return nil, nil, err
	}
	client, err := storex.Open(ctx, *storeCfg, logs.For("store"))
	if err != nil {
		return nil, nil, err
	}
	closeAll := func() { _ = client.Close() }

	guide, err := course.Load(appCfg.CourseFile)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	var knowledge contractx.CourseKnowledge = guide
	llmCfg, err := configx.New[llm.Config]("OPENROUTER")
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	if err := llmCfg.Validate(); err != nil {
		closeAll()
		return nil, nil, err
	}
	if chat := openrouterx.NewChat(llmCfg.OpenRouterFor(llm.PurposeHoleInfo)); chat != nil {
		knowledge = course.NewDescriber(guide, chat, prompts, logs.For("course"))
	}

	weatherCfg, err := configx.New[weatherx.Config]("WEATHER")
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	label := strings.TrimSpace(weatherCfg.Location)
	if label == "" {
		label = guide.Location().Label
	}
	var provider contractx.WeatherProvider
	if om, err := weatherx.NewOpenMeteo(*weatherCfg, label, nil); err != nil {
		logs.For("weather").Warn().Err(err).Msg("live weather disabled")
	} else {
		provider = om
	}
	weather := weatherx.NewService(provider, label, logs.For("weather"))

	var events contractx.EventPublisher
	qstashCfg, err := configx.New[qstashx.Config]("QSTASH")
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	if qstashCfg.Enabled() {
		qc, err := qstashx.NewClient(*qstashCfg)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		events = qstashx.NewTopic(qc, qstashCfg.Destination, func(e contractx.RoundEvent) string {
			return e.Type + "-" + e.SessionID
		})
	}

	rounds := roundx.NewStore(client, roundx.NewResolver(appCfg.ResumeWindow), logs.For("round"))
	scores := scoring.NewAggregator(guide, appCfg.DefaultPar, logs.For("scoring"))

	d, err := dispatcher.New(rounds, scores, knowledge, weather, events, dispatcher.Config{
		ClubName:   appCfg.ClubName,
		CourseName: guide.Name(),
	}, logs.For("dispatcher"))
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	return d, closeAll, nil
}

// serve reads newline-delimited tool calls and writes one envelope per call.
// Calls run concurrently; the dispatcher rejects overlapping calls per session.
func serve(ctx context.Context, d *dispatcher.Dispatcher, in io.Reader, out io.Writer, workers int, log zerolog.Logger) {
	if workers <= 0 {
		workers = 1
	}
	var mu sync.Mutex
	enc := json.NewEncoder(out)
	write := func(line outputLine) {
		mu.Lock()
		defer mu.Unlock()
		if err := enc.Encode(line); err != nil {
			log.Error().Err(err).Msg("write response")
		}
	}

	p := pool.New().WithMaxGoroutines(workers)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var call contractx.ToolCall
		if err := json.Unmarshal([]byte(raw), &call); err != nil {
			write(outputLine{ToolResponse: contractx.Failure(contractx.KindInvalidArguments, "request is not a valid tool call envelope")})
			continue
		}
		p.Go(func() {
			write(outputLine{
				SessionID:    call.SessionID,
				ToolName:     call.ToolName,
				ToolResponse: d.Dispatch(ctx, call),
			})
		})
	}
	p.Wait()
	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("read tool calls")
	}
}

func printTools(w io.Writer, prompts promptx.PromptSet) error {
	specs, err := toolx.Specs()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"system_prompt": prompts.System,
		"tools":         specs,
	})
}
