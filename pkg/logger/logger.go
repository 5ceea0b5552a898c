package logx

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type Config struct {
	Debug        bool   `split_words:"true" default:"false"`
	PrettyFormat bool   `split_words:"true" default:"false"`
	Modules      string `split_words:"true" default:"dispatcher=debug,round=debug,scoring=debug,store=info,weather=info,course=info"`
}

var DefaultConfig = &Config{
	Debug:        false,
	PrettyFormat: false,
}

func safe(opts ...Config) *Config {
	if len(opts) == 0 {
		return DefaultConfig
	}
	return &opts[0]
}

// Loggers hands out per-module loggers derived from one root.
// Module levels only apply when Debug is set; otherwise every module logs at info.
type Loggers struct {
	root   zerolog.Logger
	debug  bool
	levels map[string]zerolog.Level
}

func New(opts ...Config) *Loggers {
	return NewWithWriter(os.Stderr, opts...)
}

func NewWithWriter(w io.Writer, opts ...Config) *Loggers {
	conf := safe(opts...)

	var root zerolog.Logger
	if conf.PrettyFormat {
		root = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	} else {
		root = zerolog.New(w).With().Timestamp().Logger()
	}

	if conf.Debug {
		root = root.Level(zerolog.DebugLevel).With().Caller().Logger()
	} else {
		root = root.Level(zerolog.InfoLevel)
	}

	return &Loggers{
		root:   root,
		debug:  conf.Debug,
		levels: ParseModules(conf.Modules),
	}
}

// For returns the logger for a module, tagged with a module field.
func (l *Loggers) For(module string) zerolog.Logger {
	if l == nil {
		return zerolog.Nop()
	}
	logger := l.root.With().Str("module", module).Logger()
	if !l.debug {
		return logger
	}
	if lvl, ok := l.levels[module]; ok {
		return logger.Level(lvl)
	}
	return logger.Level(zerolog.WarnLevel)
}

func (l *Loggers) Root() zerolog.Logger {
	if l == nil {
		return zerolog.Nop()
	}
	return l.root
}

// ParseModules reads "module=level" pairs separated by commas.
// Unknown levels are skipped.
func ParseModules(raw string) map[string]zerolog.Level {
	out := make(map[string]zerolog.Level)
	for _, part := range strings.Split(raw, ",") {
		name, level, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
		if err != nil || name == "" {
			continue
		}
		out[name] = lvl
	}
	return out
}
