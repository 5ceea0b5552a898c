package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

var (
	envMu       sync.Mutex
	envFilePath string
)

// Flags is the whole command-line surface of the caddy binary.
type Flags struct {
	EnvFile    string
	Debug      bool
	PrintTools bool
}

// ParseFlags parses args (without the program name) and remembers the env
// file for subsequent New calls.
func ParseFlags(args []string, output io.Writer) (Flags, error) {
	var f Flags
	fs := flag.NewFlagSet("caddie", flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}
	fs.StringVar(&f.EnvFile, "env", "", "path to .env file")
	fs.BoolVar(&f.Debug, "debug", false, "enable per-module debug logging from LOG_MODULES")
	fs.BoolVar(&f.PrintTools, "tools", false, "print the tool specs and exit")
	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}
	f.EnvFile = strings.TrimSpace(f.EnvFile)
	UseEnvFile(f.EnvFile)
	return f, nil
}

// UseEnvFile sets the .env path used by New. Empty means ".env" when present.
func UseEnvFile(path string) {
	envMu.Lock()
	defer envMu.Unlock()
	envFilePath = strings.TrimSpace(path)
}

func MustNew[T any](prefix string) *T {
	conf, err := New[T](prefix)
	if err != nil {
		panic(err)
	}
	return conf
}

func New[T any](prefix string) (*T, error) {
	envMu.Lock()
	path := envFilePath
	envMu.Unlock()
	return NewFromFile[T](prefix, path)
}

// NewFromFile exports the given env file (or ./.env if path is empty and the
// file exists) and processes the environment into T.
func NewFromFile[T any](prefix string, path string) (*T, error) {
	if path != "" {
		if err := exportEnvironment(path); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	} else if err := exportEnvironmentIfExists(".env"); err != nil {
		return nil, fmt.Errorf("failed to load default env file: %w", err)
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, err
	}

	return &conf, nil
}

func exportEnvironmentIfExists(filepath string) error {
	info, err := os.Stat(filepath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	return exportEnvironment(filepath)
}

func exportEnvironment(filepath string) error {
	v := viper.New()
	v.SetConfigFile(filepath)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for k, val := range v.AllSettings() {
		key := strings.ToUpper(k)
		// real environment wins over the file
		if _, ok := os.LookupEnv(key); ok {
			continue
		}
		if err := os.Setenv(key, fmt.Sprint(val)); err != nil {
			return err
		}
	}

	return nil
}
