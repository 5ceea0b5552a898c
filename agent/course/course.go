package course

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	contractx "github.com/tanpawarit/golf-caddy-agent/agent/contract"
	roundx "github.com/tanpawarit/golf-caddy-agent/agent/round"
)

//go:embed sunny_hills.yaml
var defaultCourseRaw []byte

const SourceCourseGuide = "course_guide"

var ErrUnknownHole = errors.New("hole not in course guide")

type Location struct {
	Label     string  `yaml:"label"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

type Hole struct {
	Number      int    `yaml:"number"`
	Par         int    `yaml:"par"`
	Yardage     int    `yaml:"yardage"`
	Handicap    int    `yaml:"handicap"`
	Description string `yaml:"description"`
}

// Document is a course guide as stored on disk.
type Document struct {
	Name     string   `yaml:"name"`
	Location Location `yaml:"location"`
	Holes    []Hole   `yaml:"holes"`
}

// Guide answers par and hole questions from a Document.
type Guide struct {
	doc   Document
	holes map[int]Hole
}

// Load reads the course guide at path, or the built-in Sunny Hills guide when path is empty.
func Load(path string) (*Guide, error) {
	raw := defaultCourseRaw
	if p := strings.TrimSpace(path); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read course file: %w", err)
		}
		raw = b
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Guide, error) {
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode course yaml: %w", err)
	}
	return NewGuide(doc)
}

func NewGuide(doc Document) (*Guide, error) {
	if strings.TrimSpace(doc.Name) == "" {
		return nil, errors.New("course name is required")
	}
	holes := make(map[int]Hole, len(doc.Holes))
	for _, h := range doc.Holes {
		if h.Number < roundx.FirstHole || h.Number > roundx.LastHole {
			return nil, fmt.Errorf("hole number %d out of range", h.Number)
		}
		if !roundx.ValidPar(h.Par) {
			return nil, fmt.Errorf("hole %d has invalid par %d", h.Number, h.Par)
		}
		if _, dup := holes[h.Number]; dup {
			return nil, fmt.Errorf("hole %d listed twice", h.Number)
		}
		holes[h.Number] = h
	}
	if doc.Location.Label == "" {
		doc.Location.Label = doc.Name
	}
	return &Guide{doc: doc, holes: holes}, nil
}

func (g *Guide) Name() string { return g.doc.Name }

func (g *Guide) Location() Location { return g.doc.Location }

func (g *Guide) Par(_ context.Context, holeNumber int) (int, error) {
	h, ok := g.holes[holeNumber]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownHole, holeNumber)
	}
	return h.Par, nil
}

func (g *Guide) HoleInfo(_ context.Context, holeNumber int) (contractx.HoleInfo, error) {
	h, ok := g.holes[holeNumber]
	if !ok {
		return contractx.HoleInfo{}, fmt.Errorf("%w: %d", ErrUnknownHole, holeNumber)
	}
	return contractx.HoleInfo{
		HoleNumber:  h.Number,
		Par:         h.Par,
		Yardage:     h.Yardage,
		Handicap:    h.Handicap,
		Description: strings.TrimSpace(h.Description),
		Source:      SourceCourseGuide,
	}, nil
}

// TotalPar sums the par of every hole in the guide.
func (g *Guide) TotalPar() int {
	total := 0
	for _, h := range g.holes {
		total += h.Par
	}
	return total
}
