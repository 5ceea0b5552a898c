package prompt

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

var (
	//go:embed template/system.txt
	systemRaw string

	//go:embed template/hole_info.txt
	holeInfoRaw string

	//go:embed template/hole_question.txt
	holeQuestionRaw string
)

var (
	systemTmpl       = template.Must(template.New("system").Parse(strings.TrimSpace(systemRaw)))
	holeInfoTmpl     = template.Must(template.New("hole_info").Parse(strings.TrimSpace(holeInfoRaw)))
	holeQuestionTmpl = template.Must(template.New("hole_question").Parse(strings.TrimSpace(holeQuestionRaw)))
)

// PromptSet holds the rendered prompts for one club.
type PromptSet struct {
	System   string
	HoleInfo string
}

// HoleFacts fills the per-hole question template.
type HoleFacts struct {
	HoleNumber  int
	Par         int
	Yardage     int
	Handicap    int
	Description string
}

// LoadPromptSet renders the club-specific prompts.
func LoadPromptSet(clubName string) (PromptSet, error) {
	data := struct{ ClubName string }{ClubName: strings.TrimSpace(clubName)}
	system, err := render(systemTmpl, data)
	if err != nil {
		return PromptSet{}, err
	}
	holeInfo, err := render(holeInfoTmpl, data)
	if err != nil {
		return PromptSet{}, err
	}
	return PromptSet{System: system, HoleInfo: holeInfo}, nil
}

func HoleQuestion(facts HoleFacts) (string, error) {
	return render(holeQuestionTmpl, facts)
}

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return b.String(), nil
}
