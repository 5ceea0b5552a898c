package course

import (
	"context"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/golf-caddy-agent/agent/contract"
	promptx "github.com/tanpawarit/golf-caddy-agent/agent/prompt"
)

const SourceKnowledgeModel = "knowledge_model"

// Completer is a single-turn language model call.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Describer narrates holes through a language model, grounded on the guide's
// facts. Par always comes from the guide.
type Describer struct {
	guide  *Guide
	model  Completer
	system string
	log    zerolog.Logger
}

func NewDescriber(guide *Guide, model Completer, prompts promptx.PromptSet, log zerolog.Logger) *Describer {
	return &Describer{guide: guide, model: model, system: prompts.HoleInfo, log: log}
}

func (d *Describer) Par(ctx context.Context, holeNumber int) (int, error) {
	return d.guide.Par(ctx, holeNumber)
}

// HoleInfo falls back to the guide's own description when the model fails.
func (d *Describer) HoleInfo(ctx context.Context, holeNumber int) (contractx.HoleInfo, error) {
	info, err := d.guide.HoleInfo(ctx, holeNumber)
	if err != nil {
		return contractx.HoleInfo{}, err
	}
	if d.model == nil {
		return info, nil
	}

	question, err := promptx.HoleQuestion(promptx.HoleFacts{
		HoleNumber:  info.HoleNumber,
		Par:         info.Par,
		Yardage:     info.Yardage,
		Handicap:    info.Handicap,
		Description: info.Description,
	})
	if err != nil {
		d.log.Warn().Err(err).Int("hole", holeNumber).Msg("build hole question")
		return info, nil
	}

	text, err := d.model.Complete(ctx, d.system, question)
	if err != nil {
		d.log.Warn().Err(err).Int("hole", holeNumber).Msg("knowledge model unavailable, using course guide")
		return info, nil
	}
	info.Description = text
	info.Source = SourceKnowledgeModel
	return info, nil
}
