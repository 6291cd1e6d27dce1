package bayes

import (
	"github.com/desertthunder/newspet/internal/models"
	"github.com/desertthunder/newspet/internal/shared"
)

// Factory bootstraps trainers and pipelines for new model identities.
type Factory struct {
	Labels         []string
	Alpha          float64
	MinTokenLength int
	StopWords      []string
}

// NewFactory creates a Factory from the classifier section of the config.
func NewFactory(cfg shared.ClassifierConfig) *Factory {
	return &Factory{
		Labels:         cfg.Labels,
		Alpha:          cfg.Alpha,
		MinTokenLength: cfg.MinTokenLength,
		StopWords:      cfg.StopWords,
	}
}

func (f *Factory) NewTrainer() models.Trainer {
	return NewTrainer(f.Alpha, f.Labels)
}

func (f *Factory) NewPipeline() models.Pipeline {
	return NewPipeline(f.MinTokenLength, f.StopWords)
}
