package bayes

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/desertthunder/newspet/internal/models"
)

// DefaultAlpha is the Laplace smoothing used when none is configured.
const DefaultAlpha = 1.0

// Trainer accumulates multinomial Naive Bayes counts. Training is incremental:
// every instance updates the counts in place.
type Trainer struct {
	Alpha         float64
	Labels        *Alphabet
	DocCounts     []float64
	FeatureCounts []map[int]float64
	TokenTotals   []float64
	Seen          int
}

// NewTrainer creates an empty trainer that knows the given labels.
func NewTrainer(alpha float64, labels []string) *Trainer {
	if alpha <= 0 {
		alpha = DefaultAlpha
	}
	t := &Trainer{Alpha: alpha, Labels: NewAlphabet()}
	for _, l := range labels {
		t.label(l)
	}
	return t
}

// label returns the index of l, adding a new label with empty counts if needed.
func (t *Trainer) label(l string) int {
	if t.Labels == nil {
		t.Labels = NewAlphabet()
	}
	i, _ := t.Labels.Lookup(l, true)
	for len(t.DocCounts) <= i {
		t.DocCounts = append(t.DocCounts, 0)
		t.TokenTotals = append(t.TokenTotals, 0)
		t.FeatureCounts = append(t.FeatureCounts, map[int]float64{})
	}
	return i
}

// Train runs text through pipe and records it as an instance of label.
func (t *Trainer) Train(pipe *Pipeline, label, text string) error {
	if pipe == nil {
		return errors.New("bayes: nil pipeline")
	}
	return t.Observe(label, pipe.Process(text))
}

// TrainDocument is [Trainer.Train] for callers holding a [models.Pipeline].
func (t *Trainer) TrainDocument(pipe models.Pipeline, label, text string) error {
	p, ok := pipe.(*Pipeline)
	if !ok || p == nil {
		return errors.Newf("bayes: unsupported pipeline %T", pipe)
	}
	return t.Train(p, label, text)
}

// Observe records a feature vector as an instance of label.
func (t *Trainer) Observe(label string, fv FeatureVector) error {
	if label == "" {
		return errors.New("bayes: empty label")
	}

	i := t.label(label)
	t.DocCounts[i]++
	if t.FeatureCounts[i] == nil {
		t.FeatureCounts[i] = map[int]float64{}
	}
	for f, n := range fv {
		t.FeatureCounts[i][f] += n
		t.TokenTotals[i] += n
	}
	t.Seen++
	return nil
}

// Instances returns the number of observed instances.
func (t *Trainer) Instances() int {
	return t.Seen
}

// CurrentModel derives a classifier from the current counts. pipe must be the
// *Pipeline this trainer was trained through; the classifier keeps a copy of it.
func (t *Trainer) CurrentModel(pipe models.Pipeline) (models.Classifier, error) {
	p, ok := pipe.(*Pipeline)
	if !ok || p == nil {
		return nil, errors.Newf("bayes: unsupported pipeline %T", pipe)
	}
	return t.Classifier(p)
}

// Classifier is [Trainer.CurrentModel] with a concrete return type.
func (t *Trainer) Classifier(pipe *Pipeline) (*Classifier, error) {
	if t.Labels == nil || t.Labels.Size() == 0 {
		return nil, errors.New("bayes: trainer has no labels")
	}

	nLabels := t.Labels.Size()
	vocab := float64(max(pipe.FeatureCount(), 1))

	var docs float64
	for _, n := range t.DocCounts {
		docs += n
	}

	c := &Classifier{
		Pipe:           pipe.Clone(),
		LabelNames:     append([]string(nil), t.Labels.Entries...),
		LogPriors:      make([]float64, nLabels),
		LogLikelihoods: make([]map[int]float64, nLabels),
		UnseenLogProbs: make([]float64, nLabels),
		Instances:      t.Seen,
	}

	for i := range nLabels {
		c.LogPriors[i] = math.Log((t.DocCounts[i] + t.Alpha) / (docs + t.Alpha*float64(nLabels)))

		denom := t.TokenTotals[i] + t.Alpha*vocab
		c.UnseenLogProbs[i] = math.Log(t.Alpha / denom)

		c.LogLikelihoods[i] = make(map[int]float64, len(t.FeatureCounts[i]))
		for f, n := range t.FeatureCounts[i] {
			c.LogLikelihoods[i][f] = math.Log((n + t.Alpha) / denom)
		}
	}

	return c, nil
}
