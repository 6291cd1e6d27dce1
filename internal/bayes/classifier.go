package bayes

import (
	"math"
	"sort"
)

// LabelScore is the posterior probability of one label.
type LabelScore struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Classification lists every label, most probable first.
type Classification struct {
	Label  string       `json:"label"`
	Scores []LabelScore `json:"scores"`
}

// Probability returns the score of label, or zero if it is unknown.
func (c Classification) Probability(label string) float64 {
	for _, s := range c.Scores {
		if s.Label == label {
			return s.Probability
		}
	}
	return 0
}

// Classifier is a trained multinomial Naive Bayes model. It carries its own copy
// of the pipeline so it can classify raw text without the trainer.
type Classifier struct {
	Pipe           *Pipeline
	LabelNames     []string
	LogPriors      []float64
	LogLikelihoods []map[int]float64
	UnseenLogProbs []float64
	Instances      int
}

// Labels returns the label set.
func (c *Classifier) Labels() []string {
	return c.LabelNames
}

// Classify scores text against every label.
func (c *Classifier) Classify(text string) Classification {
	return c.ClassifyFeatures(c.Pipe.Features(text))
}

// ClassifyFeatures scores a feature vector produced by the classifier's pipeline.
func (c *Classifier) ClassifyFeatures(fv FeatureVector) Classification {
	logScores := make([]float64, len(c.LabelNames))
	best := math.Inf(-1)
	for i := range c.LabelNames {
		s := c.LogPriors[i]
		for f, n := range fv {
			lp, ok := c.LogLikelihoods[i][f]
			if !ok {
				lp = c.UnseenLogProbs[i]
			}
			s += n * lp
		}
		logScores[i] = s
		best = max(best, s)
	}

	// normalize in log space to avoid underflow on long documents
	var total float64
	for _, s := range logScores {
		total += math.Exp(s - best)
	}

	scores := make([]LabelScore, len(c.LabelNames))
	for i, l := range c.LabelNames {
		scores[i] = LabelScore{Label: l, Probability: math.Exp(logScores[i]-best) / total}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Probability > scores[j].Probability
	})

	result := Classification{Scores: scores}
	if len(scores) > 0 {
		result.Label = scores[0].Label
	}
	return result
}
