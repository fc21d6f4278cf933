// Package model scores normalized complaint text with a trained linear
// classifier and returns a probability for every label.
package model

import (
	"fmt"
	"math"
)

// LabelProbability is one entry of a predicted distribution.
type LabelProbability struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Result is the outcome of a single prediction. Distribution follows the
// artifact's label order and sums to 1.
type Result struct {
	Label        string
	Confidence   float64
	Distribution []LabelProbability
}

// Info describes a loaded classifier.
type Info struct {
	Name           string   `json:"name"`
	Version        string   `json:"version"`
	Labels         []string `json:"labels"`
	VocabularySize int      `json:"vocabulary_size"`
	NgramMin       int      `json:"ngram_min"`
	NgramMax       int      `json:"ngram_max"`
}

// Classifier is immutable once built and safe for concurrent use.
type Classifier struct {
	name       string
	version    string
	labels     []string
	index      map[string]int
	vec        *vectorizer
	coef       [][]float64
	intercepts []float64
	binary     bool
}

// New validates the artifact and builds a classifier from it. The label to
// index mapping is fixed here for the lifetime of the classifier.
func New(a *Artifact) (*Classifier, error) {
	if a == nil {
		return nil, fmt.Errorf("nil artifact")
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	labels := make([]string, len(a.Labels))
	copy(labels, a.Labels)

	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	coef := make([][]float64, len(a.Coefficients))
	for i, row := range a.Coefficients {
		coef[i] = append([]float64(nil), row...)
	}

	return &Classifier{
		name:       a.Name,
		version:    a.Version,
		labels:     labels,
		index:      index,
		vec:        newVectorizer(a.Vectorizer),
		coef:       coef,
		intercepts: append([]float64(nil), a.Intercepts...),
		binary:     a.Binary(),
	}, nil
}

func (c *Classifier) Name() string { return c.name }

// Labels returns a copy of the label set in artifact order.
func (c *Classifier) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// Index returns the position of label in the artifact's label order.
func (c *Classifier) Index(label string) (int, bool) {
	i, ok := c.index[label]
	return i, ok
}

func (c *Classifier) Info() Info {
	return Info{
		Name:           c.name,
		Version:        c.version,
		Labels:         c.Labels(),
		VocabularySize: len(c.vec.vocabulary),
		NgramMin:       c.vec.ngramMin,
		NgramMax:       c.vec.ngramMax,
	}
}

// Predict scores normalized text. Ties on the top probability go to the
// label that comes first in artifact order.
func (c *Classifier) Predict(text string) (Result, error) {
	x := c.vec.transform(text)

	scores := make([]float64, len(c.coef))
	for k, row := range c.coef {
		s := c.intercepts[k]
		for _, f := range x {
			s += row[f.index] * f.weight
		}
		scores[k] = s
	}

	var probs []float64
	if c.binary {
		p := sigmoid(scores[0])
		probs = []float64{1 - p, p}
	} else {
		probs = softmax(scores)
	}

	best := 0
	dist := make([]LabelProbability, len(probs))
	for i, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return Result{}, fmt.Errorf("%s: non-finite probability for label %q", c.name, c.labels[i])
		}
		dist[i] = LabelProbability{Label: c.labels[i], Probability: p}
		if p > probs[best] {
			best = i
		}
	}

	return Result{
		Label:        c.labels[best],
		Confidence:   probs[best],
		Distribution: dist,
	}, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func softmax(scores []float64) []float64 {
	maxScore := math.Inf(-1)
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}

	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
