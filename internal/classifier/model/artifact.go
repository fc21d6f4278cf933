package model

import (
	"fmt"
)

// Artifact is the serialized form of a trained text classifier: a TF-IDF
// vectorizer followed by a linear model over the label set.
type Artifact struct {
	Name         string         `json:"name"`
	Version      string         `json:"version"`
	Labels       []string       `json:"labels"`
	Vectorizer   VectorizerSpec `json:"vectorizer"`
	Coefficients [][]float64    `json:"coefficients"`
	Intercepts   []float64      `json:"intercepts"`
}

type VectorizerSpec struct {
	NgramMin    int            `json:"ngram_min"`
	NgramMax    int            `json:"ngram_max"`
	SublinearTF bool           `json:"sublinear_tf"`
	Norm        string         `json:"norm"`
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
}

const (
	NormL2   = "l2"
	NormNone = "none"
)

// Binary reports whether the artifact stores a single decision row for a
// two-label problem.
func (a *Artifact) Binary() bool {
	return len(a.Labels) == 2 && len(a.Coefficients) == 1
}

// Validate checks the artifact is internally consistent. A classifier is
// never built from an artifact that fails validation.
func (a *Artifact) Validate() error {
	if len(a.Labels) < 2 {
		return fmt.Errorf("artifact %q: need at least 2 labels, got %d", a.Name, len(a.Labels))
	}

	seen := make(map[string]struct{}, len(a.Labels))
	for _, l := range a.Labels {
		if l == "" {
			return fmt.Errorf("artifact %q: empty label", a.Name)
		}
		if _, dup := seen[l]; dup {
			return fmt.Errorf("artifact %q: duplicate label %q", a.Name, l)
		}
		seen[l] = struct{}{}
	}

	if err := a.Vectorizer.validate(); err != nil {
		return fmt.Errorf("artifact %q: %w", a.Name, err)
	}

	rows := len(a.Coefficients)
	if rows != len(a.Labels) && !a.Binary() {
		return fmt.Errorf("artifact %q: %d coefficient rows for %d labels", a.Name, rows, len(a.Labels))
	}
	if len(a.Intercepts) != rows {
		return fmt.Errorf("artifact %q: %d intercepts for %d coefficient rows", a.Name, len(a.Intercepts), rows)
	}

	features := len(a.Vectorizer.IDF)
	for i, row := range a.Coefficients {
		if len(row) != features {
			return fmt.Errorf("artifact %q: coefficient row %d has %d weights, vectorizer has %d features",
				a.Name, i, len(row), features)
		}
	}

	return nil
}

func (v *VectorizerSpec) validate() error {
	if v.NgramMin < 1 || v.NgramMax < v.NgramMin {
		return fmt.Errorf("invalid ngram range [%d, %d]", v.NgramMin, v.NgramMax)
	}

	switch v.Norm {
	case NormL2, NormNone, "":
	default:
		return fmt.Errorf("unsupported norm %q", v.Norm)
	}

	if len(v.Vocabulary) == 0 {
		return fmt.Errorf("empty vocabulary")
	}

	for term, idx := range v.Vocabulary {
		if idx < 0 || idx >= len(v.IDF) {
			return fmt.Errorf("vocabulary term %q has index %d outside [0, %d)", term, idx, len(v.IDF))
		}
	}

	return nil
}
