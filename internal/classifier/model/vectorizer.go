package model

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern keeps runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// vectorizer maps text onto the sparse TF-IDF feature space of an artifact.
type vectorizer struct {
	ngramMin    int
	ngramMax    int
	sublinearTF bool
	l2          bool
	vocabulary  map[string]int
	idf         []float64
}

func newVectorizer(spec VectorizerSpec) *vectorizer {
	vocab := make(map[string]int, len(spec.Vocabulary))
	for k, v := range spec.Vocabulary {
		vocab[k] = v
	}
	idf := make([]float64, len(spec.IDF))
	copy(idf, spec.IDF)

	return &vectorizer{
		ngramMin:    spec.NgramMin,
		ngramMax:    spec.NgramMax,
		sublinearTF: spec.SublinearTF,
		l2:          spec.Norm == NormL2 || spec.Norm == "",
		vocabulary:  vocab,
		idf:         idf,
	}
}

type feature struct {
	index  int
	weight float64
}

// transform returns the non-zero feature weights ordered by feature index.
// Terms outside the vocabulary are ignored.
func (v *vectorizer) transform(text string) []feature {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)

	counts := make(map[int]float64)
	for n := v.ngramMin; n <= v.ngramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			term := tokens[i]
			if n > 1 {
				term = strings.Join(tokens[i:i+n], " ")
			}
			if idx, ok := v.vocabulary[term]; ok {
				counts[idx]++
			}
		}
	}

	x := make([]feature, 0, len(counts))
	for idx, tf := range counts {
		if v.sublinearTF {
			tf = 1 + math.Log(tf)
		}
		x = append(x, feature{index: idx, weight: tf * v.idf[idx]})
	}
	sort.Slice(x, func(i, j int) bool { return x[i].index < x[j].index })

	if v.l2 {
		var sumSq float64
		for _, f := range x {
			sumSq += f.weight * f.weight
		}
		if sumSq > 0 {
			norm := math.Sqrt(sumSq)
			for i := range x {
				x[i].weight /= norm
			}
		}
	}

	return x
}
