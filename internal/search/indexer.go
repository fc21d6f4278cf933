// Package search keeps classified complaints in an Elasticsearch index so
// reviewers can find similar complaints by text.
package search

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"complaint-triage/internal/common/database"
	"complaint-triage/internal/common/errors"
	"complaint-triage/internal/common/logger"
	"complaint-triage/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/goccy/go-json"
)

// Mapping is applied when the complaints index does not exist yet.
const Mapping = `{
  "mappings": {
    "properties": {
      "id":                  {"type": "long"},
      "complaint_text":      {"type": "text", "analyzer": "english"},
      "category":            {"type": "keyword"},
      "priority":            {"type": "keyword"},
      "category_confidence": {"type": "float"},
      "priority_confidence": {"type": "float"},
      "rule_override":       {"type": "boolean"},
      "rule_explanation":    {"type": "text", "index": false},
      "sentiment_label":     {"type": "keyword"},
      "sentiment_score":     {"type": "float"},
      "sentiment_boosted":   {"type": "boolean"},
      "classified_at":       {"type": "date"}
    }
  }
}`

const (
	DefaultSearchSize = 20
	MaxSearchSize     = 100
)

// Document is the indexed form of a classified complaint.
type Document struct {
	ID                 int64                 `json:"id"`
	ComplaintText      string                `json:"complaint_text"`
	Category           models.Category       `json:"category"`
	Priority           models.Priority       `json:"priority"`
	CategoryConfidence float64               `json:"category_confidence"`
	PriorityConfidence float64               `json:"priority_confidence"`
	RuleOverride       bool                  `json:"rule_override"`
	RuleExplanation    string                `json:"rule_explanation"`
	SentimentLabel     models.SentimentLabel `json:"sentiment_label"`
	SentimentScore     float64               `json:"sentiment_score"`
	SentimentBoosted   bool                  `json:"sentiment_boosted"`
	ClassifiedAt       time.Time             `json:"classified_at"`
}

// NewDocument merges the stored record with the prediction that produced it.
func NewDocument(rec *models.ComplaintRecord, p *models.Prediction) Document {
	return Document{
		ID:                 rec.ID,
		ComplaintText:      p.ComplaintText,
		Category:           p.Category,
		Priority:           p.Priority,
		CategoryConfidence: p.CategoryConfidence,
		PriorityConfidence: p.PriorityConfidence,
		RuleOverride:       p.RuleOverride,
		RuleExplanation:    p.RuleExplanation,
		SentimentLabel:     p.SentimentLabel,
		SentimentScore:     p.SentimentScore,
		SentimentBoosted:   p.SentimentBoosted,
		ClassifiedAt:       rec.ClassifiedAt,
	}
}

// Query filters a full text search. Empty fields are ignored.
type Query struct {
	Text     string
	Category models.Category
	Priority models.Priority
	Size     int
}

type Hit struct {
	Document
	Score float64 `json:"score"`
}

type Result struct {
	Total int   `json:"total"`
	Took  int   `json:"took_ms"`
	Hits  []Hit `json:"hits"`
}

type Indexer struct {
	es     *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewIndexer(es *database.ElasticsearchClient, index string, log logger.Logger) *Indexer {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Indexer{
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "search", "index": index}),
	}
}

// EnsureIndex creates the index with Mapping if it is missing.
func (ix *Indexer) EnsureIndex(ctx context.Context) error {
	if err := ix.es.EnsureIndex(ctx, ix.index, Mapping); err != nil {
		return errors.NewElasticsearchConnectionFailedError(err)
	}
	return nil
}

// Index writes doc under its complaint id, replacing any earlier version.
func (ix *Indexer) Index(ctx context.Context, doc Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %d: %w", doc.ID, err)
	}

	req := esapi.IndexRequest{
		Index:      ix.index,
		DocumentID: strconv.FormatInt(doc.ID, 10),
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, ix.es.Client)
	if err != nil {
		return errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewSearchQueryFailedError("index_complaint", fmt.Errorf("status %s", res.Status()))
	}
	return nil
}

// Search runs q against the index, best matches first.
func (ix *Indexer) Search(ctx context.Context, q Query) (*Result, error) {
	body, err := json.Marshal(buildQuery(q))
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := ix.es.Client.Search(
		ix.es.Client.Search.WithContext(ctx),
		ix.es.Client.Search.WithIndex(ix.index),
		ix.es.Client.Search.WithBody(bytes.NewReader(body)),
		ix.es.Client.Search.WithSize(clampSize(q.Size)),
	)
	if err != nil {
		return nil, errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, errors.NewIndexNotFoundError(ix.index)
	}
	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError("search_complaints", fmt.Errorf("status %s", res.Status()))
	}

	var raw searchResponse
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, errors.NewSearchQueryFailedError("search_complaints", err)
	}

	result := &Result{
		Total: raw.Hits.Total.Value,
		Took:  raw.Took,
		Hits:  make([]Hit, 0, len(raw.Hits.Hits)),
	}
	for _, h := range raw.Hits.Hits {
		result.Hits = append(result.Hits, Hit{Document: h.Source, Score: h.Score})
	}

	ix.logger.Debug("search completed", map[string]interface{}{
		"total": result.Total,
		"took":  result.Took,
	})
	return result, nil
}

type searchResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Score  float64  `json:"_score"`
			Source Document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func clampSize(size int) int {
	switch {
	case size <= 0:
		return DefaultSearchSize
	case size > MaxSearchSize:
		return MaxSearchSize
	}
	return size
}

func buildQuery(q Query) map[string]interface{} {
	must := []interface{}{}
	filter := []interface{}{}

	if q.Text != "" {
		must = append(must, map[string]interface{}{
			"match": map[string]interface{}{
				"complaint_text": map[string]interface{}{
					"query":    q.Text,
					"operator": "or",
				},
			},
		})
	} else {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	if q.Category != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"category": string(q.Category)},
		})
	}
	if q.Priority != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"priority": string(q.Priority)},
		})
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
	}
	if q.Text == "" {
		query["sort"] = []interface{}{
			map[string]interface{}{"classified_at": map[string]interface{}{"order": "desc"}},
		}
	}
	return query
}
