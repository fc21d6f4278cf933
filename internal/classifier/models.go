package classifier

import (
	"fmt"
	"path/filepath"

	"complaint-triage/internal/classifier/model"
	"complaint-triage/internal/models"
)

const (
	CategoryModelFile = "category_model.json"
	PriorityModelFile = "priority_model.json"
)

// Models holds the two trained classifiers. It is built once by
// LoadModels or NewModels and never modified.
type Models struct {
	Category *model.Classifier
	Priority *model.Classifier
}

// NewModels checks that every label either classifier can emit belongs to
// the closed Category and Priority sets.
func NewModels(category, priority *model.Classifier) (*Models, error) {
	if category == nil || priority == nil {
		return nil, fmt.Errorf("both category and priority models are required")
	}

	for _, l := range category.Labels() {
		if !models.Category(l).Valid() {
			return nil, fmt.Errorf("category model %q: unknown label %q", category.Name(), l)
		}
	}
	for _, l := range priority.Labels() {
		if !models.Priority(l).Valid() {
			return nil, fmt.Errorf("priority model %q: unknown label %q", priority.Name(), l)
		}
	}

	return &Models{Category: category, Priority: priority}, nil
}

// LoadModels reads both artifacts from dir.
func LoadModels(dir string) (*Models, error) {
	return LoadModelFiles(
		filepath.Join(dir, CategoryModelFile),
		filepath.Join(dir, PriorityModelFile),
	)
}

func LoadModelFiles(categoryPath, priorityPath string) (*Models, error) {
	category, err := model.LoadFile(categoryPath)
	if err != nil {
		return nil, fmt.Errorf("category model: %w", err)
	}

	priority, err := model.LoadFile(priorityPath)
	if err != nil {
		return nil, fmt.Errorf("priority model: %w", err)
	}

	return NewModels(category, priority)
}

// Info describes both loaded classifiers.
func (m *Models) Info() []model.Info {
	return []model.Info{m.Category.Info(), m.Priority.Info()}
}
