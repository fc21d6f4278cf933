package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var implementedTaskTypes = []string{"complaint.classify", "complaint.feedback.submit"}

func validActivity(id, taskType string) Activity {
	return Activity{
		ID:                   id,
		DisplayName:          "Activity " + id,
		Category:             "complaint",
		TaskType:             taskType,
		ImplementationStatus: "completed",
		Timeout:              "10s",
	}
}

func TestLoadRegistry_ShippedFile(t *testing.T) {
	reg, err := LoadRegistry("../../configs/activity-registry.json")
	require.NoError(t, err)

	require.NoError(t, reg.Validate(implementedTaskTypes))

	activity, ok := reg.Find("complaint.classify")
	require.True(t, ok)
	assert.Equal(t, "classify-complaint", activity.ID)
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err = LoadRegistry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse registry")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		activities []Activity
		wantErr    string
	}{
		{
			name: "valid",
			activities: []Activity{
				validActivity("classify-complaint", "complaint.classify"),
				validActivity("submit-feedback", "complaint.feedback.submit"),
			},
		},
		{
			name:    "empty registry",
			wantErr: "registry contains no activities",
		},
		{
			name: "duplicate id",
			activities: []Activity{
				validActivity("classify-complaint", "complaint.classify"),
				validActivity("classify-complaint", "complaint.feedback.submit"),
			},
			wantErr: "duplicate activity ID: classify-complaint",
		},
		{
			name: "duplicate task type",
			activities: []Activity{
				validActivity("classify-complaint", "complaint.classify"),
				validActivity("classify-again", "complaint.classify"),
			},
			wantErr: "duplicate task type: complaint.classify",
		},
		{
			name: "implemented worker missing from registry",
			activities: []Activity{
				validActivity("classify-complaint", "complaint.classify"),
			},
			wantErr: "task type complaint.feedback.submit is implemented but not registered",
		},
		{
			name: "completed activity without worker",
			activities: []Activity{
				validActivity("classify-complaint", "complaint.classify"),
				validActivity("submit-feedback", "complaint.feedback.submit"),
				validActivity("route-complaint", "complaint.route"),
			},
			wantErr: "activity route-complaint is marked completed but no worker handles complaint.route",
		},
		{
			name: "planned activity without worker is fine",
			activities: func() []Activity {
				planned := validActivity("route-complaint", "complaint.route")
				planned.ImplementationStatus = "planned"
				return []Activity{
					validActivity("classify-complaint", "complaint.classify"),
					validActivity("submit-feedback", "complaint.feedback.submit"),
					planned,
				}
			}(),
		},
		{
			name: "unknown status",
			activities: func() []Activity {
				a := validActivity("classify-complaint", "complaint.classify")
				a.ImplementationStatus = "shipped"
				return []Activity{a}
			}(),
			wantErr: `unknown implementation status "shipped"`,
		},
		{
			name: "invalid timeout",
			activities: func() []Activity {
				a := validActivity("classify-complaint", "complaint.classify")
				a.Timeout = "ten seconds"
				return []Activity{a}
			}(),
			wantErr: `invalid timeout "ten seconds"`,
		},
		{
			name: "missing display name",
			activities: func() []Activity {
				a := validActivity("classify-complaint", "complaint.classify")
				a.DisplayName = ""
				return []Activity{a}
			}(),
			wantErr: "missing required field: DisplayName",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &ActivityRegistry{Version: "1.0.0", Activities: tt.activities}
			err := reg.Validate(implementedTaskTypes)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	reg := &ActivityRegistry{
		Version:    "1.0.0",
		Activities: []Activity{validActivity("classify-complaint", "complaint.classify")},
	}

	require.NoError(t, reg.Save(path))
	assert.NotEmpty(t, reg.LastUpdated)

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, reg.LastUpdated, loaded.LastUpdated)
	_, ok := loaded.Find("complaint.classify")
	assert.True(t, ok)
	_, ok = loaded.Find("complaint.route")
	assert.False(t, ok)
}
