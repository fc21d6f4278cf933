package complaints

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"

	"complaint-triage/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExportCorrections(t *testing.T) {
	f := setupService(t)

	f.store.On("ListFeedback", mock.Anything, 0).Return([]models.Feedback{
		{ID: 2, ComplaintText: "Wifi, down again", CorrectCategory: models.CategoryTechnical, CorrectPriority: models.PriorityHigh},
		{ID: 1, ComplaintText: "Parcel Late", CorrectCategory: models.CategoryDelivery, CorrectPriority: models.PriorityLow},
	}, nil)

	var buf bytes.Buffer
	n, err := f.svc.ExportCorrections(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	want := "complaint_text,normalized_text,category,priority\n" +
		"Parcel Late,parcel late,Delivery,Low\n" +
		"\"Wifi, down again\",\"wifi, down again\",Technical,High\n"
	assert.Equal(t, want, buf.String())
}

func TestExportCorrections_Empty(t *testing.T) {
	f := setupService(t)
	f.store.On("ListFeedback", mock.Anything, 0).Return([]models.Feedback{}, nil)

	var buf bytes.Buffer
	n, err := f.svc.ExportCorrections(context.Background(), &buf)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "complaint_text,normalized_text,category,priority\n", buf.String())
}

func TestExportCorrections_StoreFailure(t *testing.T) {
	f := setupService(t)
	f.store.On("ListFeedback", mock.Anything, 0).Return([]models.Feedback(nil), stderrors.New("db down"))

	var buf bytes.Buffer
	_, err := f.svc.ExportCorrections(context.Background(), &buf)
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}
