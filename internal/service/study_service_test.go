package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"metacalc/internal/export"
	"metacalc/internal/model"
	"metacalc/internal/schema"
	"metacalc/internal/storage"
	"metacalc/internal/store"
)

func newStudyService(t *testing.T) *StudyService {
	t.Helper()
	st := store.New(storage.NewMemory())
	require.NoError(t, st.Load(context.Background()))
	return NewStudyService(st, nil, zap.NewNop())
}

func completeAllDomains(t *testing.T, svc *AssessmentService, studyID string, j model.Judgment) {
	t.Helper()
	ctx := context.Background()
	for _, d := range schema.DomainsFor(model.EffectAssignment) {
		_, err := svc.SetJudgment(ctx, studyID, d.Key, j)
		require.NoError(t, err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	svc := newStudyService(t)
	ctx := context.Background()

	a, err := svc.Add(ctx)
	require.NoError(t, err)
	_, err = svc.SetInfo(ctx, a.ID, store.StudyInfo{Title: "Kasyan 2021", Authors: "Kasyan", Year: "2021", Outcome: "Pain score"})
	require.NoError(t, err)
	_, err = svc.Duplicate(ctx, a.ID)
	require.NoError(t, err)

	data, err := svc.Export()
	require.NoError(t, err)

	before := svc.List()
	count, err := svc.Import(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	after := svc.List()
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID, "ids and order survive the round trip")
		assert.Equal(t, before[i].Title, after[i].Title)
	}
}

func TestMalformedImportLeavesStoreUntouched(t *testing.T) {
	svc := newStudyService(t)
	ctx := context.Background()

	a, err := svc.Add(ctx)
	require.NoError(t, err)
	_, err = svc.SetInfo(ctx, a.ID, store.StudyInfo{Title: "Study A"})
	require.NoError(t, err)

	// A top-level object is not an array of studies.
	_, err = svc.Import(ctx, []byte(`{"studies":[]}`))
	assert.ErrorIs(t, err, export.ErrMalformedImport)

	studies := svc.List()
	require.Len(t, studies, 1)
	assert.Equal(t, "Study A", studies[0].Title)
}

func TestDeleteNotFound(t *testing.T) {
	svc := newStudyService(t)
	assert.ErrorIs(t, svc.Delete(context.Background(), "missing"), store.ErrNotFound)
}
