package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metacalc/internal/engine"
	"metacalc/internal/model"
	"metacalc/internal/schema"
	"metacalc/internal/storage"
)

// failingKV rejects writes while failWrites is set, simulating quota
// exhaustion at the storage layer.
type failingKV struct {
	*storage.Memory
	failWrites bool
}

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	if f.failWrites {
		return errors.New("quota exceeded")
	}
	return f.Memory.Set(ctx, key, value)
}

func newTestStore(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()
	kv := storage.NewMemory()
	s := New(kv)
	require.NoError(t, s.Load(context.Background()))
	return s, kv
}

func TestAddCreatesEmptyStudy(t *testing.T) {
	s, _ := newTestStore(t)
	st, err := s.Add(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, st.ID)
	assert.Equal(t, model.EffectAssignment, st.EffectType)
	assert.Empty(t, st.Assessments)
	assert.Equal(t, model.JudgmentUnset, st.OverallRisk)
	assert.Equal(t, 1, s.Count())
}

func TestAddPersistsImmediately(t *testing.T) {
	s, kv := newTestStore(t)
	_, err := s.Add(context.Background())
	require.NoError(t, err)

	reloaded := New(kv)
	require.NoError(t, reloaded.Load(context.Background()))
	assert.Equal(t, 1, reloaded.Count())
}

func TestDuplicate(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	orig, err := s.Add(ctx)
	require.NoError(t, err)
	orig, err = s.SetInfo(ctx, orig.ID, StudyInfo{Title: "Mayser 1998", Authors: "Mayser", Year: "1998", Outcome: "PASI"})
	require.NoError(t, err)
	_, err = s.Mutate(ctx, orig.ID, func(st *model.Study) error {
		return engine.SetAnswer(st, schema.KeyRandomization, "1.1", model.AnswerYes)
	})
	require.NoError(t, err)

	dup, err := s.Duplicate(ctx, orig.ID)
	require.NoError(t, err)

	assert.NotEqual(t, orig.ID, dup.ID)
	assert.Equal(t, "Mayser 1998 (copy)", dup.Title)
	assert.Equal(t, "Mayser", dup.Authors)
	assert.Equal(t, "1998", dup.Year)
	assert.Empty(t, dup.Assessments)
	assert.Equal(t, model.JudgmentUnset, dup.OverallRisk)

	// The duplicate must not carry the original's answers.
	got, err := s.Get(orig.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AnswerYes, got.Assessments[schema.KeyRandomization].Answers["1.1"])
}

func TestDuplicateNotFound(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Duplicate(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetInfoRejectsInvalidEffectType(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	st, err := s.Add(ctx)
	require.NoError(t, err)

	_, err = s.SetInfo(ctx, st.ID, StudyInfo{EffectType: model.EffectType("intention")})
	assert.ErrorIs(t, err, ErrInvalidEffectType)

	got, err := s.Get(st.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EffectAssignment, got.EffectType)
}

func TestDeleteNotFoundLeavesStoreUntouched(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.Add(ctx)
	require.NoError(t, err)

	err = s.Delete(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, s.Count())
}

func TestDeleteAndClear(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	a, _ := s.Add(ctx)
	b, _ := s.Add(ctx)

	require.NoError(t, s.Delete(ctx, a.ID))
	assert.Equal(t, 1, s.Count())
	_, err := s.Get(b.ID)
	assert.NoError(t, err)

	require.NoError(t, s.Clear(ctx))
	assert.Equal(t, 0, s.Count())
}

func TestOrderPreservedAcrossReload(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()
	var ids []string
	for i := 0; i < 4; i++ {
		st, err := s.Add(ctx)
		require.NoError(t, err)
		ids = append(ids, st.ID)
	}

	reloaded := New(kv)
	require.NoError(t, reloaded.Load(ctx))
	var got []string
	for _, st := range reloaded.List() {
		got = append(got, st.ID)
	}
	assert.Equal(t, ids, got)
}

func TestFailedPersistKeepsMutation(t *testing.T) {
	kv := &failingKV{Memory: storage.NewMemory()}
	s := New(kv)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	st, err := s.Add(ctx)
	require.NoError(t, err)

	kv.failWrites = true
	_, err = s.Mutate(ctx, st.ID, func(study *model.Study) error {
		return engine.SetAnswer(study, schema.KeyRandomization, "1.1", model.AnswerYes)
	})
	require.Error(t, err, "failed persist must be surfaced")

	// The edit is still there in memory so the reviewer's work is not lost.
	got, err := s.Get(st.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AnswerYes, got.Assessments[schema.KeyRandomization].Answers["1.1"])

	// Once writes recover, Save makes it durable.
	kv.failWrites = false
	require.NoError(t, s.Save(ctx))
	reloaded := New(kv.Memory)
	require.NoError(t, reloaded.Load(ctx))
	got, err = reloaded.Get(st.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AnswerYes, got.Assessments[schema.KeyRandomization].Answers["1.1"])
}

func TestMutateRejectsWithoutPersisting(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	st, _ := s.Add(ctx)

	_, err := s.Mutate(ctx, st.ID, func(study *model.Study) error {
		return engine.SetAnswer(study, schema.KeyRandomization, "1.1", model.Answer("bogus"))
	})
	assert.ErrorIs(t, err, engine.ErrInvalidAnswer)
}

func TestReturnedStudiesNeverAliasStoreState(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	added, err := s.Add(ctx)
	require.NoError(t, err)

	mutated, err := s.Mutate(ctx, added.ID, func(st *model.Study) error {
		return engine.SetAnswer(st, schema.KeyRandomization, "1.1", model.AnswerYes)
	})
	require.NoError(t, err)

	// Writing through any returned record must not reach the store: handlers
	// encode these concurrently with mutations on other goroutines.
	added.Assessment(schema.KeyRandomization).Answers["1.1"] = model.AnswerNo
	mutated.Assessments[schema.KeyRandomization].Answers["1.1"] = model.AnswerNo
	for _, st := range s.List() {
		st.Assessment(schema.KeyRandomization).Answers["1.1"] = model.AnswerNo
	}

	got, err := s.Get(added.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AnswerYes, got.Assessments[schema.KeyRandomization].Answers["1.1"])
}

func TestConcurrentListAndMutate(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	st, err := s.Add(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, err := s.Mutate(ctx, st.ID, func(study *model.Study) error {
				return engine.SetAnswer(study, schema.KeyRandomization, "1.1", model.AnswerYes)
			})
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, err := json.Marshal(s.List())
			assert.NoError(t, err)
		}
	}()
	wg.Wait()
}

func TestReplaceAllRemintsCollidingIDs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	imported := []*model.Study{
		{ID: "same", EffectType: model.EffectAssignment},
		{ID: "same", EffectType: model.EffectAssignment},
		{EffectType: model.EffectAdhering},
	}
	require.NoError(t, s.ReplaceAll(ctx, imported))

	seen := make(map[string]bool)
	for _, st := range s.List() {
		require.NotEmpty(t, st.ID)
		assert.False(t, seen[st.ID], "ids must be unique after import")
		seen[st.ID] = true
	}
}
