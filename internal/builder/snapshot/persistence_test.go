package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"baitapvui_backend/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeQuestions() model.BuilderState {
	s := model.NewBuilderState("a1")
	s.Questions = []model.DraftQuestion{
		{LocalID: "l1", ID: "q1", Type: model.QuestionMultipleChoice, Content: "2+2?", Order: 0, IsSaved: true,
			Options: []model.Option{{ID: "o1", Text: "4", IsCorrect: true}, {ID: "o2", Text: "5"}}, Media: []model.MediaAttachment{}},
		{LocalID: "l2", Type: model.QuestionEssay, Content: "Explain gravity", Order: 1,
			Options: []model.Option{}, Media: []model.MediaAttachment{{ID: "m1", Type: model.MediaImage, URL: "http://x/m1"}}},
		{LocalID: "l3", Type: model.QuestionEssay, Order: 2, Options: []model.Option{}, Media: []model.MediaAttachment{}},
	}
	s.CurrentQuestionID = "l2"
	s.IsDirty = true
	return s
}

func TestPersistenceRoundTrip(t *testing.T) {
	p := NewPersistence(NewMemoryStore(), "sess")
	want := threeQuestions()

	p.Save(t.Context(), "a1", want)
	got, ok := p.Load(t.Context(), "a1")
	require.True(t, ok)
	assert.Equal(t, want.Questions, got.Questions)
	assert.Equal(t, "l2", got.CurrentQuestionID)
	assert.True(t, got.IsDirty)
}

func TestPersistenceScopedBySessionAndAssignment(t *testing.T) {
	store := NewMemoryStore()
	NewPersistence(store, "s1").Save(t.Context(), "a1", threeQuestions())

	_, ok := NewPersistence(store, "s2").Load(t.Context(), "a1")
	assert.False(t, ok)
	_, ok = NewPersistence(store, "s1").Load(t.Context(), "a2")
	assert.False(t, ok)
	assert.Equal(t, KeyNamespace+"s1:a1", NewPersistence(store, "s1").Key("a1"))
}

func TestSaveSkipsEmptyCleanState(t *testing.T) {
	store := NewMemoryStore()
	p := NewPersistence(store, "sess")

	p.Save(t.Context(), "a1", model.NewBuilderState("a1"))
	assert.Equal(t, 0, store.Len())

	dirty := model.NewBuilderState("a1")
	dirty.IsDirty = true
	p.Save(t.Context(), "a1", dirty)
	assert.Equal(t, 1, store.Len())
}

func TestLoadRemovesCorruptSnapshot(t *testing.T) {
	cases := map[string]string{
		"questions is an object": `{"assignmentId":"a1","questions":{"0":{}}}`,
		"questions missing":      `{"assignmentId":"a1"}`,
		"questions null":         `{"questions":null}`,
		"not json":               `{{{`,
		"wrong element shape":    `{"questions":[{"order":"first"}]}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			store := NewMemoryStore()
			var failures []string
			p := NewPersistence(store, "sess", WithFailureHook(func(op string, _ error) { failures = append(failures, op) }))
			require.NoError(t, store.Set(t.Context(), p.Key("a1"), []byte(payload)))

			_, ok := p.Load(t.Context(), "a1")
			assert.False(t, ok)
			assert.Equal(t, 0, store.Len())
			assert.Contains(t, failures, "corrupt")
		})
	}
}

func TestClearIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	p := NewPersistence(store, "sess")
	p.Save(t.Context(), "a1", threeQuestions())

	p.Clear(t.Context(), "a1")
	p.Clear(t.Context(), "a1")
	_, ok := p.Load(t.Context(), "a1")
	assert.False(t, ok)
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("down") }
func (failingStore) Set(context.Context, string, []byte) error   { return errors.New("quota") }
func (failingStore) Delete(context.Context, string) error        { return errors.New("down") }

func TestStoreFailuresAreSwallowed(t *testing.T) {
	var ops []string
	p := NewPersistence(failingStore{}, "sess", WithFailureHook(func(op string, _ error) { ops = append(ops, op) }))

	p.Save(t.Context(), "a1", threeQuestions())
	_, ok := p.Load(t.Context(), "a1")
	p.Clear(t.Context(), "a1")

	assert.False(t, ok)
	assert.Equal(t, []string{"save", "load", "clear"}, ops)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewRedisStore(rdb, time.Hour)
	p := NewPersistence(store, "sess")
	want := threeQuestions()
	p.Save(t.Context(), "a1", want)

	assert.Equal(t, time.Hour, mr.TTL(p.Key("a1")))
	got, ok := p.Load(t.Context(), "a1")
	require.True(t, ok)
	assert.Equal(t, want.Questions, got.Questions)

	p.Clear(t.Context(), "a1")
	_, err := store.Get(t.Context(), p.Key("a1"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPersistenceScopedByOwner(t *testing.T) {
	store := NewMemoryStore()
	mine := NewPersistence(store, "tab-1", WithOwner(1))
	theirs := NewPersistence(store, "tab-1", WithOwner(2))

	mine.Save(t.Context(), "a1", threeQuestions())
	_, ok := theirs.Load(t.Context(), "a1")
	assert.False(t, ok)
	assert.NotEqual(t, mine.Key("a1"), theirs.Key("a1"))
	assert.Equal(t, KeyNamespace+"user-1:tab-1:a1", mine.Key("a1"))
}
