package match

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/h2h-trivia/internal/question"
)

func newTestSelector(source question.Source, target int) *selector {
	return &selector{
		source: source,
		target: target,
		rng:    newLockedRand(rand.NewPCG(7, 11)),
		logger: zerolog.New(io.Discard),
	}
}

func ids(qs []question.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestInterleave(t *testing.T) {
	a := makeQuestions("a", 3)
	b := makeQuestions("b", 1)
	assert.Equal(t, []string{"a1", "b1", "a2", "a3"}, ids(interleave([2][]question.Question{a, b})))
	assert.Empty(t, interleave([2][]question.Question{}))
}

func TestSelectSplitsAffinityEvenly(t *testing.T) {
	src := &stubSource{byAffinity: map[string][]question.Question{
		"ajax": makeQuestions("a", 5),
		"psv":  makeQuestions("p", 5),
	}}
	got := newTestSelector(src, 4).Select(context.Background(), [2]string{"ajax", "psv"})

	assert.ElementsMatch(t, []string{"a1", "a2", "p1", "p2"}, ids(got))
	assert.ElementsMatch(t, []string{"affinity:ajax:2", "affinity:psv:2"}, src.calls)
}

func TestSelectTopsUpFromPool(t *testing.T) {
	shared := makeQuestions("s", 1)
	src := &stubSource{
		byAffinity: map[string][]question.Question{
			"ajax": append(shared, makeQuestions("a", 1)...),
			"psv":  shared,
		},
		all: append(makeQuestions("a", 1), makeQuestions("x", 4)...),
	}
	got := newTestSelector(src, 5).Select(context.Background(), [2]string{"ajax", "psv"})

	require.Len(t, got, 5)
	assert.Subset(t, ids(got), []string{"s1", "a1"})
	seen := map[string]bool{}
	for _, id := range ids(got) {
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}
	assert.Contains(t, src.calls, "all")
}

func TestSelectSkipsEmptyAffinity(t *testing.T) {
	src := &stubSource{all: makeQuestions("x", 6)}
	got := newTestSelector(src, 3).Select(context.Background(), [2]string{"", ""})

	assert.Len(t, got, 3)
	assert.Equal(t, []string{"all"}, src.calls)
}

func TestSelectFallsBackWhenSourceFails(t *testing.T) {
	src := &stubSource{err: errors.New("db down")}
	got := newTestSelector(src, 10).Select(context.Background(), [2]string{"ajax", "psv"})

	fallback := question.Fallback()
	assert.ElementsMatch(t, ids(fallback), ids(got))
}

func TestSelectWithoutSource(t *testing.T) {
	got := newTestSelector(nil, 3).Select(context.Background(), [2]string{"ajax", ""})
	require.Len(t, got, 3)
	for _, q := range got {
		assert.True(t, q.Valid())
	}
}

func TestSelectDropsUnplayableQuestions(t *testing.T) {
	broken := makeQuestions("bad", 2)
	broken[0].Options = broken[0].Options[:2]
	broken[1].CorrectIndex = 9
	src := &stubSource{all: append(broken, makeQuestions("ok", 2)...)}

	got := newTestSelector(src, 2).Select(context.Background(), [2]string{})
	assert.ElementsMatch(t, []string{"ok1", "ok2"}, ids(got))
}

func TestSelectIsDeterministicForSeed(t *testing.T) {
	src := &stubSource{all: makeQuestions("x", 20)}
	first := newTestSelector(src, 10).Select(context.Background(), [2]string{})
	second := newTestSelector(src, 10).Select(context.Background(), [2]string{})
	assert.Equal(t, ids(first), ids(second))
}
