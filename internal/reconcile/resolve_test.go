package reconcile

import (
	"context"
	"testing"

	"github.com/jonathan/jobtrail/internal/store"
	"github.com/jonathan/jobtrail/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()
	m := store.NewMemory()

	res := newEngine().Reconcile(nil, message("m1", "t1", "Applied", testNow), func() *types.ExtractionCandidate {
		c := candidate(types.StatusApplied)
		c.JobURL = types.Some("https://jobs.lever.co/acme/1")
		return c
	}())
	require.NoError(t, m.Create(ctx, res.Record))
	return m
}

func TestResolveByThread(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(seedStore(t), MatchThreadAndURL)

	byThread, err := r.ResolveThread(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, byThread)

	rec, err := r.Resolve(ctx, byThread, candidate(types.StatusApplied))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "t1", rec.ThreadID)
}

func TestResolveByJobURL(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(seedStore(t), MatchThreadAndURL)

	cand := candidate(types.StatusApplied)
	cand.JobURL = types.Some("https://jobs.lever.co/acme/1")

	// Different thread, same job URL.
	rec, err := r.Resolve(ctx, nil, cand)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "t1", rec.ThreadID)
}

func TestResolveThreadOnlyPolicyIgnoresURL(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(seedStore(t), MatchThreadOnly)

	cand := candidate(types.StatusApplied)
	cand.JobURL = types.Some("https://jobs.lever.co/acme/1")

	rec, err := r.Resolve(ctx, nil, cand)
	require.NoError(t, err)
	assert.Nil(t, rec, "URL matching disabled by policy")
}

func TestResolveNewIdentity(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(seedStore(t), MatchThreadAndURL)

	t.Run("No URL in candidate", func(t *testing.T) {
		rec, err := r.Resolve(ctx, nil, candidate(types.StatusApplied))
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("URL matches nothing", func(t *testing.T) {
		cand := candidate(types.StatusApplied)
		cand.JobURL = types.Some("https://jobs.lever.co/other/99")
		rec, err := r.Resolve(ctx, nil, cand)
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("Nil candidate", func(t *testing.T) {
		rec, err := r.Resolve(ctx, nil, nil)
		require.NoError(t, err)
		assert.Nil(t, rec)
	})
}
