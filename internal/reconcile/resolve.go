package reconcile

import (
	"context"

	"github.com/jonathan/jobtrail/internal/store"
	"github.com/jonathan/jobtrail/internal/types"
)

// MatchPolicy controls how aggressively messages on new threads are merged
// into existing records. Extending matching beyond the exact job URL changes
// false-merge risk, so the policy is explicit configuration.
type MatchPolicy string

// Match policies
const (
	// MatchThreadOnly merges only messages sharing a thread id.
	MatchThreadOnly MatchPolicy = "thread"
	// MatchThreadAndURL additionally merges messages whose extracted job URL
	// exactly matches a stored record's URL.
	MatchThreadAndURL MatchPolicy = "thread+url"
)

// Resolver finds zero-or-one existing record for a message.
type Resolver struct {
	store  store.Store
	policy MatchPolicy
}

// NewResolver creates a resolver over the given store.
func NewResolver(st store.Store, policy MatchPolicy) *Resolver {
	if policy == "" {
		policy = MatchThreadAndURL
	}
	return &Resolver{store: st, policy: policy}
}

// ResolveThread is the cheap thread-id lookup. It runs before extraction so
// duplicate messages are skipped without spending an oracle call.
func (r *Resolver) ResolveThread(ctx context.Context, threadID string) (*types.ApplicationRecord, error) {
	return r.store.FindByThread(ctx, threadID)
}

// Resolve completes identity resolution after extraction. byThread is the
// result of ResolveThread; when the thread is new and policy allows, a
// conservative exact-URL match is tried. Returns nil for a new identity.
func (r *Resolver) Resolve(ctx context.Context, byThread *types.ApplicationRecord, cand *types.ExtractionCandidate) (*types.ApplicationRecord, error) {
	if byThread != nil {
		return byThread, nil
	}
	if r.policy != MatchThreadAndURL || cand == nil {
		return nil, nil
	}
	url, ok := cand.JobURL.Get()
	if !ok || url == "" {
		return nil, nil
	}
	return r.store.FindByJobURL(ctx, url)
}
