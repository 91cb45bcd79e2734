package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobtrail/internal/extract"
	"github.com/jonathan/jobtrail/internal/store"
	"github.com/jonathan/jobtrail/internal/types"
)

type fakeSource struct {
	messages []*types.EmailMessage
	listErr  error
	getErrs  map[string]error
}

func (f *fakeSource) ListCandidateMessages(_ context.Context, _ time.Time) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	ids := make([]string, len(f.messages))
	for i, m := range f.messages {
		ids[i] = m.ID
	}
	return ids, nil
}

func (f *fakeSource) GetMessage(_ context.Context, id string) (*types.EmailMessage, error) {
	if err, ok := f.getErrs[id]; ok {
		return nil, err
	}
	for _, m := range f.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, errors.New("not found")
}

type fakeExtractor struct {
	candidates map[string]*types.ExtractionCandidate
	errs       map[string]error
	calls      int
}

func (f *fakeExtractor) Extract(_ context.Context, msg *types.EmailMessage) (*types.ExtractionCandidate, error) {
	f.calls++
	if err, ok := f.errs[msg.ID]; ok {
		return nil, err
	}
	return f.candidates[msg.ID], nil
}

func jobMessage(id, threadID, company string) *types.EmailMessage {
	return &types.EmailMessage{
		ID:       id,
		ThreadID: threadID,
		Subject:  "Your application at " + company,
		From:     "recruiting@" + company + ".com",
		Date:     time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		Body:     "Thank you for applying to " + company + ".",
	}
}

func candidateFor(company string, status types.Status) *types.ExtractionCandidate {
	return &types.ExtractionCandidate{
		Company: types.Some(company),
		Role:    types.Some("Engineer"),
		Status:  status,
		Event:   types.EventFor(status),
	}
}

func TestRunCreatesRecords(t *testing.T) {
	src := &fakeSource{messages: []*types.EmailMessage{
		jobMessage("m1", "t1", "acme"),
		jobMessage("m2", "t2", "globex"),
	}}
	ext := &fakeExtractor{candidates: map[string]*types.ExtractionCandidate{
		"m1": candidateFor("Acme", types.StatusApplied),
		"m2": candidateFor("Globex", types.StatusInterviewing),
	}}
	st := store.NewMemory()

	runner := NewRunner(src, ext, st, Options{})
	counters, err := runner.Run(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 2, counters.Fetched)
	assert.Equal(t, 2, counters.Processed)
	assert.Equal(t, 2, counters.Created)
	assert.Equal(t, 2, counters.Synced)
	assert.Equal(t, 0, counters.Errors)

	rec, err := st.FindByThread(context.Background(), "t1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Acme", rec.Company)
}

func TestRunSkipsIrrelevantMessages(t *testing.T) {
	newsletter := &types.EmailMessage{
		ID:       "m1",
		ThreadID: "t1",
		Subject:  "Weekly newsletter",
		From:     "news@digest.com",
		Date:     time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		Body:     "Top stories this week.",
	}
	src := &fakeSource{messages: []*types.EmailMessage{newsletter}}
	ext := &fakeExtractor{}
	st := store.NewMemory()

	runner := NewRunner(src, ext, st, Options{})
	counters, err := runner.Run(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 0, counters.Fetched)
	assert.Equal(t, 0, counters.Processed)
	assert.Equal(t, 0, ext.calls, "irrelevant messages must not reach the oracle")
}

func TestRunSkipsDuplicateWithoutOracleCall(t *testing.T) {
	msg := jobMessage("m1", "t1", "acme")
	src := &fakeSource{messages: []*types.EmailMessage{msg}}
	ext := &fakeExtractor{candidates: map[string]*types.ExtractionCandidate{
		"m1": candidateFor("Acme", types.StatusApplied),
	}}
	st := store.NewMemory()

	runner := NewRunner(src, ext, st, Options{})
	_, err := runner.Run(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, 1, ext.calls)

	// Second run sees the same message already recorded on the thread.
	counters, err := runner.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, counters.Duplicates)
	assert.Equal(t, 0, counters.Created)
	assert.Equal(t, 0, counters.Updated)
	assert.Equal(t, 1, ext.calls, "duplicate messages must be skipped before extraction")
}

func TestRunUpdatesExistingThread(t *testing.T) {
	first := jobMessage("m1", "t1", "acme")
	second := jobMessage("m2", "t1", "acme")
	second.Date = first.Date.Add(48 * time.Hour)

	src := &fakeSource{messages: []*types.EmailMessage{first}}
	ext := &fakeExtractor{candidates: map[string]*types.ExtractionCandidate{
		"m1": candidateFor("Acme", types.StatusApplied),
		"m2": candidateFor("Acme", types.StatusInterviewing),
	}}
	st := store.NewMemory()

	runner := NewRunner(src, ext, st, Options{})
	_, err := runner.Run(context.Background(), 0)
	require.NoError(t, err)

	src.messages = []*types.EmailMessage{second}
	counters, err := runner.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, counters.Updated)
	assert.Equal(t, 0, counters.Created)

	rec, err := st.FindByThread(context.Background(), "t1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, types.StatusInterviewing, rec.Status)
	assert.ElementsMatch(t, []string{"m1", "m2"}, rec.MessageIDs)
}

func TestRunCountsMalformedExtraction(t *testing.T) {
	src := &fakeSource{messages: []*types.EmailMessage{jobMessage("m1", "t1", "acme")}}
	ext := &fakeExtractor{errs: map[string]error{
		"m1": &extract.MalformedOutputError{Message: "no JSON object in reply"},
	}}
	st := store.NewMemory()

	runner := NewRunner(src, ext, st, Options{})
	counters, err := runner.Run(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 1, counters.ExtractionFailures)
	assert.Equal(t, 0, counters.Errors, "malformed output is a skip, not an error")
	assert.Equal(t, 0, counters.Created)
}

func TestRunIsolatesPerMessageErrors(t *testing.T) {
	src := &fakeSource{messages: []*types.EmailMessage{
		jobMessage("m1", "t1", "acme"),
		jobMessage("m2", "t2", "globex"),
	}}
	ext := &fakeExtractor{
		candidates: map[string]*types.ExtractionCandidate{
			"m2": candidateFor("Globex", types.StatusApplied),
		},
		errs: map[string]error{
			"m1": &extract.OracleError{Message: "oracle unavailable"},
		},
	}
	st := store.NewMemory()

	runner := NewRunner(src, ext, st, Options{})
	counters, err := runner.Run(context.Background(), 0)
	require.NoError(t, err, "a failing message must not abort the run")

	assert.Equal(t, 1, counters.Errors)
	assert.Equal(t, 1, counters.Created)
}

func TestRunAbortsWhenListingFails(t *testing.T) {
	src := &fakeSource{listErr: errors.New("quota exceeded")}
	runner := NewRunner(src, &fakeExtractor{}, store.NewMemory(), Options{})

	_, err := runner.Run(context.Background(), 0)
	require.Error(t, err)
}

func TestRunMergesByJobURL(t *testing.T) {
	first := jobMessage("m1", "t1", "acme")
	second := jobMessage("m2", "t2", "acme") // different thread, same posting

	cand1 := candidateFor("Acme", types.StatusApplied)
	cand1.JobURL = types.Some("https://boards.greenhouse.io/acme/jobs/123")
	cand2 := candidateFor("Acme", types.StatusInterviewing)
	cand2.JobURL = types.Some("https://boards.greenhouse.io/acme/jobs/123")

	src := &fakeSource{messages: []*types.EmailMessage{first}}
	ext := &fakeExtractor{candidates: map[string]*types.ExtractionCandidate{
		"m1": cand1, "m2": cand2,
	}}
	st := store.NewMemory()

	runner := NewRunner(src, ext, st, Options{})
	_, err := runner.Run(context.Background(), 0)
	require.NoError(t, err)

	src.messages = []*types.EmailMessage{second}
	counters, err := runner.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, counters.Updated)
	assert.Equal(t, 0, counters.Created, "same job URL must merge, not duplicate")
}
