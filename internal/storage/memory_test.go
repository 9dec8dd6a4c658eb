package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirosfoundation/go-dpiva/pkg/submission"
	"github.com/sirosfoundation/go-dpiva/pkg/transport"
)

var _ ResultStore = (*MemoryStore)(nil)

func record(resultID, clientID, status string, created time.Time) *Submission {
	return &Submission{
		ResultID:  resultID,
		ClientID:  clientID,
		Target:    "test",
		Status:    status,
		CreatedAt: created,
	}
}

func TestFromResult(t *testing.T) {
	r := submission.NewResult("dpiva.xml", "599999993/1", transport.TargetProduction)
	r.StageOK(submission.StageDeclaration, "NIF 599999993 2023/03T")
	r.StageFail(submission.StageEnvelope, errors.New("no credentials"))
	r.AddWarning("check %s", "nif")

	s := FromResult(r)
	assert.Equal(t, r.ID, s.ResultID)
	assert.Empty(t, s.ID)
	assert.Equal(t, "production", s.Target)
	assert.Equal(t, "fail", s.Status)
	assert.Equal(t, "fail", s.State)
	assert.Equal(t, []string{"Erro - no credentials"}, s.Errors)
	assert.Equal(t, []string{"check nif"}, s.Warnings)
	require.Len(t, s.Stages, 2)
	assert.Equal(t, StageRecord{Status: "ok", Data: "NIF 599999993 2023/03T"}, s.Stages[submission.StageDeclaration])
	assert.Equal(t, "Erro - no credentials", s.Stages[submission.StageEnvelope].Reason)
}

func TestMemoryStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	s := record("r1", "599999993/1", "ok", time.Now())
	require.NoError(t, store.SaveResult(ctx, s))
	assert.NotEmpty(t, s.ID)
	id := s.ID

	got, err := store.GetResult(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "599999993/1", got.ClientID)

	// saving again replaces the record and keeps its id
	s.Status = "fail"
	s.ID = ""
	require.NoError(t, store.SaveResult(ctx, s))
	assert.Equal(t, id, s.ID)
	got, err = store.GetResult(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "fail", got.Status)

	missing, err := store.GetResult(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.Error(t, store.SaveResult(ctx, &Submission{}))
	assert.NoError(t, store.Ping(ctx))
	assert.NoError(t, store.Close(ctx))
}

func TestMemoryStore_List(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveResult(ctx, record("r1", "a", "ok", base)))
	require.NoError(t, store.SaveResult(ctx, record("r2", "a", "fail", base.Add(time.Hour))))
	require.NoError(t, store.SaveResult(ctx, record("r3", "b", "ok", base.Add(2*time.Hour))))

	all, err := store.ListResults(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "r3", all[0].ResultID, "newest first")

	byClient, err := store.ListResults(ctx, &ResultFilter{ClientID: "a"})
	require.NoError(t, err)
	assert.Len(t, byClient, 2)

	ok, err := store.ListResults(ctx, &ResultFilter{Status: "ok"})
	require.NoError(t, err)
	assert.Len(t, ok, 2)

	since := base.Add(30 * time.Minute)
	recent, err := store.ListResults(ctx, &ResultFilter{Since: &since})
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	page, err := store.ListResults(ctx, &ResultFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "r2", page[0].ResultID)

	empty, err := store.ListResults(ctx, &ResultFilter{Offset: 5})
	require.NoError(t, err)
	assert.Empty(t, empty)

	n, err := store.CountResults(ctx, &ResultFilter{Target: "test", ClientID: "a"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
