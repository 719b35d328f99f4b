package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlstn/go-csdlgen/internal/observability"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRun(id, fingerprint string, started time.Time) *Run {
	return &Run{
		ID:          id,
		Fingerprint: fingerprint,
		StartedAt:   started,
		Processed:   2,
		Failed:      1,
		Outcomes: []PathOutcome{
			{Path: "/users/{var}", Classification: "EntitySet", Outcome: "annotated", Verbs: "GET"},
			{Path: "/users/{var}/manager", Classification: "EntityType", Outcome: "annotated", Verbs: "GET"},
			{Path: "/users/{var}/mailboxSettings", Outcome: "failed", Error: "complex type"},
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	assert.Equal(t, "sqlite", s.Dialect())

	run := sampleRun("run-1", "abc", time.Now())
	require.NoError(t, s.SaveRun(ctx, run))

	got, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Fingerprint)
	assert.Equal(t, 2, got.Processed)
	require.Len(t, got.Outcomes, 3)
	assert.Equal(t, "/users/{var}", got.Outcomes[0].Path)
	assert.Equal(t, "run-1", got.Outcomes[2].RunID)
	assert.Equal(t, "complex type", got.Outcomes[2].Error)
}

func TestGetRunNotFound(t *testing.T) {
	s := openMemory(t)
	_, err := s.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.LatestByFingerprint(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSaveRunIsAtomic(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	require.NoError(t, s.SaveRun(ctx, sampleRun("dup", "a", time.Now())))

	// Duplicate primary key fails and must not leave extra outcomes behind.
	err := s.SaveRun(ctx, sampleRun("dup", "a", time.Now()))
	require.Error(t, err)

	got, err := s.GetRun(ctx, "dup")
	require.NoError(t, err)
	assert.Len(t, got.Outcomes, 3)
}

func TestListRunsAndLatestByFingerprint(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveRun(ctx, sampleRun("old", "fp", base)))
	require.NoError(t, s.SaveRun(ctx, sampleRun("other", "fp2", base.Add(time.Hour))))
	require.NoError(t, s.SaveRun(ctx, sampleRun("new", "fp", base.Add(2*time.Hour))))

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "other", runs[1].ID)
	assert.Empty(t, runs[0].Outcomes)

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	latest, err := s.LatestByFingerprint(ctx, "fp")
	require.NoError(t, err)
	assert.Equal(t, "new", latest.ID)
}

func TestStoreFileReadableWithRawDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.SaveRun(context.Background(), sampleRun("raw", "fp", time.Now())))
	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM path_outcomes WHERE run_id = ?", "raw").Scan(&count))
	assert.Equal(t, 3, count)
}

func TestDialectorSelection(t *testing.T) {
	assert.Equal(t, "postgres", dialector("postgres://user:pw@localhost:5432/runs").Name())
	assert.Equal(t, "postgres", dialector("PostgreSQL://localhost/runs").Name())
	assert.Equal(t, "sqlite", dialector("runs.db").Name())
}

func TestDetailedTracingCallbacks(t *testing.T) {
	s := openMemory(t)
	cfg := observability.NewConfig(observability.WithDetailedDBTracing())
	require.NoError(t, cfg.Initialize())
	require.NoError(t, s.SetObservability(cfg))

	require.NoError(t, s.SaveRun(context.Background(), sampleRun("traced", "fp", time.Now())))
	_, err := s.GetRun(context.Background(), "traced")
	require.NoError(t, err)

	require.NoError(t, s.SetObservability(nil))
}
