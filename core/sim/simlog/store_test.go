package simlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleRecords() []Record {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return []Record{
		{Tick: 1, Time: base, Completed: 0, Backlog: 30, Waiting: 2, MeanWait: 0.4, MeanBattery: 99.8},
		{Tick: 2, Time: base.Add(time.Second), Completed: 1, Backlog: 29, Waiting: 1, MeanWait: 0.2, MeanBattery: 99.5},
		{Tick: 3, Time: base.Add(2 * time.Second), Completed: 1, Backlog: 29, Waiting: 3, MeanWait: 0.8, MeanBattery: 99.1},
	}
}

func runStoreTests(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	for _, r := range sampleRecords() {
		require.NoError(t, s.Append(ctx, r))
	}

	all, err := s.Query(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, uint64(1), all[0].Tick)

	ranged, err := s.Query(ctx, Query{FromTick: 2, ToTick: 2})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	require.Equal(t, 1, ranged[0].Completed)
	require.Equal(t, 29, ranged[0].Backlog)

	tail, err := s.Query(ctx, Query{FromTick: 3})
	require.NoError(t, err)
	require.Len(t, tail, 1)
	require.Equal(t, 3, tail[0].Waiting)
}

func TestJSONLStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticks.jsonl")
	s, err := NewJSONLStore(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()
	runStoreTests(t, s)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticks.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()
	runStoreTests(t, s)
}
