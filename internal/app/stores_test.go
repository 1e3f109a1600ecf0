package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volume-breakout-lab/internal/config"
	"volume-breakout-lab/internal/observability"
)

func TestOpenStores_Memory(t *testing.T) {
	m := observability.NewMetrics("test", prometheus.NewRegistry())

	s, err := OpenStores(context.Background(), config.Default(), StoreOptions{UseMemory: true, Metrics: m})
	require.NoError(t, err)
	defer s.Close()

	symbols, err := s.Bars.ListSymbols(context.Background())
	require.NoError(t, err)
	assert.Empty(t, symbols)
	assert.Equal(t, 1, testutil.CollectAndCount(m.DBQueryDuration))
}

func TestNewMemoryStores_WithoutMetrics(t *testing.T) {
	s := NewMemoryStores(nil)
	require.NotNil(t, s.Bars)
	require.NotNil(t, s.Signals)
	require.NotNil(t, s.Trades)
	require.NotNil(t, s.Summaries)
	s.Close()
}

func TestIngestCSV_IntoMemory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	csv := "Date,Symbol,Open,High,Low,Close,Volume\n" +
		"2024-01-03,AAPL,10,11,9,10.5,1000\n" +
		"2024-01-02,AAPL,9,10,8,9.5,900\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	s := NewMemoryStores(nil)
	n, err := IngestCSV(context.Background(), s.Bars, path, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	bars, err := s.Bars.GetBySymbol(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 9.5, bars[0].Close)
}

func TestIngestCSV_MissingFile(t *testing.T) {
	_, err := IngestCSV(context.Background(), NewMemoryStores(nil).Bars, filepath.Join(t.TempDir(), "none.csv"), false, nil)
	assert.Error(t, err)
}
