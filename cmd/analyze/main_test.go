package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Manifold/internal/domain"
)

func TestReadPoints(t *testing.T) {
	in := strings.NewReader("timestamp,price,volume\n" +
		"2024-01-01T00:00:00Z,100.5,10\n" +
		"# skipped\n" +
		"1704067500,101,\n")

	points, err := readPoints(in)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 100.5, points[0].Price)
	assert.Equal(t, 10.0, points[0].Volume)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC), points[1].Timestamp.UTC())
	assert.Zero(t, points[1].Volume)
}

func TestReadPointsErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"empty", "", domain.ErrNoData},
		{"header only", "timestamp,price\n", domain.ErrNoData},
		{"bad price", "2024-01-01,abc\n", domain.ErrMalformedInput},
		{"bad timestamp after data", "2024-01-01,1\nnope,2\n", domain.ErrMalformedInput},
		{"missing price", "2024-01-01\n", domain.ErrMalformedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readPoints(strings.NewReader(tt.body))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func writeSeries(t *testing.T, n int, step time.Duration) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("timestamp,price,volume\n")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		price := 100 + float64(i)*0.1 + float64(i%3)*0.05
		fmt.Fprintf(&b, "%s,%.4f,%d\n", start.Add(time.Duration(i)*step).Format(time.RFC3339), price, 10+i%5)
	}
	path := filepath.Join(t.TempDir(), "series.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func TestRunSingleHorizon(t *testing.T) {
	path := writeSeries(t, 80, 5*time.Minute)

	var out bytes.Buffer
	require.NoError(t, run(options{file: path, symbol: "BTC", horizon: "short"}, &out))

	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Contains(t, got, "snapshot")
	assert.Contains(t, got, "interpretation")
}

func TestRunMultiscaleUnknownHorizon(t *testing.T) {
	path := writeSeries(t, 80, time.Minute)

	err := run(options{file: path, symbol: "BTC", multiscale: true, horizons: "short,weekly"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrThresholdConfig)
}

func TestRunUnknownHorizon(t *testing.T) {
	path := writeSeries(t, 80, 5*time.Minute)

	err := run(options{file: path, symbol: "BTC", horizon: "hourly"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
	assert.ErrorContains(t, err, `"hourly"`)
}

func TestRunMissingFile(t *testing.T) {
	err := run(options{file: filepath.Join(t.TempDir(), "nope.csv")}, &bytes.Buffer{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
