package blob_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Madofly35/GestLoc/internal/blob"
	"github.com/Madofly35/GestLoc/internal/blob/memory"
	"github.com/Madofly35/GestLoc/internal/metrics"
)

func TestCleanPath(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    string
		wantErr bool
	}

	tests := []testCase{
		{name: "Plain", input: "tenant_1/2024/01/receipt_2.pdf", want: "tenant_1/2024/01/receipt_2.pdf"},
		{name: "LeadingSlash", input: "/a/b.pdf", want: "a/b.pdf"},
		{name: "DoubleSlash", input: "a//b.pdf", want: "a/b.pdf"},
		{name: "Traversal", input: "../etc/passwd", wantErr: true},
		{name: "Empty", input: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := blob.CleanPath(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInstrument(t *testing.T) {
	store := blob.Instrument(memory.New("memory://"), "test")
	ctx := context.Background()

	missing := metrics.BlobOperationsTotal.WithLabelValues("test", "download", "not_found")
	before := testutil.ToFloat64(missing)

	_, err := store.Download(ctx, "receipts", "nope.pdf")
	assert.ErrorIs(t, err, blob.ErrNotFound)
	assert.Equal(t, before+1, testutil.ToFloat64(missing))

	_, err = store.Upload(ctx, "receipts", "a.pdf", []byte("%PDF"), "application/pdf")
	require.NoError(t, err)

	data, err := store.Download(ctx, "receipts", "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), data)
}
