package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   int64
		want int64
	}{
		{
			name: "10-digit seconds converted to milliseconds",
			in:   1749994297,
			want: 1749994297000,
		},
		{
			name: "13-digit milliseconds unchanged",
			in:   1749994297000,
			want: 1749994297000,
		},
		{
			name: "seconds and milliseconds forms normalize to same value",
			in:   1747393698,
			want: NormalizeTimestamp(1747393698000),
		},
		{
			name: "9-digit value left untouched",
			in:   999_999_999,
			want: 999_999_999,
		},
		{
			name: "zero left untouched",
			in:   0,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTimestamp(tt.in))
		})
	}
}

func TestPriceHistoryRangeParamsValidate(t *testing.T) {
	nowMs := time.Now().UTC().UnixMilli()

	tests := []struct {
		name    string
		params  PriceHistoryRangeParams
		wantErr error
	}{
		{
			name:    "valid past range",
			params:  PriceHistoryRangeParams{FromTimestamp: nowMs - 3_600_000, ToTimestamp: nowMs - 1000},
			wantErr: nil,
		},
		{
			name:    "from equal to to rejected",
			params:  PriceHistoryRangeParams{FromTimestamp: nowMs - 1000, ToTimestamp: nowMs - 1000},
			wantErr: ErrToNotAfter,
		},
		{
			name:    "to before from rejected",
			params:  PriceHistoryRangeParams{FromTimestamp: nowMs - 1000, ToTimestamp: nowMs - 2000},
			wantErr: ErrToNotAfter,
		},
		{
			name:    "from in the future rejected",
			params:  PriceHistoryRangeParams{FromTimestamp: nowMs + 60_001, ToTimestamp: nowMs + 60_002},
			wantErr: ErrFromInFuture,
		},
		{
			name:    "to in the future rejected",
			params:  PriceHistoryRangeParams{FromTimestamp: nowMs - 1000, ToTimestamp: nowMs + 60_000},
			wantErr: ErrToInFuture,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestPriceHistoryRangeParamsNormalize(t *testing.T) {
	p := PriceHistoryRangeParams{FromTimestamp: 1747393698, ToTimestamp: 1749981787521}
	p.Normalize()

	assert.Equal(t, int64(1747393698000), p.FromTimestamp)
	assert.Equal(t, int64(1749981787521), p.ToTimestamp)
}
