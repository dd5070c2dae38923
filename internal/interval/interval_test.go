package interval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Invalid(t *testing.T) {
	_, err := New(5, 4)
	require.ErrorIs(t, err, ErrInvalidInterval)

	assert.Panics(t, func() { MustNew(5, 4) })
	assert.NotPanics(t, func() { MustNew(4, 4) })
}

func TestInterval_SizeAndIntersects(t *testing.T) {
	iv := MustNew(10, 12)
	assert.Equal(t, uint64(3), iv.Size())
	assert.True(t, iv.Intersects(10), "start boundary inclusive")
	assert.True(t, iv.Intersects(12), "end boundary inclusive")
	assert.False(t, iv.Intersects(9))
	assert.False(t, iv.Intersects(13))

	assert.Equal(t, uint64(1), MustNew(7, 7).Size())
	assert.Equal(t, uint64(math.MaxUint64), MustNew(1, math.MaxUint64).Size())
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Interval
		wantErr bool
	}{
		{in: "3-5", want: MustNew(3, 5)},
		{in: " 10-10 ", want: MustNew(10, 10)},
		{in: "0-18446744073709551615", want: MustNew(0, math.MaxUint64)},
		{in: "5-3", wantErr: true},
		{in: "5", wantErr: true},
		{in: "a-3", wantErr: true},
		{in: "3-", wantErr: true},
		{in: "-3-4", wantErr: true},
		{in: "1-2-3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, parseRoundTrip(t, got.String()))
		})
	}
}

func TestParse_ReversedIsInvalid(t *testing.T) {
	_, err := Parse("9-2")
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func parseRoundTrip(t *testing.T, s string) Interval {
	t.Helper()
	iv, err := Parse(s)
	require.NoError(t, err)
	return iv
}
