package snowflake

import (
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testcases := []struct {
		name    string
		in      string
		want    ID
		wantErr bool
	}{
		{name: "typical id", in: "175928847299117063", want: ID(175928847299117063)},
		{name: "max uint64", in: "18446744073709551615", want: ID(18446744073709551615)},
		{name: "zero", in: "0", want: 0},
		{name: "not a number", in: "abc", wantErr: true},
		{name: "negative", in: "-1", wantErr: true},
		{name: "overflow", in: "18446744073709551616", wantErr: true},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestID_Time(t *testing.T) {
	// 175928847299117063 >> 22 = 41944705796 ms past the epoch.
	id := ID(175928847299117063)
	want := time.Date(2016, 4, 30, 11, 18, 25, 796_000_000, time.UTC)
	assert.Equal(t, want, id.Time())
}

func TestFromTime_roundtrip(t *testing.T) {
	at := time.Date(2022, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, at, FromTime(at).Time())
}

func TestID_unsigned_ordering(t *testing.T) {
	// Values beyond float64's exact integer range must still order
	// correctly; this is why IDs are never compared as floats.
	lo, err := Parse("9007199254740993")
	require.NoError(t, err)
	hi, err := Parse("18446744073709551615")
	require.NoError(t, err)

	assert.Equal(t, -1, lo.Compare(hi))
	assert.Equal(t, 1, hi.Compare(lo))
	assert.Equal(t, 0, hi.Compare(hi))

	ids := []ID{hi, 0, lo}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	assert.Equal(t, []ID{0, lo, hi}, ids)
}

func TestID_json(t *testing.T) {
	id := ID(18446744073709551615)

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"18446744073709551615"`, string(data))

	var decoded ID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded)

	// Integer form accepted for fixtures.
	require.NoError(t, json.Unmarshal([]byte(`12345`), &decoded))
	assert.Equal(t, ID(12345), decoded)
}

func TestID_IsZero(t *testing.T) {
	assert.True(t, ID(0).IsZero())
	assert.False(t, ID(1).IsZero())
}
