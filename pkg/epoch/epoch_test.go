package epoch

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMillisAndAtAgree(t *testing.T) {
	native := time.Date(2018, time.March, 5, 13, 45, 10, 123_000_000, time.FixedZone("PST", -8*3600))

	fromMillis := Millis(native.UnixMilli())
	fromTime := At(native)

	assert.Equal(t, fromTime, fromMillis)
	assert.True(t, fromMillis.Time().Equal(native))
	assert.Equal(t, time.UTC, fromMillis.Time().Location())

	y, m, d := fromMillis.Date()
	assert.Equal(t, []int{2018, 3, 5}, []int{y, m, d})
}

func TestAtTruncatesToMilliseconds(t *testing.T) {
	ts := time.Date(2020, 1, 1, 0, 0, 0, 999_999, time.UTC)
	assert.Equal(t, Millis(ts.UnixMilli()), At(ts))
}

func TestZeroValueIsUnset(t *testing.T) {
	var i Instant
	assert.False(t, i.IsSet())
	assert.Equal(t, int64(0), i.UnixMilli())
	assert.Equal(t, "unset", i.String())

	assert.True(t, Millis(0).IsSet())
}

func TestRangeOrdered(t *testing.T) {
	early, late := Millis(1_000), Millis(2_000)

	r := Range{Min: late, Max: early}.Ordered()
	assert.Equal(t, early, r.Min)
	assert.Equal(t, late, r.Max)

	onlyMax := Range{Max: early}.Ordered()
	assert.False(t, onlyMax.Min.IsSet())
	assert.Equal(t, early, onlyMax.Max)

	assert.True(t, Range{}.Empty())
	assert.False(t, onlyMax.Empty())
}

func TestJSON(t *testing.T) {
	in := struct {
		Min Instant `json:"min"`
		Max Instant `json:"max"`
	}{Min: Millis(1_520_000_000_000)}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"min":1520000000000,"max":null}`, string(data))

	var out struct {
		Min Instant `json:"min"`
		Max Instant `json:"max"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in.Min, out.Min)
	assert.False(t, out.Max.IsSet())

	var fromString Instant
	require.NoError(t, json.Unmarshal([]byte(`"2018-03-02T14:13:20Z"`), &fromString))
	assert.Equal(t, Millis(1_520_000_000_000), fromString)
}
