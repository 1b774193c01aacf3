package dates

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	parsed, err := Parse("2023-01-05")
	require.NoError(t, err)
	require.Equal(t, time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), parsed)
	require.Equal(t, "2023-01-05", Format(parsed))

	_, err = Parse("01/05/2023")
	require.Error(t, err)
}

func TestDayJson(t *testing.T) {
	type row struct {
		Date Day `json:"date"`
	}

	var out row
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2023-01-05"}`), &out))
	require.Equal(t, On(2023, 1, 5), out.Date)

	// some endpoints report full timestamps for date fields
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2023-01-05T08:30:00Z"}`), &out))
	require.Equal(t, "2023-01-05", Format(out.Date.Time))

	require.NoError(t, json.Unmarshal([]byte(`{"date":null}`), &out))
	require.True(t, out.Date.IsZero())

	data, err := json.Marshal(row{Date: On(2023, 1, 5)})
	require.NoError(t, err)
	require.JSONEq(t, `{"date":"2023-01-05"}`, string(data))
}
