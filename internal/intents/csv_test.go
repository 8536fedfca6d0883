package intents_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesbi/internal/intents"
	"salesbi/internal/testsupport"
)

func TestCSVRoundTrip(t *testing.T) {
	table := testsupport.SampleTable()

	for _, q := range intents.Examples {
		t.Run(q, func(t *testing.T) {
			out := intents.ClassifyAndAggregate(q, table)
			require.True(t, out.Recognized())

			var buf bytes.Buffer
			require.NoError(t, intents.WriteCSV(&buf, out.Result))

			back, err := intents.ReadCSV(&buf)
			require.NoError(t, err)
			assert.Equal(t, out.Result.KeyLabel, back.KeyLabel)
			assert.Equal(t, out.Result.ValueLabel, back.ValueLabel)
			assert.Equal(t, out.Result.Keys(), back.Keys())
			assert.InDeltaSlice(t, out.Result.Values(), back.Values(), 1e-9)
		})
	}
}

func TestWriteCSVFormat(t *testing.T) {
	res := &intents.Result{
		KeyLabel:   "Item ID",
		ValueLabel: "Total Price",
		Points: []intents.Point{
			{Key: "I-1", Value: 1250.5},
			{Key: "needs, quoting", Value: 0.1},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, intents.WriteCSV(&buf, res))
	assert.Equal(t, "Item ID,Total Price\nI-1,1250.5\n\"needs, quoting\",0.1\n", buf.String())

	back, err := intents.ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, res, back)
}

func TestWriteCSVEmptyResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, intents.WriteCSV(&buf, &intents.Result{KeyLabel: "Item ID", ValueLabel: "Total Price", Points: []intents.Point{}}))
	assert.Equal(t, "Item ID,Total Price\n", buf.String())

	back, err := intents.ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, 0, back.Len())

	require.Error(t, intents.WriteCSV(&buf, nil))
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty input", ""},
		{"bad value", "Key,Value\na,notanumber\n"},
		{"wrong field count", "Key,Value\na,1,2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := intents.ReadCSV(strings.NewReader(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, intents.ErrMalformedCSV)
		})
	}
}
