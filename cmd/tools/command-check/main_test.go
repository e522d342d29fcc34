package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"inventory-assistant/internal/interpreter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Classify(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"classify", "-text", "two kg sugar betch di"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var out classification
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, "2 kg sugar bech di", out.Normalized)
	assert.Equal(t, string(interpreter.IntentSellColloquial), out.Intent)
	require.NotNil(t, out.Command)
	assert.Equal(t, "sugar", out.Command.Name)
	assert.Equal(t, 2.0, out.Command.Quantity)
}

func TestRun_ClassifyFailures(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		intent interpreter.Intent
		errMsg string
	}{
		{"unrecognized", "hello", interpreter.IntentUnrecognized, "Could not understand command"},
		{"parse failure", "sell sugar", interpreter.IntentUnrecognized, "Could not parse"},
		{"validation", "add product rice stock 10 price 0", interpreter.IntentAddProduct, "Price per unit must be a positive number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, 1, run([]string{"classify", "-text", tt.text}, &stdout, &stderr))

			var out classification
			require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
			assert.Equal(t, string(tt.intent), out.Intent)
			assert.Contains(t, out.Error, tt.errMsg)
			assert.Nil(t, out.Command)
		})
	}
}

func TestRun_ClassifyRequiresText(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"classify"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "-text is required")
}

func TestRun_Listings(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"examples"}, &stdout, &stderr))
	assert.Equal(t, interpreter.Examples, strings.Split(strings.TrimSpace(stdout.String()), "\n"))

	stdout.Reset()
	require.Equal(t, 0, run([]string{"recognizers"}, &stdout, &stderr))
	assert.Equal(t, "updateProduct", strings.SplitN(stdout.String(), "\n", 2)[0])

	stdout.Reset()
	assert.Equal(t, 1, run(nil, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Usage: command-check")
}
