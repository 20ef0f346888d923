package nlp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONFromResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain object",
			input:    `{"prerequisites": ["algebra"]}`,
			expected: `{"prerequisites": ["algebra"]}`,
		},
		{
			name:     "json code fence",
			input:    "Here you go:\n```json\n{\"answer\": true}\n```\nHope that helps!",
			expected: `{"answer": true}`,
		},
		{
			name:     "bare code fence",
			input:    "```\n[\"circle\", \"distance\"]\n```",
			expected: `["circle", "distance"]`,
		},
		{
			name:     "surrounding prose",
			input:    `The prerequisites are: {"prerequisites": ["limits"]} as requested.`,
			expected: `{"prerequisites": ["limits"]}`,
		},
		{
			name:     "bare array with prose",
			input:    `Sure! ["multiplication", "geometry"] covers it.`,
			expected: `["multiplication", "geometry"]`,
		},
		{
			name:     "think tags stripped",
			input:    "<think>hmm, circles...</think>{\"answer\": false}",
			expected: `{"answer": false}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractJSONFromResponse(tt.input))
		})
	}
}

func TestDecodeJSONRepairsTrailingComma(t *testing.T) {
	var payload struct {
		Prerequisites []string `json:"prerequisites"`
	}
	err := DecodeJSON(`{"prerequisites": ["algebra", "geometry",]}`, &payload)
	require.NoError(t, err)
	assert.Equal(t, []string{"algebra", "geometry"}, payload.Prerequisites)
}

func TestDecodeJSONMalformed(t *testing.T) {
	var payload struct {
		Prerequisites []string `json:"prerequisites"`
	}
	err := DecodeJSON(`complete gibberish with no structure`, &payload)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestGenerateJSONFirstTry(t *testing.T) {
	mock := &mockClient{responses: []string{`{"value": 7}`}}

	var payload struct {
		Value int `json:"value"`
	}
	err := GenerateJSON(context.Background(), mock, userMessages("give me a value"), &payload)
	require.NoError(t, err)
	assert.Equal(t, 7, payload.Value)
	assert.Equal(t, 1, mock.callCount)
}

func TestGenerateJSONReformatRetry(t *testing.T) {
	mock := &mockClient{responses: []string{
		`I cannot answer in that format, sorry.`,
		`{"value": 42}`,
	}}

	var payload struct {
		Value int `json:"value"`
	}
	err := GenerateJSON(context.Background(), mock, userMessages("give me a value"), &payload)
	require.NoError(t, err)
	assert.Equal(t, 42, payload.Value)
	assert.Equal(t, 2, mock.callCount, "exactly one reformat retry")

	// The retry carries the stricter instruction and the echoed bad output.
	last := mock.lastMessages[len(mock.lastMessages)-1]
	assert.Contains(t, last.Content, "ONLY the JSON value")
}

func TestGenerateJSONGivesUpAfterRetry(t *testing.T) {
	mock := &mockClient{responses: []string{
		`not json`,
		`still not json`,
	}}

	var payload struct {
		Value int `json:"value"`
	}
	err := GenerateJSON(context.Background(), mock, userMessages("value please"), &payload)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedResponse))
	assert.Equal(t, 2, mock.callCount)
}

func TestGenerateBoolean(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected bool
	}{
		{"bare yes", "yes", true},
		{"bare no", "no", false},
		{"capitalized with period", "Yes.", true},
		{"leading token with explanation", "No, this concept builds on others.", false},
		{"json answer", `{"answer": true}`, true},
		{"think tags", "<think>foundational?</think>yes", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockClient{responses: []string{tt.response}}
			got, err := GenerateBoolean(context.Background(), mock, userMessages("is it foundational?"))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, 1, mock.callCount)
		})
	}
}

func TestGenerateBooleanReformatRetry(t *testing.T) {
	mock := &mockClient{responses: []string{
		"It depends on how you look at it.",
		"no",
	}}

	got, err := GenerateBoolean(context.Background(), mock, userMessages("is it foundational?"))
	require.NoError(t, err)
	assert.False(t, got)
	assert.Equal(t, 2, mock.callCount)
}

func TestRemoveThinkTags(t *testing.T) {
	input := "<think>reasoning\nacross lines</think>answer"
	assert.Equal(t, "answer", RemoveThinkTags(input))
}
