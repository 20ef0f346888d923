package prompts

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/pedagogue/pkg/types"
)

func TestPrerequisitesResponseShapes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "bare array",
			input:    `["circle", "distance", "multiplication"]`,
			expected: []string{"circle", "distance", "multiplication"},
		},
		{
			name:     "wrapped object",
			input:    `{"prerequisites": ["limits", "functions"]}`,
			expected: []string{"limits", "functions"},
		},
		{
			name:     "concepts key",
			input:    `{"concepts": ["vectors"]}`,
			expected: []string{"vectors"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp PrerequisitesResponse
			require.NoError(t, json.Unmarshal([]byte(tt.input), &resp))
			assert.Equal(t, tt.expected, resp.Prerequisites)
		})
	}
}

func TestPrerequisitesResponseRejectsOtherShapes(t *testing.T) {
	var resp PrerequisitesResponse
	err := json.Unmarshal([]byte(`{"unrelated": 1}`), &resp)
	assert.Error(t, err)
}

func TestAnalysisResponseValidate(t *testing.T) {
	a := &AnalysisResponse{CoreConcept: "fourier transform", Level: "expert"}
	require.NoError(t, a.Validate())
	assert.Equal(t, "intermediate", a.Level, "unknown levels normalize to intermediate")

	missing := &AnalysisResponse{}
	assert.Error(t, missing.Validate())
}

func TestClassifyConceptPrompt(t *testing.T) {
	msgs := ClassifyConcept(nil, "Lorentz transformations")
	require.Len(t, msgs, 2)
	assert.Equal(t, types.Role("system"), msgs[0].Role)
	assert.Contains(t, msgs[1].Content, `"Lorentz transformations"`)
	assert.Contains(t, msgs[1].Content, "yes")
}

func TestDiscoverPrerequisitesPrompt(t *testing.T) {
	msgs := DiscoverPrerequisites(nil, "area of a circle")
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Content, "ESSENTIAL prerequisite")
	assert.Contains(t, msgs[1].Content, `"area of a circle"`)
}

func TestDesignVisualIncludesStyleContext(t *testing.T) {
	node := types.NewKnowledgeNode("circle", 1)
	node.Equations = []string{"$A = \\pi r^2$"}

	msgs, err := DesignVisual(nil, node, &StyleContext{
		ParentConcept:  "area of a circle",
		ParentElements: []string{"shaded disc"},
		Palette:        map[string]string{"disc": "BLUE"},
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1].Content, "area of a circle")
	assert.Contains(t, msgs[1].Content, "BLUE")
	assert.Contains(t, msgs[1].Content, "$A = \\pi r^2$")
}

func TestDesignVisualWithoutStyleContext(t *testing.T) {
	node := types.NewKnowledgeNode("multiplication", 2)
	msgs, err := DesignVisual(nil, node, nil)
	require.NoError(t, err)
	assert.NotContains(t, msgs[1].Content, "Visual state from previous concepts")
}

func TestComposeSegmentPrompt(t *testing.T) {
	node := types.NewKnowledgeNode("area of a circle", 0)
	node.Equations = []string{"$A = \\pi r^2$"}
	node.VisualSpec = &types.VisualSpec{
		Elements:        []string{"shaded disc"},
		DurationSeconds: 20,
	}

	msgs := ComposeSegment(nil, node, 4, 4, []string{"circle", "multiplication"}, true)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1].Content, "Segment 4 of 4")
	assert.Contains(t, msgs[1].Content, "FINAL segment")
	assert.Contains(t, msgs[1].Content, "circle, multiplication")
	assert.Contains(t, msgs[1].Content, "Duration: 20 seconds")
}

func TestFallbackSegment(t *testing.T) {
	node := types.NewKnowledgeNode("circle", 1)
	node.Equations = []string{"$x^2 + y^2 = r^2$"}
	node.Definitions = map[string]string{"r": "radius"}

	segment := FallbackSegment(node, []string{"point", "distance"})
	assert.Contains(t, segment, "Building on distance")
	assert.Contains(t, segment, "$x^2 + y^2 = r^2$")
	assert.Contains(t, segment, "r (radius)")

	first := FallbackSegment(node, nil)
	assert.True(t, strings.HasPrefix(first, "Begin by introducing circle"))
}

func TestToPromptYAML(t *testing.T) {
	out, err := ToPromptYAML(map[string]string{"disc": "BLUE"})
	require.NoError(t, err)
	assert.Contains(t, out, "disc: BLUE")
}
