package nlp

import (
	"context"

	"github.com/soundprediction/pedagogue/pkg/types"
)

// mockClient is a scriptable oracle client for testing. Responses are
// returned in order; once exhausted the last one repeats.
type mockClient struct {
	callCount     int
	failUntilCall int
	errorToReturn error
	responses     []string
	lastMessages  []types.Message
}

func (m *mockClient) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	m.callCount++
	m.lastMessages = messages
	if m.callCount <= m.failUntilCall {
		return nil, m.errorToReturn
	}
	if len(m.responses) == 0 {
		return &types.Response{Content: "success"}, nil
	}
	idx := m.callCount - m.failUntilCall - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return &types.Response{Content: m.responses[idx], Model: "mock"}, nil
}

// userMessages builds a single-user-message conversation.
func userMessages(content string) []types.Message {
	return []types.Message{NewUserMessage(content)}
}

func (m *mockClient) GetCapabilities() []TaskCapability {
	return []TaskCapability{TaskTextGeneration}
}

func (m *mockClient) Close() error {
	return nil
}
