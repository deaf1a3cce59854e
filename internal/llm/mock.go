package llm

import (
	"context"
	"strings"

	"visitprep/internal/core"
)

// MockPlan is the fixed plan returned by MockClient.
const MockPlan = "- Review medication adherence and consider adjusting dosage based on the latest labs.\n" +
	"- Discuss lifestyle changes: diet, activity and sleep.\n" +
	"- Recommend follow-up labs before the next visit."

// MockClient is an offline completer for local development.
type MockClient struct{}

func NewMockClient() *MockClient { return &MockClient{} }

// Complete returns MockPlan for plan prompts and echoes follow-up questions.
func (m *MockClient) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.HasPrefix(req.SystemPrompt, core.FollowUpPreamble) {
		q := req.SystemPrompt
		if i := strings.Index(q, core.FollowUpQuestionLead); i >= 0 {
			q = q[i+len(core.FollowUpQuestionLead):]
		}
		q = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(q), core.FollowUpInstruction))
		return "Mock answer to: " + q, nil
	}
	return MockPlan, nil
}
