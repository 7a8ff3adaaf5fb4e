package advisor

import "context"

// MockAdvisor is a scripted ports.Advisor for tests: it returns a fixed
// response (or error) regardless of input, mirroring the teacher's
// MockDistanceProvider.
type MockAdvisor struct {
	Response string
	Err      error
}

func (m *MockAdvisor) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
