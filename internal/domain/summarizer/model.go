package summarizer

import "fmt"

// FailurePrefix starts the summary text returned when summarization fails.
const FailurePrefix = "AI summary failed: "

// DefaultPrompt precedes the pasted content in the user message.
const DefaultPrompt = "Summarize the core functionality of the following code or text concisely:"

// Config configures the summarization request.
type Config struct {
	Model          string
	MaxTokens      int
	Temperature    float32
	Prompt         string
	MaxInputTokens int
}

// Request represents the incoming summarization payload.
type Request struct {
	Content string `json:"content"`
}

// Response is returned by the summarize endpoint.
type Response struct {
	Summary string `json:"summary"`
	Tokens  int    `json:"tokens"`
}

// FailureResponse renders err in the same shape as a successful summary.
func FailureResponse(err error) Response {
	return Response{Summary: fmt.Sprintf("%s%v", FailurePrefix, err), Tokens: 0}
}
