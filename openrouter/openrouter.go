// Package openrouter implements [parley.Provider] for the OpenRouter
// chat completions API.
//
// It issues a streaming HTTP POST and parses the chunked SSE body one
// line at a time: `data: ` lines carry JSON chunks whose nested delta
// field holds the text fragment, keepalive comment lines are skipped,
// and a literal `data: [DONE]` line ends the stream normally.
package openrouter

const (
	defaultBaseURL  = "https://openrouter.ai"
	defaultModel    = "openai/gpt-3.5-turbo"
	completionsPath = "/api/v1/chat/completions"
	appTitle        = "parley"
)

// apiRequest is the JSON body sent to the chat completions endpoint.
type apiRequest struct {
	Model    string       `json:"model"`
	Messages []apiMessage `json:"messages"`
	Stream   bool         `json:"stream"`
}

type apiMessage struct {
	Role    string    `json:"role"`
	Content []apiPart `json:"content"`
}

// apiPart is one element of a multimodal message. Different fields are
// populated depending on Type.
type apiPart struct {
	Type     string       `json:"type"`
	Text     string       `json:"text,omitempty"`
	ImageURL *apiImageURL `json:"image_url,omitempty"`
}

type apiImageURL struct {
	URL string `json:"url"` // data URL with inline base64 payload
}

// SSE chunk types.

type sseChunk struct {
	Choices []sseChoice `json:"choices"`
}

type sseChoice struct {
	Delta        sseDelta `json:"delta"`
	FinishReason *string  `json:"finish_reason"`
}

type sseDelta struct {
	Content string `json:"content"`
}

// apiErrorResponse is the JSON body returned on non-200 HTTP responses.
type apiErrorResponse struct {
	Error apiErrorDetail `json:"error"`
}

type apiErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
