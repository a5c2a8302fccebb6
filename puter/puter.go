// Package puter implements [parley.Provider] for the Puter AI chat
// endpoint, the keyless fallback backend.
//
// The endpoint's response shape is ambiguous at the wire level: it
// returns either a newline-delimited stream of text parts or a single
// composite object holding the whole completion. The adapter probes the
// Content-Type once, models the outcome as an explicit two-case shape,
// and normalizes both into the uniform delta sequence; a single object
// becomes one terminal delta.
package puter

const (
	defaultBaseURL = "https://api.puter.com"
	defaultModel   = "meta-llama/llama-3-8b-instruct"
	chatPath       = "/ai/chat"

	ndjsonContentType = "application/x-ndjson"
)

// responseShape is the tagged result of the Content-Type probe.
type responseShape int

const (
	shapeStreamed responseShape = iota // ndjson stream of parts
	shapeSingle                        // one composite object
)

// apiRequest is the JSON body sent to the chat endpoint.
type apiRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// apiPart is one line of the streamed response.
type apiPart struct {
	Text string `json:"text"`
}

// apiSingle is the composite single-object response.
type apiSingle struct {
	Text    string `json:"text"`
	Message *struct {
		Content string `json:"content"`
	} `json:"message"`
}

// content returns the completion text wherever the object carries it.
func (a apiSingle) content() string {
	if a.Text != "" {
		return a.Text
	}
	if a.Message != nil {
		return a.Message.Content
	}
	return ""
}
