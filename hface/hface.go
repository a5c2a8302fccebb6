// Package hface implements [parley.Provider] for the Hugging Face
// text-generation inference API.
//
// The API reports a cold start (model still loading) as a 503 with an
// estimated wait. The adapter surfaces a status event, sleeps for the
// estimated duration through an injectable [Sleeper], and re-issues the
// request, repeating for as long as the backend keeps reporting a cold
// start. Rate limiting gets the same treatment using the Retry-After
// hint; a 429 without the hint is terminal.
package hface

const (
	defaultBaseURL = "https://api-inference.huggingface.co"
	defaultModel   = "mistralai/Mistral-7B-Instruct-v0.2"

	maxNewTokens = 4000
	temperature  = 0.7
)

// apiRequest is the JSON body sent to the inference endpoint.
type apiRequest struct {
	Inputs     string        `json:"inputs"`
	Parameters apiParameters `json:"parameters"`
	Stream     bool          `json:"stream"`
}

type apiParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	ReturnFullText bool    `json:"return_full_text"`
	Temperature    float64 `json:"temperature"`
}

// sseToken is one line of the token stream.
type sseToken struct {
	Token         tokenDetail `json:"token"`
	GeneratedText *string     `json:"generated_text"`
}

type tokenDetail struct {
	Text    string `json:"text"`
	Special bool   `json:"special"`
}

// apiErrorResponse is the JSON body of non-200 responses. EstimatedTime
// is only present on cold-start 503s.
type apiErrorResponse struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}
