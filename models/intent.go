package models

import "context"

// MatchPolicy controls how an intent's keywords are compared against the
// normalized user input.
type MatchPolicy string

const (
	// MatchAny fires when at least one keyword occurs in the input.
	MatchAny MatchPolicy = "any"
	// MatchAll fires only when every keyword occurs in the input.
	MatchAll MatchPolicy = "all"
	// MatchExact fires only when the input equals one of the keywords.
	MatchExact MatchPolicy = "exact"
)

// ActionFunc is a dynamic intent handler. It receives the raw (untrimmed)
// user input and the instance's conversation context.
type ActionFunc func(ctx context.Context, input string, conv ConversationContext) (string, error)

// Intent is a declarative rule mapping keyword matches to a
// response-producing behavior. Intents are evaluated in registration order;
// the first match wins. Keywords are compared case-insensitively after
// trimming. A keyword matches when it occurs at the start of a word, with
// the end unanchored: "hi" fires inside "history" but not "philosophy".
type Intent struct {
	Keywords       []string
	Policy         MatchPolicy // empty means MatchAny
	StaticResponse string
	Action         ActionFunc
	Remote         *RemoteAction
}

// RemoteAction describes one HTTP call to make in response to a matched
// intent. Endpoint, query and body may be literals or functions of the
// input and context, resolved at call time so per-turn state (active page,
// user) is always current.
type RemoteAction struct {
	Endpoint     string
	EndpointFunc func(input string, conv ConversationContext) string

	Method  string
	Headers map[string]string

	Query     map[string]any
	QueryFunc func(input string, conv ConversationContext) map[string]any

	Body     any
	BodyFunc func(input string, conv ConversationContext) any

	// TransformResponse maps the parsed response body to the reply text.
	// When absent, JSON bodies are pretty-printed and anything else is
	// returned as raw text.
	TransformResponse func(body any, input string, conv ConversationContext) (string, error)

	// ErrorMessage, when set, replaces any executor failure as the reply.
	ErrorMessage string
}
