// File: services/assistant/intents.go
package assistant

import (
	"context"
	"strings"

	"ruach/models"

	"go.uber.org/zap"
)

// statusTriggers route otherwise-unmatched input to the dynamic-info
// fallback.
var statusTriggers = []string{"status", "summary", "overview"}

// MatchIntent evaluates one intent's policy against the normalized
// (trimmed, lowercased) input.
func MatchIntent(norm string, intent *models.Intent) bool {
	policy := intent.Policy
	if policy == "" {
		policy = models.MatchAny
	}
	switch policy {
	case models.MatchAll:
		if len(intent.Keywords) == 0 {
			return false
		}
		for _, kw := range intent.Keywords {
			k := strings.ToLower(strings.TrimSpace(kw))
			if k == "" || !keywordMatches(norm, k) {
				return false
			}
		}
		return true
	case models.MatchExact:
		for _, kw := range intent.Keywords {
			if norm == strings.ToLower(strings.TrimSpace(kw)) {
				return true
			}
		}
		return false
	default:
		for _, kw := range intent.Keywords {
			k := strings.ToLower(strings.TrimSpace(kw))
			if k != "" && keywordMatches(norm, k) {
				return true
			}
		}
		return false
	}
}

// keywordMatches reports whether kw occurs in norm starting at a word
// boundary. The end is deliberately unanchored: "hi" matches "hi there"
// and "history", but not "philosophy".
func keywordMatches(norm, kw string) bool {
	from := 0
	for {
		i := strings.Index(norm[from:], kw)
		if i < 0 {
			return false
		}
		pos := from + i
		if pos == 0 || !isWordChar(norm[pos-1]) {
			return true
		}
		from = pos + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

// resolve maps raw input to a response string. Registry order decides
// precedence; the first matching intent wins. A failing dynamic intent
// degrades to its error message or static response, or lets scanning
// continue, so a broken collaborator never dead-ends the turn.
func (c *Conversation) resolve(ctx context.Context, input string) (string, error) {
	norm := strings.ToLower(strings.TrimSpace(input))

	for i := range c.registry {
		intent := &c.registry[i]
		if !MatchIntent(norm, intent) {
			continue
		}
		if intent.Action != nil {
			res, err := intent.Action(ctx, input, c.conv)
			if err != nil {
				c.logger.Warn("intent action failed", zap.Error(err), zap.String("page", c.conv.Page))
				if intent.Remote != nil && intent.Remote.ErrorMessage != "" {
					return intent.Remote.ErrorMessage, nil
				}
				if intent.StaticResponse != "" {
					return intent.StaticResponse, nil
				}
				continue
			}
			if res != "" {
				return res, nil
			}
			if intent.StaticResponse != "" {
				return intent.StaticResponse, nil
			}
			continue
		}
		if intent.Remote != nil {
			res, err := c.exec.Execute(ctx, intent.Remote, input, c.conv)
			if err != nil {
				if intent.Remote.ErrorMessage != "" {
					c.logger.Warn("remote action failed", zap.Error(err))
					return intent.Remote.ErrorMessage, nil
				}
				return "", err
			}
			return res, nil
		}
		if intent.StaticResponse != "" {
			return intent.StaticResponse, nil
		}
	}

	if c.kb != nil {
		answers, err := c.kb.FindRelevantAnswers(ctx, input, c.conv)
		if err != nil {
			c.logger.Warn("knowledge base lookup failed", zap.Error(err))
		} else if len(answers) > 0 {
			return answers[0], nil
		}

		if containsStatusTrigger(norm) {
			info, err := c.kb.GetDynamicInfo(ctx, c.conv)
			if err != nil {
				c.logger.Warn("dynamic info lookup failed", zap.Error(err))
			} else if info != "" {
				return info, nil
			}
		}
	}

	return c.defaultResponse(), nil
}

func containsStatusTrigger(norm string) bool {
	for _, trigger := range statusTriggers {
		if strings.Contains(norm, trigger) {
			return true
		}
	}
	return false
}
