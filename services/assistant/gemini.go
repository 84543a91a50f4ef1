// File: services/assistant/gemini.go
package assistant

import (
	"context"
	"fmt"
	"strings"

	"ruach/models"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// HistorySink receives synced transcripts from the knowledge base.
type HistorySink interface {
	SaveTranscript(ctx context.Context, payload models.HistorySyncPayload) error
}

// GeminiKnowledgeBase answers unmatched questions with a Gemini model and
// forwards synced transcripts to the back office. All of its failures are
// swallowed upstream; the pipeline treats them as "no answer".
type GeminiKnowledgeBase struct {
	model *genai.GenerativeModel
	sink  HistorySink
}

func NewGeminiKnowledgeBase(apiKey string, sink HistorySink) *GeminiKnowledgeBase {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		panic(fmt.Sprintf("failed to create Gemini client: %v", err))
	}

	model := client.GenerativeModel("models/gemini-1.5-flash")
	return &GeminiKnowledgeBase{model: model, sink: sink}
}

// FindRelevantAnswers asks the model for short candidate answers, one per
// line; the caller uses the first.
func (g *GeminiKnowledgeBase) FindRelevantAnswers(ctx context.Context, text string, conv models.ConversationContext) ([]string, error) {
	prompt := fmt.Sprintf(
		"You are the support assistant for the RUACH online store. The visitor is a %s browsing the %s page. "+
			"Answer their question in at most three short candidate answers, one per line, most helpful first. "+
			"If you cannot help, reply with nothing.\n\nQuestion: %s",
		conv.UserType, conv.Page, text,
	)
	raw, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var answers []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*•0123456789. "))
		if line != "" {
			answers = append(answers, line)
		}
	}
	return answers, nil
}

// GetDynamicInfo produces a short status-style summary for the current
// page and visitor type.
func (g *GeminiKnowledgeBase) GetDynamicInfo(ctx context.Context, conv models.ConversationContext) (string, error) {
	prompt := fmt.Sprintf(
		"Give a one-paragraph status overview a %s would want on the %s page of the RUACH online store: "+
			"what they can do here and where to go next. Plain text only.",
		conv.UserType, conv.Page,
	)
	return g.generate(ctx, prompt)
}

// SaveChatHistory forwards one trimmed conversation log to the transcript
// sink.
func (g *GeminiKnowledgeBase) SaveChatHistory(ctx context.Context, msgs []models.Message, conv models.ConversationContext) error {
	if g.sink == nil {
		return nil
	}
	return g.sink.SaveTranscript(ctx, models.HistorySyncPayload{
		SessionKey: conv.UserID,
		Context:    conv,
		Messages:   msgs,
	})
}

func (g *GeminiKnowledgeBase) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
