// File: services/assistant/presets.go
package assistant

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"ruach/models"
)

// Widget kinds served by the storefront pages. They all share one engine;
// only the registry and the canned configuration differ.
const (
	KindShopper         = "shopper"
	KindVendor          = "vendor"
	KindServiceProvider = "service-provider"
	KindGeneral         = "general"
)

// RegistryFor returns the intent registry for one widget kind. The scorer
// backs product-search intents; apiBase points remote actions at the
// storefront's own API.
func RegistryFor(kind string, scorer *Scorer, apiBase string) []models.Intent {
	switch kind {
	case KindVendor:
		return vendorIntents(apiBase)
	case KindServiceProvider:
		return serviceProviderIntents(apiBase)
	case KindShopper:
		return shopperIntents(scorer, apiBase)
	default:
		return generalIntents()
	}
}

// ConfigFor returns the canned widget configuration for one kind.
func ConfigFor(kind string) models.WidgetConfig {
	switch kind {
	case KindVendor:
		return models.WidgetConfig{
			Title:           "Vendor Assistant",
			Theme:           "emerald",
			Greeting:        "Welcome back! Ask me about your store, orders or payouts.",
			DefaultResponse: "I don't have an answer for that yet. Try asking about orders, payouts or your listings.",
			QuickReplies: []models.QuickReply{
				{Label: "Sales summary", Prompt: "Give me my sales summary"},
				{Label: "Payout schedule", Prompt: "When is my next payout?"},
			},
			Contact: &models.ContactConfig{
				Intro:   "Let me connect you with our vendor support team.",
				Details: []string{"Email: vendors@ruachestore.com.ng", "WhatsApp: +234 701 111 2222"},
			},
		}
	case KindServiceProvider:
		return models.WidgetConfig{
			Title:           "Provider Assistant",
			Theme:           "indigo",
			Greeting:        "Hello! I can help with your service listings and verification.",
			DefaultResponse: "I can't help with that yet. Ask me about listings, bookings or verification.",
			QuickReplies: []models.QuickReply{
				{Label: "Verification status", Prompt: "What is my verification status?"},
				{Label: "My bookings", Prompt: "Show my bookings overview"},
			},
			Contact: &models.ContactConfig{
				Intro:   "Our provider support team can take it from here.",
				Details: []string{"Email: providers@ruachestore.com.ng", "Phone: +234 701 333 4444"},
			},
		}
	case KindShopper:
		return models.WidgetConfig{
			Title:           "RUACH Assistant",
			Theme:           "gold",
			Greeting:        "Hi! Looking for something? I can help you find it.",
			DefaultResponse: "I'm not sure about that one. Try asking about products, shipping or returns.",
			QuickReplies: []models.QuickReply{
				{Label: "Track my order", Prompt: "Track my order"},
				{Label: "Shipping info", Prompt: "How long does shipping take?"},
				{Label: "Talk to a human", Prompt: "I want to talk to a human"},
			},
			Contact: &models.ContactConfig{
				Intro:   "No problem — here's how to reach a real person.",
				Details: []string{"Email: support@ruachestore.com.ng", "WhatsApp: +234 700 555 0000", "Hours: Mon–Sat, 9am–6pm WAT"},
			},
		}
	default:
		return models.WidgetConfig{
			Title:           "RUACH Help",
			Theme:           "slate",
			Greeting:        "Hi there! How can I help?",
			DefaultResponse: "I don't know that yet, but our support team will.",
			Contact: &models.ContactConfig{
				Intro:   "Here's how to reach our support team.",
				Details: []string{"Email: support@ruachestore.com.ng"},
			},
		}
	}
}

func shopperIntents(scorer *Scorer, apiBase string) []models.Intent {
	intents := []models.Intent{
		{
			Keywords:       []string{"hello", "hi", "hey", "good morning", "good afternoon"},
			Policy:         models.MatchExact,
			StaticResponse: "Hello! What can I help you find today?",
		},
		{
			Keywords:       []string{"shipping", "delivery", "deliver"},
			StaticResponse: "We ship nationwide in 24-48h, and internationally within 5-10 business days.",
		},
		{
			Keywords:       []string{"return", "refund"},
			StaticResponse: "You can return any unopened item within 14 days for a full refund. Start from your Orders page.",
		},
	}

	if scorer != nil {
		intents = append(intents, models.Intent{
			Keywords:       []string{"find", "looking for", "search", "recommend", "suggest", "do you have", "do you sell"},
			StaticResponse: "I couldn't find anything matching that. Could you describe the product differently?",
			Action: func(ctx context.Context, input string, conv models.ConversationContext) (string, error) {
				return scorer.Recommend(ctx, input)
			},
		})
	}

	intents = append(intents, models.Intent{
		Keywords: []string{"track", "order status", "where is my order"},
		Remote: &models.RemoteAction{
			Endpoint: apiBase + "/api/orders/track",
			Method:   http.MethodGet,
			QueryFunc: func(input string, conv models.ConversationContext) map[string]any {
				return map[string]any{"userId": conv.UserID, "q": input}
			},
			TransformResponse: func(body any, input string, conv models.ConversationContext) (string, error) {
				data, ok := body.(map[string]any)
				if !ok {
					return "", fmt.Errorf("unexpected tracking payload")
				}
				status, _ := data["status"].(string)
				eta, _ := data["eta"].(string)
				if status == "" {
					return "I couldn't find a recent order for you.", nil
				}
				if eta != "" {
					return fmt.Sprintf("Your latest order is %s — expected by %s.", status, eta), nil
				}
				return fmt.Sprintf("Your latest order is %s.", status), nil
			},
			ErrorMessage: "I couldn't reach order tracking just now. Please try again in a moment.",
		},
	})

	return intents
}

func vendorIntents(apiBase string) []models.Intent {
	return []models.Intent{
		{
			Keywords:       []string{"payout", "withdrawal"},
			StaticResponse: "Payouts run every Friday for balances above ₦5,000. You can change your payout account in Settings.",
		},
		{
			Keywords: []string{"sales", "summary"},
			Policy:   models.MatchAll,
			Remote: &models.RemoteAction{
				EndpointFunc: func(input string, conv models.ConversationContext) string {
					if conv.UserID == "" {
						return ""
					}
					return fmt.Sprintf("%s/api/vendor/%s/summary", apiBase, conv.UserID)
				},
				Method: http.MethodGet,
				TransformResponse: func(body any, input string, conv models.ConversationContext) (string, error) {
					data, ok := body.(map[string]any)
					if !ok {
						return "", fmt.Errorf("unexpected summary payload")
					}
					orders, _ := data["orders"].(float64)
					revenue, _ := data["revenue"].(float64)
					return fmt.Sprintf("This week: %.0f orders, ₦%.2f in revenue.", orders, revenue), nil
				},
				ErrorMessage: "I couldn't pull your sales summary right now. Please try again shortly.",
			},
		},
		{
			Keywords:       []string{"listing", "product", "upload"},
			StaticResponse: "You can add or edit listings from your vendor dashboard under Products. Images are processed automatically.",
		},
	}
}

func serviceProviderIntents(apiBase string) []models.Intent {
	return []models.Intent{
		{
			Keywords:       []string{"kyc", "verify", "verification"},
			StaticResponse: "Verification usually completes within 2 business days of uploading your documents.",
		},
		{
			Keywords: []string{"booking", "bookings", "appointment"},
			Remote: &models.RemoteAction{
				Endpoint: apiBase + "/api/provider/bookings/overview",
				Method:   http.MethodGet,
				QueryFunc: func(input string, conv models.ConversationContext) map[string]any {
					return map[string]any{"providerId": conv.UserID}
				},
				ErrorMessage: "Bookings are unavailable right now — check your dashboard in a few minutes.",
			},
		},
	}
}

func generalIntents() []models.Intent {
	return []models.Intent{
		{
			Keywords:       []string{"hello", "hi", "hey"},
			Policy:         models.MatchExact,
			StaticResponse: "Hi! Ask me anything about RUACH.",
		},
		{
			Keywords:       []string{"human", "agent", "support", "someone"},
			StaticResponse: "Tap \"Talk to a human\" below and I'll share our support contacts.",
		},
		{
			Keywords:       []string{"about", "ruach"},
			StaticResponse: "RUACH is an online marketplace for quality products from trusted vendors across Nigeria and beyond.",
		},
	}
}

// NormalizeKind folds an arbitrary host-supplied widget type onto one of
// the known kinds.
func NormalizeKind(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindVendor:
		return KindVendor
	case KindServiceProvider, "provider":
		return KindServiceProvider
	case KindShopper, "customer", "":
		return KindShopper
	default:
		return KindGeneral
	}
}
