package validation

// Response schemas for the onboarding backend. Optional fields the backend
// may add later are tolerated; only what the widget renders is required.
var (
	OnboardingResponse = NewValidator("onboarding", `{
		"type": "object",
		"required": ["business_types", "business_sizes", "goals"],
		"properties": {
			"business_types": {"type": "array", "items": {"type": "string"}},
			"business_sizes": {"type": "array", "items": {"type": "string"}},
			"goals":          {"type": "array", "items": {"type": "string"}}
		}
	}`)

	RecommendResponse = NewValidator("recommend", `{
		"type": "object",
		"required": ["recommendation", "product"],
		"properties": {
			"recommendation": {"type": "string"},
			"match_reason":   {"type": "string"},
			"product": {
				"type": "object",
				"required": ["description", "key_features", "pricing", "demo_link"],
				"properties": {
					"description":  {"type": "string"},
					"key_features": {"type": "array", "items": {"type": "string"}},
					"pricing":      {"type": "string"},
					"demo_link":    {"type": "string"}
				}
			}
		}
	}`)

	FAQListResponse = NewValidator("faq_list", `{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["question", "answer"],
			"properties": {
				"question": {"type": "string"},
				"answer":   {"type": "string"}
			}
		}
	}`)

	FAQAnswerResponse = NewValidator("faq_answer", `{
		"type": "object",
		"required": ["answer"],
		"properties": {
			"answer": {"type": "string"},
			"contact": {
				"type": "object",
				"required": ["email", "phone"],
				"properties": {
					"email":  {"type": "string"},
					"phone":  {"type": "string"},
					"action": {"type": "string"}
				}
			}
		}
	}`)
)
