package backend

// OnboardingOptions is the option catalogue served by GET /api/onboarding.
type OnboardingOptions struct {
	BusinessTypes []string `json:"business_types"`
	BusinessSizes []string `json:"business_sizes"`
	Goals         []string `json:"goals"`
}

// Answers is the body of POST /api/recommend.
type Answers struct {
	BusinessType string   `json:"business_type,omitempty"`
	BusinessSize string   `json:"business_size,omitempty"`
	Goals        []string `json:"goals,omitempty"`
}

type Product struct {
	Description string   `json:"description"`
	KeyFeatures []string `json:"key_features"`
	Pricing     string   `json:"pricing"`
	DemoLink    string   `json:"demo_link"`
}

type Recommendation struct {
	Recommendation string  `json:"recommendation"`
	Product        Product `json:"product"`
	MatchReason    string  `json:"match_reason,omitempty"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Contact is present on a FAQ answer when the backend found no direct match.
type Contact struct {
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Action string `json:"action,omitempty"`
}

type FAQAnswer struct {
	Answer  string   `json:"answer"`
	Contact *Contact `json:"contact,omitempty"`
}

type faqQuestion struct {
	Question string `json:"question"`
}
