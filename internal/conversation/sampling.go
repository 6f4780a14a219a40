package conversation

import (
	"math/rand/v2"

	"onboarding-chat/internal/backend"
)

// SampleFAQs returns min(n, len(faqs)) distinct entries chosen uniformly at
// random without replacement. faqs is not modified.
func SampleFAQs(rng *rand.Rand, faqs []backend.FAQ, n int) []backend.FAQ {
	if n > len(faqs) {
		n = len(faqs)
	}
	if n <= 0 {
		return nil
	}

	pool := make([]backend.FAQ, len(faqs))
	copy(pool, faqs)
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n:n]
}
