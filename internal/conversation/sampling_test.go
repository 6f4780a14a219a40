package conversation

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboarding-chat/internal/backend"
)

func makeFAQs(n int) []backend.FAQ {
	out := make([]backend.FAQ, n)
	for i := range out {
		out[i] = backend.FAQ{Question: fmt.Sprintf("q%d", i), Answer: fmt.Sprintf("a%d", i)}
	}
	return out
}

func TestSampleFAQs_Sizes(t *testing.T) {
	tests := []struct {
		name string
		size int
		want int
	}{
		{"empty", 0, 0},
		{"one", 1, 1},
		{"two", 2, 2},
		{"exactly three", 3, 3},
		{"many", 50, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewPCG(1, 2))
			faqs := makeFAQs(tt.size)

			for i := 0; i < 100; i++ {
				got := SampleFAQs(rng, faqs, 3)
				require.Len(t, got, tt.want)

				seen := map[string]bool{}
				for _, f := range got {
					assert.False(t, seen[f.Question], "duplicate %s", f.Question)
					seen[f.Question] = true
					assert.Contains(t, faqs, f)
				}
			}
		})
	}
}

func TestSampleFAQs_LeavesInputAlone(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	faqs := makeFAQs(10)
	before := makeFAQs(10)

	_ = SampleFAQs(rng, faqs, 3)
	assert.Equal(t, before, faqs)
}

func TestSampleFAQs_NonPositiveCount(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	assert.Empty(t, SampleFAQs(rng, makeFAQs(5), 0))
	assert.Empty(t, SampleFAQs(rng, makeFAQs(5), -1))
	assert.Empty(t, SampleFAQs(rng, nil, 3))
}

func TestSampleFAQs_CoversEveryEntry(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	faqs := makeFAQs(6)
	counts := map[string]int{}

	for i := 0; i < 3000; i++ {
		for _, f := range SampleFAQs(rng, faqs, 3) {
			counts[f.Question]++
		}
	}

	// each entry is expected 1500 times
	require.Len(t, counts, 6)
	for q, n := range counts {
		assert.InDelta(t, 1500, n, 200, q)
	}
}

func TestSampleFAQs_SeedIsDeterministic(t *testing.T) {
	faqs := makeFAQs(20)
	a := SampleFAQs(rand.New(rand.NewPCG(9, 9)), faqs, 3)
	b := SampleFAQs(rand.New(rand.NewPCG(9, 9)), faqs, 3)
	assert.Equal(t, a, b)
}
