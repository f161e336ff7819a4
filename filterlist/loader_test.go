package filterlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_BuildsIndexFromMemorySource(t *testing.T) {
	data := "||ads.example.com^\n" +
		"example.org\n" +
		"/tracker[0-9]+\\.net/\n" +
		"||*.cdn.example.net^\n"

	src := NewMemorySource("test", data)
	idx, err := Load(1, src, Unlimited)
	require.NoError(t, err)

	assert.Len(t, idx.uniqueDomains, 2) // ads.example.com, example.org
	assert.Len(t, idx.leftovers, 1)     // the slash-delimited regex rule always goes to leftovers
	assert.NotEmpty(t, idx.shortcuts)   // the cdn wildcard rule
	assert.Greater(t, idx.approxMemory, int64(0))
}

func TestLoad_MemoryLimitReached(t *testing.T) {
	data := "||one.example.com^\n||two.example.com^\n||three.example.com^\n"
	src := NewMemorySource("test", data)

	budget := newTestBudget(1)
	idx, err := Load(1, src, budget)
	require.ErrorIs(t, err, ErrMemLimitReached)
	assert.NotNil(t, idx)
}

// testBudget refuses every reservation past the first n.
type testBudget struct {
	remaining int
}

func newTestBudget(n int) *testBudget { return &testBudget{remaining: n} }

func (b *testBudget) Reserve(int64) bool {
	if b.remaining <= 0 {
		return false
	}
	b.remaining--
	return true
}

func (b *testBudget) Release(int64) {}
