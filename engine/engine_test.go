package engine

import (
	"context"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dnsfilter/config"
	"dnsfilter/filterlist"
	"dnsfilter/rule"
)

func loadTestEngine(t *testing.T, filters []config.FilterConfig) *Engine {
	t.Helper()
	e, _, err := Load(context.Background(), filters, 0)
	require.NoError(t, err)
	return e
}

func TestLoad_AndMatch(t *testing.T) {
	e := loadTestEngine(t, []config.FilterConfig{
		{ID: 1, InMemory: true, Data: "||example.com^\n"},
		{ID: 2, InMemory: true, Data: "@@||allowed.example.com^\n"},
	})

	got := e.Match(filterlist.Query{Host: "ads.example.com", RRType: dns.TypeA})
	require.Len(t, got, 1)
	assert.False(t, got[0].Rule.Exception)
}

func TestSelectEffectiveRules_ExceptionBeatsBlock(t *testing.T) {
	e := loadTestEngine(t, []config.FilterConfig{
		{ID: 1, InMemory: true, Data: "||example.com^\n@@||example.com^\n"},
	})

	matched := e.Match(filterlist.Query{Host: "example.com", RRType: dns.TypeA})
	require.Len(t, matched, 2)

	effective := e.SelectEffectiveRules(matched)
	require.Len(t, effective, 1)
	assert.True(t, effective[0].Rule.Exception)
}

func TestSelectEffectiveRules_ImportantBeatsException(t *testing.T) {
	e := loadTestEngine(t, []config.FilterConfig{
		{ID: 1, InMemory: true, Data: "||example.com^$important\n@@||example.com^\n"},
	})

	matched := e.Match(filterlist.Query{Host: "example.com", RRType: dns.TypeA})
	require.Len(t, matched, 2)

	effective := e.SelectEffectiveRules(matched)
	require.Len(t, effective, 1)
	assert.True(t, effective[0].Rule.Important)
	assert.False(t, effective[0].Rule.Exception)
}

func TestSelectEffectiveRules_ImportantBlockBeatsImportantException(t *testing.T) {
	e := loadTestEngine(t, []config.FilterConfig{
		{ID: 1, InMemory: true, Data: "||ads.example^$important\n@@||ads.example^$important\n"},
	})

	matched := e.Match(filterlist.Query{Host: "ads.example", RRType: dns.TypeA})
	require.Len(t, matched, 2)

	effective := e.SelectEffectiveRules(matched)
	require.Len(t, effective, 1)
	assert.True(t, effective[0].Rule.Important)
	assert.False(t, effective[0].Rule.Exception)
}

func TestSelectEffectiveRules_BadFilterCancelsMatchingRule(t *testing.T) {
	e := loadTestEngine(t, []config.FilterConfig{
		{ID: 1, InMemory: true, Data: "||example.com^\n"},
		{ID: 2, InMemory: true, Data: "||example.com^$badfilter\n"},
	})

	matched := e.Match(filterlist.Query{Host: "example.com", RRType: dns.TypeA})
	effective := e.SelectEffectiveRules(matched)
	assert.Empty(t, effective)
}

func TestSelectEffectiveRules_HostFileWinsOverAdblock(t *testing.T) {
	e := loadTestEngine(t, []config.FilterConfig{
		{ID: 1, InMemory: true, Data: "||example.com^\n"},
		{ID: 2, InMemory: true, Data: "10.0.0.1 example.com\n"},
	})

	matched := e.Match(filterlist.Query{Host: "example.com", RRType: dns.TypeA})
	effective := e.SelectEffectiveRules(matched)
	require.Len(t, effective, 1)
	assert.Equal(t, rule.KindHostFile, effective[0].Rule.Kind)
}

func TestSelectEffectiveRules_DNSRewriteWinsOverCatchAll(t *testing.T) {
	e := loadTestEngine(t, []config.FilterConfig{
		{ID: 1, InMemory: true, Data: "||example.com^\n||example.com^$dnsrewrite=1.2.3.4\n"},
	})

	matched := e.Match(filterlist.Query{Host: "example.com", RRType: dns.TypeA})
	effective := e.SelectEffectiveRules(matched)
	require.Len(t, effective, 1)
	require.NotNil(t, effective[0].Rule.DNSRewrite)
}

func TestLoad_MemLimitWarningReported(t *testing.T) {
	_, warn, err := Load(context.Background(), []config.FilterConfig{
		{ID: 1, InMemory: true, Data: "||one.example.com^\n||two.example.com^\n"},
	}, 1)
	require.NoError(t, err)
	require.NotNil(t, warn)
	assert.Contains(t, warn.FilterIDsOverBudget, 1)
}
