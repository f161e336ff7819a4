package filterlist

import (
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildIndex(t *testing.T, data string) *Index {
	t.Helper()
	idx, err := Load(1, NewMemorySource("test", data), Unlimited)
	require.NoError(t, err)
	return idx
}

func TestMatch_Subdomains(t *testing.T) {
	idx := buildIndex(t, "||example.com^\n")

	got := Match(idx, Query{Host: "ads.example.com", RRType: dns.TypeA})
	require.Len(t, got, 1)
	assert.Equal(t, "||example.com^", got[0].Rule.Text)
}

func TestMatch_ExactDoesNotMatchSubdomain(t *testing.T) {
	idx := buildIndex(t, "example.com\n")

	got := Match(idx, Query{Host: "ads.example.com", RRType: dns.TypeA})
	assert.Empty(t, got)

	got = Match(idx, Query{Host: "example.com", RRType: dns.TypeA})
	require.Len(t, got, 1)
}

func TestMatch_SubdomainsDoesNotMatchBareTLD(t *testing.T) {
	idx := buildIndex(t, "||org^\n")

	got := Match(idx, Query{Host: "example.org", RRType: dns.TypeA})
	assert.Empty(t, got, "a subdomains rule equal to a TLD must not match every name under it")

	got = Match(idx, Query{Host: "org", RRType: dns.TypeA})
	require.Len(t, got, 1, "the bare TLD itself, queried directly, still matches")
}

func TestMatch_PlainShortcuts(t *testing.T) {
	idx := buildIndex(t, "example.com$dnstype=A\n")

	got := Match(idx, Query{Host: "notexample.com.evil.test", RRType: dns.TypeA})
	require.Len(t, got, 1, "an unanchored shortcuts rule matches as a substring, not a full-name equality")

	got = Match(idx, Query{Host: "other.test", RRType: dns.TypeA})
	assert.Empty(t, got)
}

func TestMatch_ShortcutsAndRegex(t *testing.T) {
	idx := buildIndex(t, "||*.cdn.example.net^\n")

	got := Match(idx, Query{Host: "assets.cdn.example.net", RRType: dns.TypeA})
	require.Len(t, got, 1)

	got = Match(idx, Query{Host: "cdn.example.net", RRType: dns.TypeA})
	assert.Empty(t, got, "bare cdn.example.net has no leading label for the wildcard to consume")
}

func TestMatch_LeftoverRegex(t *testing.T) {
	idx := buildIndex(t, `/tracker[0-9]+\.net/`+"\n")

	got := Match(idx, Query{Host: "tracker42.net", RRType: dns.TypeA})
	require.Len(t, got, 1)

	got = Match(idx, Query{Host: "example.net", RRType: dns.TypeA})
	assert.Empty(t, got)
}

func TestMatch_DNSTypeFiltersByRRType(t *testing.T) {
	idx := buildIndex(t, "||example.com^$dnstype=AAAA\n")

	got := Match(idx, Query{Host: "example.com", RRType: dns.TypeA})
	assert.Empty(t, got)

	got = Match(idx, Query{Host: "example.com", RRType: dns.TypeAAAA})
	require.Len(t, got, 1)
}

func TestMatch_HostFileExact(t *testing.T) {
	idx := buildIndex(t, "127.0.0.1 example.com www.example.com\n")

	got := Match(idx, Query{Host: "www.example.com", RRType: dns.TypeA})
	require.Len(t, got, 1)
	assert.Equal(t, "127.0.0.1", got[0].Rule.HostIP.String())
}

func TestIndex_CancelledByBadFilter(t *testing.T) {
	idx := buildIndex(t, "||example.com^$badfilter\n")
	assert.True(t, idx.CancelledByBadFilter("||example.com^"))
	assert.False(t, idx.CancelledByBadFilter("||other.com^"))
}

func TestMatch_ExtraNamesAreProbedToo(t *testing.T) {
	idx := buildIndex(t, "||cname-target.example.com^\n")

	got := Match(idx, Query{
		Host:       "alias.example.com",
		RRType:     dns.TypeCNAME,
		ExtraNames: []string{"cname-target.example.com"},
	})
	require.Len(t, got, 1)
}

func TestMatch_PTRQueryProbesReverseZone(t *testing.T) {
	idx := buildIndex(t, "||in-addr.arpa^\n")

	got := Match(idx, Query{Host: "1.0.0.127.in-addr.arpa", RRType: dns.TypePTR})
	require.Len(t, got, 1, "a PTR query against an in-addr.arpa name must probe the reverse zone")
}

func TestMatch_BareIPLiteralDoesNotProbeReverseZone(t *testing.T) {
	idx := buildIndex(t, "||in-addr.arpa^\n")

	got := Match(idx, Query{Host: "127.0.0.1", RRType: dns.TypeA})
	assert.Empty(t, got, "a bare IP literal is not itself a reverse-DNS lookup")
}
