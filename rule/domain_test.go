package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDomainName(t *testing.T) {
	assert.True(t, IsDomainName("example.com"))
	assert.True(t, IsDomainName("sub.example.com"))
	assert.False(t, IsDomainName(""))
	assert.False(t, IsDomainName("1.2.3.4"))
	assert.False(t, IsDomainName(".example.com"))
	assert.False(t, IsDomainName("example.com."))
	assert.False(t, IsDomainName("*.example.com"))
}

func TestIsHostFileRule(t *testing.T) {
	assert.True(t, IsHostFileRule("127.0.0.1 example.com"))
	assert.True(t, IsHostFileRule("::1 localhost"))
	assert.False(t, IsHostFileRule("||example.com^"))
	assert.False(t, IsHostFileRule("example.com"))
}

func TestIsValidDomainPattern(t *testing.T) {
	assert.True(t, IsValidDomainPattern("example.com"))
	assert.True(t, IsValidDomainPattern("*.example.com"))
	assert.False(t, IsValidDomainPattern(""))
	assert.False(t, IsValidDomainPattern("exa mple.com"))
}
