package rule

import (
	"fmt"
	"net"
	"net/netip"
	"strings"
)

// parseHostFileRule implements spec.md §4.1's host-file branch: "<ip>
// <name> [<name>...] [# comment]". One Rule is produced per hostname, each
// matching that name and its subdomains (MMID_SUBDOMAINS in the original's
// parse_host_file_rule) and resolving to ip.
func parseHostFileRule(line string) ([]*Rule, error) {
	text := line
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		line = line[:idx]
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, fmt.Errorf("rule: host file line needs an address and at least one name")
	}

	addr, err := netip.ParseAddr(fields[0])
	if err != nil {
		return nil, fmt.Errorf("rule: host file address %q: %w", fields[0], err)
	}
	ip := net.ParseIP(addr.String())

	// parse_host_file_rule in rule_utils.cpp rejects the entire line the
	// moment one name fails the domain-pattern check, rather than dropping
	// just that name and keeping the rest.
	rules := make([]*Rule, 0, len(fields)-1)
	for _, name := range fields[1:] {
		name = strings.ToLower(name)
		if !IsDomainName(name) {
			return nil, fmt.Errorf("rule: host file name %q is not a valid domain name", name)
		}
		rules = append(rules, &Rule{
			Text:          text,
			Kind:          KindHostFile,
			MatchMethod:   MethodSubdomains,
			MatchingParts: []string{name},
			HostIP:        ip,
		})
	}
	return rules, nil
}
