package rule

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/miekg/dns"
)

// DNSRewrite is the parsed form of $dnsrewrite. It either overrides the
// response code only (RRType == 0) or substitutes a concrete answer record.
//
// Long form is "RCODE;RRTYPE;VALUE" ("NOERROR;A;1.2.3.4",
// "NOERROR;CNAME;example.org"). A bare RCODE name ("REFUSED") overrides the
// response code only. Short form is any other bare value with no
// semicolons; its record type is inferred from its shape the way an
// /etc/hosts-style rewrite would be: an IPv4 literal is an A record, an IPv6
// literal is AAAA, anything else is CNAME.
type DNSRewrite struct {
	RCode  int
	RRType uint16
	Value  string
}

var rcodeByName = map[string]int{
	"NOERROR":  dns.RcodeSuccess,
	"NXDOMAIN": dns.RcodeNameError,
	"REFUSED":  dns.RcodeRefused,
	"SERVFAIL": dns.RcodeServerFailure,
	"FORMERR":  dns.RcodeFormatError,
	"NOTIMPL":  dns.RcodeNotImplemented,
}

var rrTypeByName = map[string]uint16{
	"A":     dns.TypeA,
	"AAAA":  dns.TypeAAAA,
	"CNAME": dns.TypeCNAME,
	"TXT":   dns.TypeTXT,
	"MX":    dns.TypeMX,
	"SVCB":  dns.TypeSVCB,
	"HTTPS": dns.TypeHTTPS,
	"PTR":   dns.TypePTR,
	"NS":    dns.TypeNS,
}

// parseDNSRewrite implements the $dnsrewrite value grammar.
func parseDNSRewrite(value string) (*DNSRewrite, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return &DNSRewrite{RCode: dns.RcodeSuccess}, nil
	}

	if !strings.Contains(value, ";") {
		if rcode, ok := rcodeByName[strings.ToUpper(value)]; ok {
			return &DNSRewrite{RCode: rcode}, nil
		}
		return parseShortDNSRewrite(value)
	}

	parts := strings.SplitN(value, ";", 3)
	rcodeName := strings.ToUpper(strings.TrimSpace(parts[0]))
	rcode, ok := rcodeByName[rcodeName]
	if !ok {
		return nil, fmt.Errorf("rule: unknown dnsrewrite rcode %q", parts[0])
	}
	if len(parts) == 1 {
		return &DNSRewrite{RCode: rcode}, nil
	}
	if len(parts) != 3 {
		return nil, fmt.Errorf("rule: dnsrewrite long form needs RCODE;RRTYPE;VALUE, got %q", value)
	}

	typeName := strings.ToUpper(strings.TrimSpace(parts[1]))
	rrType, ok := rrTypeByName[typeName]
	if !ok {
		return nil, fmt.Errorf("rule: unknown dnsrewrite record type %q", parts[1])
	}

	rw := &DNSRewrite{RCode: rcode, RRType: rrType, Value: strings.TrimSpace(parts[2])}
	if err := validateDNSRewriteValue(rw); err != nil {
		return nil, err
	}
	return rw, nil
}

func parseShortDNSRewrite(value string) (*DNSRewrite, error) {
	if addr, err := netip.ParseAddr(value); err == nil {
		if addr.Is4() {
			return &DNSRewrite{RCode: dns.RcodeSuccess, RRType: dns.TypeA, Value: addr.String()}, nil
		}
		return &DNSRewrite{RCode: dns.RcodeSuccess, RRType: dns.TypeAAAA, Value: addr.String()}, nil
	}
	return &DNSRewrite{RCode: dns.RcodeSuccess, RRType: dns.TypeCNAME, Value: value}, nil
}

func validateDNSRewriteValue(rw *DNSRewrite) error {
	switch rw.RRType {
	case dns.TypeA, dns.TypeAAAA:
		if _, err := netip.ParseAddr(rw.Value); err != nil {
			return fmt.Errorf("rule: dnsrewrite %s value %q is not an IP address", dns.TypeToString[rw.RRType], rw.Value)
		}
	case dns.TypeMX:
		fields := strings.Fields(rw.Value)
		if len(fields) != 2 {
			return fmt.Errorf("rule: dnsrewrite MX value %q needs \"<priority> <exchange>\"", rw.Value)
		}
		if _, err := strconv.ParseUint(fields[0], 10, 16); err != nil {
			return fmt.Errorf("rule: dnsrewrite MX priority %q is not a uint16", fields[0])
		}
	case dns.TypeTXT, dns.TypeCNAME, dns.TypePTR, dns.TypeNS, dns.TypeSVCB, dns.TypeHTTPS:
		if rw.Value == "" {
			return fmt.Errorf("rule: dnsrewrite %s value must not be empty", dns.TypeToString[rw.RRType])
		}
	}
	return nil
}
