package rule

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// supportedModifiers mirrors the original parser's SUPPORTED_MODIFIERS
// table: this DNS-filtering core recognizes exactly these four, unlike the
// url-blocking flavor of the same syntax which also carries $client,
// $denyallow, $important's network-level siblings, and similar request-path
// modifiers that have no meaning without an HTTP request to inspect.
var supportedModifiers = map[string]bool{
	"important":  true,
	"badfilter":  true,
	"dnstype":    true,
	"dnsrewrite": true,
}

// splitModifierTokens splits a rule's "$opt1,opt2=v,opt3" suffix on commas,
// honoring a backslash-escaped comma inside a modifier value.
func splitModifierTokens(s string) []string {
	var tokens []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) && s[i+1] == ',' {
			cur.WriteByte(',')
			i++
			continue
		}
		if c == ',' {
			tokens = append(tokens, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	tokens = append(tokens, cur.String())
	return tokens
}

// applyModifiers parses optionsText (the text following a rule's "$", not
// including the "$" itself) and sets the corresponding fields on r. It
// rejects unknown modifiers and duplicates, matching extract_modifiers's
// strictness in rule_utils.cpp.
func applyModifiers(optionsText string, r *Rule) error {
	seen := make(map[string]bool)

	for _, tok := range splitModifierTokens(optionsText) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		name, value, hasValue := tok, "", false
		if idx := strings.IndexByte(tok, '='); idx >= 0 {
			name, value, hasValue = tok[:idx], tok[idx+1:], true
		}
		name = strings.ToLower(strings.TrimSpace(name))

		if !supportedModifiers[name] {
			return fmt.Errorf("rule: unsupported modifier %q", name)
		}
		if seen[name] {
			return fmt.Errorf("rule: duplicate modifier %q", name)
		}
		seen[name] = true

		switch name {
		case "important":
			if hasValue {
				return fmt.Errorf("rule: modifier %q takes no value", name)
			}
			r.Important = true
		case "badfilter":
			if hasValue {
				return fmt.Errorf("rule: modifier %q takes no value", name)
			}
			r.BadFilter = true
		case "dnstype":
			if !hasValue || value == "" {
				// Empty parameter list is allowed only for exception
				// rules (parse_dnstype_modifier in rule_utils.cpp): an
				// empty exclude-list already matches every type, per
				// DNSTypeModifier.Allows.
				if !r.Exception {
					return fmt.Errorf("rule: modifier %q requires a value", name)
				}
				r.DNSType = &DNSTypeModifier{Mode: DNSTypeExclude}
				break
			}
			mod, err := parseDNSTypeModifier(value)
			if err != nil {
				return err
			}
			r.DNSType = mod
		case "dnsrewrite":
			rw, err := parseDNSRewrite(value)
			if err != nil {
				return err
			}
			r.DNSRewrite = rw
		}
	}

	return nil
}

// parseDNSTypeModifier parses "$dnstype=A|AAAA" (enable-list) or
// "$dnstype=~A|~AAAA" (exclude-list). Mixing enable and exclude entries in
// the same modifier is rejected.
func parseDNSTypeModifier(value string) (*DNSTypeModifier, error) {
	if value == "" {
		return nil, fmt.Errorf("rule: dnstype requires a value")
	}

	mod := &DNSTypeModifier{}
	var mode DNSTypeMode
	modeSet := false

	for _, p := range strings.Split(value, "|") {
		p = strings.TrimSpace(p)
		exclude := strings.HasPrefix(p, "~")
		if exclude {
			p = p[1:]
		}
		thisMode := DNSTypeEnable
		if exclude {
			thisMode = DNSTypeExclude
		}
		if modeSet && thisMode != mode {
			return nil, fmt.Errorf("rule: dnstype cannot mix enable and exclude entries")
		}
		mode, modeSet = thisMode, true

		t, ok := dns.StringToType[strings.ToUpper(p)]
		if !ok {
			return nil, fmt.Errorf("rule: unknown DNS record type %q", p)
		}
		mod.Types = append(mod.Types, t)
	}

	mod.Mode = mode
	return mod, nil
}
