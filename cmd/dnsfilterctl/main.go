// Command dnsfilterctl loads a filter-list configuration and prints the
// effective rules for a single query, without opening any socket. It is a
// drivable stand-in for a DNS forwarder's filtering call.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/miekg/dns"

	"dnsfilter/config"
	"dnsfilter/engine"
	"dnsfilter/filterlist"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	host := flag.String("host", "", "Queried host name")
	rrType := flag.String("type", "A", "Queried DNS record type (A, AAAA, CNAME, ...)")
	flag.Parse()

	if *host == "" {
		log.Fatal("dnsfilterctl: -host is required")
	}

	rt, ok := dns.StringToType[*rrType]
	if !ok {
		log.Fatalf("dnsfilterctl: unknown record type %q", *rrType)
	}

	cfgMgr := config.NewManager(*configPath)
	if err := cfgMgr.Load(); err != nil {
		log.Fatalf("dnsfilterctl: loading config: %v", err)
	}
	cfg := cfgMgr.Get()

	eng, warn, err := engine.Load(context.Background(), cfg.Filters, cfg.MemLimit)
	if err != nil {
		log.Fatalf("dnsfilterctl: loading filter lists: %v", err)
	}
	if warn != nil {
		log.Printf("dnsfilterctl: filter lists truncated by memory limit: %v", warn.FilterIDsOverBudget)
	}

	matched := eng.Match(filterlist.Query{Host: *host, RRType: rt})
	effective := eng.SelectEffectiveRules(matched)

	if len(effective) == 0 {
		log.Printf("%s %s: no matching rule", *host, *rrType)
		return
	}
	for _, m := range effective {
		log.Printf("%s %s: filter=%d rule=%q", *host, *rrType, m.FilterID, m.Rule.Text)
	}
}
