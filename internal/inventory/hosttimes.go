package inventory

import (
	"sort"

	"influxinv/internal/check"
)

// HostTimes accumulates observed record times per host across every
// measurement scanned in one run.
type HostTimes struct {
	samples map[string][]string
}

func NewHostTimes() *HostTimes {
	return &HostTimes{samples: make(map[string][]string)}
}

func (h *HostTimes) Add(host, raw string) {
	h.samples[host] = append(h.samples[host], raw)
}

// HostSpan is the oldest and newest sample observed for a host.
type HostSpan struct {
	Host   string
	Oldest string
	Newest string
}

// Spans returns one span per host with at least one sample, sorted by host.
func (h *HostTimes) Spans() []HostSpan {
	hosts := make([]string, 0, len(h.samples))
	for host, times := range h.samples {
		if len(times) > 0 {
			hosts = append(hosts, host)
		}
	}
	sort.Strings(hosts)

	out := make([]HostSpan, 0, len(hosts))
	for _, host := range hosts {
		times := h.samples[host]
		span := HostSpan{Host: host, Oldest: times[0], Newest: times[0]}
		for _, t := range times[1:] {
			if earlier(t, span.Oldest) {
				span.Oldest = t
			}
			if earlier(span.Newest, t) {
				span.Newest = t
			}
		}
		check.Assertf(!earlier(span.Newest, span.Oldest), "host %s: newest %s precedes oldest %s", host, span.Newest, span.Oldest)
		out = append(out, span)
	}
	return out
}
