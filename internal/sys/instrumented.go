// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package sys

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Instrumented decorates a Gateway with prometheus counters per operation.
// ENOENT results are counted separately from other failures since they are a
// normal part of lookup and traversal.
type Instrumented struct {
	next Gateway

	calls    *prometheus.CounterVec
	errors   *prometheus.CounterVec
	notFound *prometheus.CounterVec
}

// NewInstrumented wraps gw with call and error counters.
func NewInstrumented(gw Gateway) *Instrumented {
	return &Instrumented{
		next: gw,
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bpfmap_gateway_calls_total",
			Help: "Total number of BPF map syscalls issued, by operation",
		}, []string{"op"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bpfmap_gateway_errors_total",
			Help: "Total number of failed BPF map syscalls, by operation",
		}, []string{"op"}),
		notFound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bpfmap_gateway_not_found_total",
			Help: "Total number of syscalls that reported a missing entry or end of map, by operation",
		}, []string{"op"}),
	}
}

// Register adds the gateway metrics to reg.
func (g *Instrumented) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{g.calls, g.errors, g.notFound} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (g *Instrumented) observe(op string, err error) {
	g.calls.WithLabelValues(op).Inc()
	if err == nil {
		return
	}
	if IsNotExist(err) {
		g.notFound.WithLabelValues(op).Inc()
		return
	}
	g.errors.WithLabelValues(op).Inc()
}

func (g *Instrumented) LookupElem(fd RawFD, key, valueOut []byte, flags uint64) (int, error) {
	ret, err := g.next.LookupElem(fd, key, valueOut, flags)
	g.observe("lookup", err)
	return ret, err
}

func (g *Instrumented) UpdateElem(fd RawFD, key, value []byte, flags uint64) (int, error) {
	ret, err := g.next.UpdateElem(fd, key, value, flags)
	g.observe("update", err)
	return ret, err
}

func (g *Instrumented) DeleteElem(fd RawFD, key []byte) (int, error) {
	ret, err := g.next.DeleteElem(fd, key)
	g.observe("delete", err)
	return ret, err
}

func (g *Instrumented) GetNextKey(fd RawFD, key, nextKeyOut []byte) (int, error) {
	ret, err := g.next.GetNextKey(fd, key, nextKeyOut)
	g.observe("get_next_key", err)
	return ret, err
}
