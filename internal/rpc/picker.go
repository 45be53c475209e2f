// Package rpc chooses which JSON-RPC endpoint of a chain to use.
package rpc

import (
	"errors"
	"sync"
	"time"
)

// ErrNoHealthyRPC is returned when no endpoint can be selected.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm names an endpoint selection strategy.
type Algorithm string

const (
	AlgorithmFastest    Algorithm = "fastest"
	AlgorithmRoundRobin Algorithm = "round-robin"
	AlgorithmFailover   Algorithm = "failover"

	// Endpoints more than this many blocks behind the tip are skipped.
	staleBlockThreshold = 3
	// How long the fastest winner is reused before probing again.
	cacheTTL = 5 * time.Minute
)

// ParseAlgorithm maps a config value to an Algorithm, defaulting to fastest.
func ParseAlgorithm(s string) Algorithm {
	switch Algorithm(s) {
	case AlgorithmRoundRobin, AlgorithmFailover:
		return Algorithm(s)
	default:
		return AlgorithmFastest
	}
}

// Endpoint is one RPC URL with its last probe result.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Healthy     bool // only meaningful when Checked
	Checked     bool
}

// Picker selects an endpoint by algorithm. It is safe for concurrent use.
type Picker struct {
	algo Algorithm

	mu          sync.Mutex
	next        int
	cachedURL   string
	cacheExpiry time.Time
	now         func() time.Time
}

// NewPicker creates a Picker for algo.
func NewPicker(algo Algorithm) *Picker {
	return &Picker{algo: algo, now: time.Now}
}

// Pick selects one of endpoints.
func (p *Picker) Pick(endpoints []Endpoint) (*Endpoint, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoHealthyRPC
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.algo {
	case AlgorithmRoundRobin:
		return p.roundRobin(endpoints)
	case AlgorithmFailover:
		return failover(endpoints)
	default:
		return p.fastest(endpoints)
	}
}

func (p *Picker) fastest(endpoints []Endpoint) (*Endpoint, error) {
	if p.cachedURL != "" && p.now().Before(p.cacheExpiry) {
		for _, e := range candidates(endpoints) {
			if e.URL == p.cachedURL {
				return e, nil
			}
		}
	}

	tip := bestBlock(endpoints)
	var (
		winner *Endpoint
		best   float64
	)
	for _, e := range candidates(endpoints) {
		if tip > 0 && tip-e.BlockNumber > staleBlockThreshold {
			continue
		}
		if s := score(e, tip); winner == nil || s > best {
			winner, best = e, s
		}
	}
	if winner == nil {
		return nil, ErrNoHealthyRPC
	}

	p.cachedURL = winner.URL
	p.cacheExpiry = p.now().Add(cacheTTL)
	return winner, nil
}

func (p *Picker) roundRobin(endpoints []Endpoint) (*Endpoint, error) {
	pool := candidates(endpoints)
	if len(pool) == 0 {
		return nil, ErrNoHealthyRPC
	}
	e := pool[p.next%len(pool)]
	p.next = (p.next + 1) % len(pool)
	return e, nil
}

// failover returns the first endpoint not known to be down.
func failover(endpoints []Endpoint) (*Endpoint, error) {
	for i := range endpoints {
		if endpoints[i].Checked && !endpoints[i].Healthy {
			continue
		}
		return &endpoints[i], nil
	}
	return nil, ErrNoHealthyRPC
}

// score favours low latency, then closeness to the tip.
func score(e *Endpoint, tip uint64) float64 {
	var s float64
	if ms := e.Latency.Milliseconds(); ms > 0 {
		s += 1000.0 / float64(ms)
	}
	if tip > 0 {
		s += float64(10 - int64(tip-e.BlockNumber))
	}
	return s
}

func bestBlock(endpoints []Endpoint) uint64 {
	var tip uint64
	for _, e := range endpoints {
		tip = max(tip, e.BlockNumber)
	}
	return tip
}

// candidates drops endpoints that were probed and found unhealthy.
// Unprobed endpoints are always candidates.
func candidates(endpoints []Endpoint) []*Endpoint {
	out := make([]*Endpoint, 0, len(endpoints))
	for i := range endpoints {
		e := &endpoints[i]
		if e.Checked && !e.Healthy {
			continue
		}
		out = append(out, e)
	}
	return out
}
