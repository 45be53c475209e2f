package rpc

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
)

// probeTimeout bounds a single endpoint probe.
const probeTimeout = 5 * time.Second

// PingFunc measures one endpoint: latency and latest block.
type PingFunc func(ctx context.Context, url string) (time.Duration, uint64, error)

// Prober probes endpoints in parallel. It keeps one Picker per algorithm
// and endpoint set so round-robin position and the fastest cache survive
// between Select calls.
type Prober struct {
	ping PingFunc

	mu      sync.Mutex
	pickers map[string]*Picker
}

// NewProber returns a Prober using ping, or chain.Ping when nil.
func NewProber(ping PingFunc) *Prober {
	if ping == nil {
		ping = chain.Ping
	}
	return &Prober{ping: ping, pickers: make(map[string]*Picker)}
}

// Probe pings every URL concurrently. Every returned endpoint is Checked.
func (p *Prober) Probe(ctx context.Context, urls []string) []Endpoint {
	out := make([]Endpoint, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out[i] = p.HealthCheck(ctx, url, 0)
		}()
	}
	wg.Wait()
	return out
}

// HealthCheck probes one endpoint. With tip > 0 an endpoint more than
// staleBlockThreshold blocks behind it is unhealthy.
func (p *Prober) HealthCheck(ctx context.Context, url string, tip uint64) Endpoint {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	latency, block, err := p.ping(ctx, url)
	ep := Endpoint{
		URL:         url,
		Latency:     latency,
		BlockNumber: block,
		Healthy:     err == nil,
		Checked:     true,
	}
	if ep.Healthy && tip > 0 && tip > block && tip-block > staleBlockThreshold {
		ep.Healthy = false
	}
	return ep
}

// Select probes urls and picks one with the named algorithm. A single URL is
// returned without probing.
func (p *Prober) Select(ctx context.Context, urls []string, algorithm string) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}

	winner, err := p.picker(ParseAlgorithm(algorithm), urls).Pick(p.Probe(ctx, urls))
	if err != nil {
		return "", err
	}
	return winner.URL, nil
}

// picker returns the Picker for algo over urls, creating it on first use.
func (p *Prober) picker(algo Algorithm, urls []string) *Picker {
	key := string(algo) + "|" + strings.Join(urls, ",")

	p.mu.Lock()
	defer p.mu.Unlock()
	pk, ok := p.pickers[key]
	if !ok {
		pk = NewPicker(algo)
		p.pickers[key] = pk
	}
	return pk
}

var defaultProber = NewProber(nil)

// SelectBest is Select with the process-wide default prober.
func SelectBest(ctx context.Context, urls []string, algorithm string) (string, error) {
	return defaultProber.Select(ctx, urls, algorithm)
}
