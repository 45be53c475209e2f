package rpc_test

import (
	"testing"
	"time"

	"github.com/Mohsinsiddi/abistudio/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checked(url string, latency time.Duration, block uint64, healthy bool) rpc.Endpoint {
	return rpc.Endpoint{URL: url, Latency: latency, BlockNumber: block, Healthy: healthy, Checked: true}
}

func unchecked(url string, latency time.Duration, block uint64) rpc.Endpoint {
	return rpc.Endpoint{URL: url, Latency: latency, BlockNumber: block}
}

func TestPickerSelectsFastest(t *testing.T) {
	endpoints := []rpc.Endpoint{
		unchecked("http://slow.rpc", 200*time.Millisecond, 100),
		unchecked("http://fast.rpc", 30*time.Millisecond, 100),
		unchecked("http://medium.rpc", 80*time.Millisecond, 100),
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://fast.rpc", winner.URL)
}

func TestPickerSkipsStaleNodes(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://fresh.rpc", 50*time.Millisecond, 1000, true),
		checked("http://stale.rpc", 10*time.Millisecond, 990, true),
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://fresh.rpc", winner.URL)
}

func TestPickerRoundRobinCycles(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://rpc1", 0, 100, true),
		checked("http://rpc2", 0, 100, false),
		checked("http://rpc3", 0, 100, true),
	}

	picker := rpc.NewPicker(rpc.AlgorithmRoundRobin)
	var urls []string
	for range 3 {
		e, err := picker.Pick(endpoints)
		require.NoError(t, err)
		urls = append(urls, e.URL)
	}
	assert.Equal(t, []string{"http://rpc1", "http://rpc3", "http://rpc1"}, urls)
}

func TestPickerFailover(t *testing.T) {
	endpoints := []rpc.Endpoint{
		checked("http://primary", 0, 100, false),
		checked("http://secondary", 0, 100, true),
		checked("http://tertiary", 0, 100, true),
	}

	winner, err := rpc.NewPicker(rpc.AlgorithmFailover).Pick(endpoints)
	require.NoError(t, err)
	assert.Equal(t, "http://secondary", winner.URL)
}

func TestPickerErrorsWhenAllUnhealthy(t *testing.T) {
	for _, algo := range []rpc.Algorithm{rpc.AlgorithmFastest, rpc.AlgorithmRoundRobin, rpc.AlgorithmFailover} {
		t.Run(string(algo), func(t *testing.T) {
			endpoints := []rpc.Endpoint{
				checked("http://rpc1", 100*time.Millisecond, 0, false),
				checked("http://rpc2", 200*time.Millisecond, 0, false),
			}
			_, err := rpc.NewPicker(algo).Pick(endpoints)
			assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)
		})
	}
}

func TestPickerEmptyEndpoints(t *testing.T) {
	_, err := rpc.NewPicker(rpc.AlgorithmFastest).Pick(nil)
	assert.ErrorIs(t, err, rpc.ErrNoHealthyRPC)
}

func TestPickerReusesCachedWinner(t *testing.T) {
	picker := rpc.NewPicker(rpc.AlgorithmFastest)

	first, err := picker.Pick([]rpc.Endpoint{
		unchecked("http://a.rpc", 30*time.Millisecond, 100),
		unchecked("http://b.rpc", 90*time.Millisecond, 100),
	})
	require.NoError(t, err)
	require.Equal(t, "http://a.rpc", first.URL)

	// b is now faster, but a is still cached.
	second, err := picker.Pick([]rpc.Endpoint{
		unchecked("http://a.rpc", 90*time.Millisecond, 100),
		unchecked("http://b.rpc", 10*time.Millisecond, 100),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://a.rpc", second.URL)
}

func TestPickerDropsCachedWinnerWhenDown(t *testing.T) {
	picker := rpc.NewPicker(rpc.AlgorithmFastest)

	first, err := picker.Pick([]rpc.Endpoint{
		unchecked("http://a.rpc", 30*time.Millisecond, 100),
		unchecked("http://b.rpc", 90*time.Millisecond, 100),
	})
	require.NoError(t, err)
	require.Equal(t, "http://a.rpc", first.URL)

	second, err := picker.Pick([]rpc.Endpoint{
		{URL: "http://a.rpc", Checked: true},
		{URL: "http://b.rpc", Latency: 90 * time.Millisecond, BlockNumber: 100, Healthy: true, Checked: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "http://b.rpc", second.URL)
}

func TestParseAlgorithm(t *testing.T) {
	assert.Equal(t, rpc.AlgorithmRoundRobin, rpc.ParseAlgorithm("round-robin"))
	assert.Equal(t, rpc.AlgorithmFailover, rpc.ParseAlgorithm("failover"))
	assert.Equal(t, rpc.AlgorithmFastest, rpc.ParseAlgorithm(""))
	assert.Equal(t, rpc.AlgorithmFastest, rpc.ParseAlgorithm("bogus"))
}
