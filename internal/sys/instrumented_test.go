// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package sys

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentedCounters(t *testing.T) {
	sim := NewSimGateway()
	fd := sim.CreateMap(4, 4, 16)
	gw := NewInstrumented(sim)

	out := make([]byte, 4)

	// Miss, insert, hit.
	_, err := gw.LookupElem(fd, simKey(1), out, 0)
	require.Error(t, err)
	_, err = gw.UpdateElem(fd, simKey(1), simKey(100), 0)
	require.NoError(t, err)
	_, err = gw.LookupElem(fd, simKey(1), out, 0)
	require.NoError(t, err)

	// Hard failure on a bad fd.
	_, err = gw.DeleteElem(99, simKey(1))
	require.Error(t, err)

	// Traversal: one step, then end of map.
	_, err = gw.GetNextKey(fd, nil, out)
	require.NoError(t, err)
	_, err = gw.GetNextKey(fd, out, out)
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(gw.calls.WithLabelValues("lookup")))
	assert.Equal(t, 1.0, testutil.ToFloat64(gw.calls.WithLabelValues("update")))
	assert.Equal(t, 1.0, testutil.ToFloat64(gw.calls.WithLabelValues("delete")))
	assert.Equal(t, 2.0, testutil.ToFloat64(gw.calls.WithLabelValues("get_next_key")))

	// The lookup miss and the end-of-map step count as not-found, not as
	// errors.
	assert.Equal(t, 1.0, testutil.ToFloat64(gw.notFound.WithLabelValues("lookup")))
	assert.Equal(t, 1.0, testutil.ToFloat64(gw.notFound.WithLabelValues("get_next_key")))
	assert.Equal(t, 0.0, testutil.ToFloat64(gw.errors.WithLabelValues("lookup")))
	assert.Equal(t, 1.0, testutil.ToFloat64(gw.errors.WithLabelValues("delete")))
}

func TestInstrumentedRegister(t *testing.T) {
	gw := NewInstrumented(NewSimGateway())

	reg := prometheus.NewRegistry()
	require.NoError(t, gw.Register(reg))

	// Registering the same collectors twice fails.
	require.Error(t, gw.Register(reg))
}

func TestInstrumentedPassesResultsThrough(t *testing.T) {
	sim := NewSimGateway()
	fd := sim.CreateMap(4, 4, 16)
	gw := NewInstrumented(sim)

	_, err := gw.UpdateElem(fd, simKey(7), simKey(700), 0)
	require.NoError(t, err)

	out := make([]byte, 4)
	code, err := gw.LookupElem(fd, simKey(7), out, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, simKey(700), out)

	code, err = gw.LookupElem(fd, simKey(8), out, 0)
	assert.Equal(t, -1, code)
	assert.True(t, IsNotExist(err))
}
