package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kd9lsv/packetmap/internal/model"
)

// routesEv builds a ROUTES observation for tests.
func routesEv(base string, ssid int, origin string, at time.Time) model.RouteEvidence {
	return model.RouteEvidence{
		Base:       base,
		SSID:       ssid,
		Quality:    192,
		Source:     model.SourceRoutes,
		Origin:     model.MustNewCallsign(origin),
		ObservedAt: at,
	}
}

// TestResolveConsensusBeatsMheard reproduces the canonical precedence
// case: ROUTES evidence of X-15 from three of five crawled nodes beats a
// single MHEARD observation of X-8.
func TestResolveConsensusBeatsMheard(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	r := New()

	r.Observe(routesEv("X0ABC", 15, "KE4OTZ-3", now))
	r.Observe(routesEv("X0ABC", 15, "KI4MCW-7", now.Add(time.Minute)))
	r.Observe(routesEv("X0ABC", 15, "N4XYZ-1", now.Add(2*time.Minute)))
	r.Observe(model.RouteEvidence{
		Base: "X0ABC", SSID: 8, Source: model.SourceMheard,
		Origin: model.MustNewCallsign("AB4KN-2"), ObservedAt: now.Add(time.Hour),
	})

	res, ok := r.Resolve("X0ABC")
	require.True(t, ok)
	assert.Equal(t, "X0ABC-15", res.Call.String())
	assert.Equal(t, model.SourceRoutes, res.Source)
	assert.Equal(t, ConfidenceHigh, res.Confidence)
}

// TestResolveForcedOverride verifies that an operator override outranks
// every evidence class.
func TestResolveForcedOverride(t *testing.T) {
	t.Parallel()

	now := time.Now()
	r := New(WithForced(map[string]int{"ke4otz": 5}))
	r.Observe(routesEv("KE4OTZ", 3, "KI4MCW-7", now))
	r.Observe(routesEv("KE4OTZ", 3, "N4XYZ-1", now))

	res, ok := r.Resolve("KE4OTZ")
	require.True(t, ok)
	assert.Equal(t, "KE4OTZ-5", res.Call.String())
	assert.Equal(t, model.SourceUserForced, res.Source)
}

// TestResolveTieBreak verifies both tie-break policies on an even
// consensus split.
func TestResolveTieBreak(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	observe := func(r *Resolver) {
		r.Observe(routesEv("W1AW", 4, "KE4OTZ-3", now))
		r.Observe(routesEv("W1AW", 7, "KI4MCW-7", now.Add(time.Hour)))
		r.Observe(routesEv("W1AW", 4, "N4XYZ-1", now.Add(2*time.Hour)))
		r.Observe(routesEv("W1AW", 7, "AB4KN-2", now.Add(3*time.Hour)))
	}

	t.Run("most recent observation wins by default", func(t *testing.T) {
		t.Parallel()
		r := New()
		observe(r)
		res, ok := r.Resolve("W1AW")
		require.True(t, ok)
		assert.Equal(t, 7, res.Call.SSID(), "SSID 7 was observed last")
	})

	t.Run("lowest SSID policy", func(t *testing.T) {
		t.Parallel()
		r := New(WithTieBreak(TieBreakLowestSSID))
		observe(r)
		res, ok := r.Resolve("W1AW")
		require.True(t, ok)
		assert.Equal(t, 4, res.Call.SSID())
	})

	t.Run("deterministic across repeated runs", func(t *testing.T) {
		t.Parallel()
		var first int
		for i := 0; i < 20; i++ {
			r := New()
			observe(r)
			res, ok := r.Resolve("W1AW")
			require.True(t, ok)
			if i == 0 {
				first = res.Call.SSID()
			}
			assert.Equal(t, first, res.Call.SSID())
		}
	})
}

// TestResolveAliasFallback verifies stage 4: with no ROUTES evidence, an
// advertised alias with a valid SSID is used, flagged low confidence.
func TestResolveAliasFallback(t *testing.T) {
	t.Parallel()

	r := New()
	r.Observe(model.RouteEvidence{
		Base: "KI4MCW", SSID: 7, Source: model.SourceNodesAlias,
		Origin: model.MustNewCallsign("KE4OTZ-3"), ObservedAt: time.Now(),
	})

	res, ok := r.Resolve("KI4MCW")
	require.True(t, ok)
	assert.Equal(t, "KI4MCW-7", res.Call.String())
	assert.Equal(t, model.SourceNodesAlias, res.Source)
	assert.Equal(t, ConfidenceLow, res.Confidence)
}

// TestResolveMheardLastResort verifies stage 5 and its low-confidence flag.
func TestResolveMheardLastResort(t *testing.T) {
	t.Parallel()

	r := New()
	r.Observe(model.RouteEvidence{
		Base: "KD9LSV", SSID: 10, Source: model.SourceMheard,
		Origin: model.MustNewCallsign("KE4OTZ-3"), ObservedAt: time.Now(),
	})

	res, ok := r.Resolve("KD9LSV")
	require.True(t, ok)
	assert.Equal(t, "KD9LSV-10", res.Call.String())
	assert.Equal(t, model.SourceMheard, res.Source)
	assert.Equal(t, ConfidenceLow, res.Confidence)
}

// TestResolveNoEvidence verifies that an unknown base resolves to nothing.
func TestResolveNoEvidence(t *testing.T) {
	t.Parallel()

	r := New()
	_, ok := r.Resolve("NOCALL")
	assert.False(t, ok)
}

// TestResolveNeverInventsSSID guards the invariant that the resolver does
// not infer an SSID from numeric convention: NODES evidence pointing at a
// service SSID is reported as-is with low confidence, never "corrected".
func TestResolveNeverInventsSSID(t *testing.T) {
	t.Parallel()

	r := New()
	// Only a mail-service alias is known. Many operators put the node
	// on SSID-1 below the BBS, but the resolver must not assume that.
	r.Observe(model.RouteEvidence{
		Base: "AB4KN", SSID: 2, Source: model.SourceNodesAlias,
		Origin: model.MustNewCallsign("AB4KN-2"), ObservedAt: time.Now(),
	})

	res, ok := r.Resolve("AB4KN")
	require.True(t, ok)
	assert.Equal(t, 2, res.Call.SSID(), "resolver must report the observed SSID, not a convention")
	assert.Equal(t, ConfidenceLow, res.Confidence)
}
