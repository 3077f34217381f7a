package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_ResolveFallbackChain(t *testing.T) {
	r := NewRegistry()

	custom := castHandler{to: "int"}
	r.Register("widgetCount", "INTEGER", custom)

	require.Equal(t, custom, r.Resolve("widgetCount", "INTEGER"))
	// No exact match -> falls back to generic, not the INTEGER-specific one.
	require.IsType(t, genericHandler{}, r.Resolve("widgetCount", "VARCHAR"))
	// Registered by type only.
	require.IsType(t, castHandler{}, r.Resolve("int", "ANYTHING"))
}

func TestDecimalHandler_RoundTrip(t *testing.T) {
	h := decimalHandler{}
	driverVal, err := h.ToDriver("19.99")
	require.NoError(t, err)
	require.Equal(t, "19.99", driverVal)

	hostVal, err := h.FromDriver("19.99")
	require.NoError(t, err)
	require.Equal(t, "19.99", hostVal.(interface{ String() string }).String())
}
