package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONMapRoundTrip(t *testing.T) {
	in := JSONMap{"street": "12 Main St", "city": "Springfield", "zip": "62704"}

	raw, err := in.Value()
	require.NoError(t, err)

	var out JSONMap
	require.NoError(t, out.Scan(raw))
	require.Equal(t, "12 Main St", out["street"])
	require.Equal(t, "Springfield", out["city"])
}

func TestJSONMapScanNil(t *testing.T) {
	var out JSONMap
	require.NoError(t, out.Scan(nil))
	require.NotNil(t, out)
	require.Empty(t, out)
}

func TestJSONMapValueNil(t *testing.T) {
	var m JSONMap
	raw, err := m.Value()
	require.NoError(t, err)
	require.Equal(t, []byte("{}"), raw)
}
