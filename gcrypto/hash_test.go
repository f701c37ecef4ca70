package gcrypto

import (
	"encoding/json"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestHashJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Hash
		out  string
	}{
		{
			"converts hex values",
			[]byte{0xde, 0xad, 0xbe, 0xef},
			"\"deadbeef\"",
		},
		{
			"handles empty hashes",
			[]byte{},
			"null",
		},
		{
			"handles nil hashes",
			nil,
			"null",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := json.Marshal(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.out, string(j))
			var h Hash
			require.NoError(t, json.Unmarshal(j, &h))
			require.True(t, tt.in.Equal(h))
		})
	}
}

func TestHashScan(t *testing.T) {
	t.Parallel()

	var h Hash
	require.NoError(t, h.Scan("beef"))
	require.Equal(t, Hash{0xbe, 0xef}, h)
	require.NoError(t, h.Scan([]byte("00ff")))
	require.Equal(t, Hash{0x00, 0xff}, h)
	require.NoError(t, h.Scan(nil))
	require.Nil(t, h)
	require.Error(t, h.Scan(12))
	require.Error(t, h.Scan("zz"))

	v, err := Hash{0xab}.Value()
	require.NoError(t, err)
	require.Equal(t, "ab", v)
}

func TestDigests(t *testing.T) {
	t.Parallel()

	require.Len(t, Blake160([]byte("x")), 20)
	require.Len(t, Blake256([]byte("x")), HashSize)
	require.Len(t, SHA3256([]byte("x")), HashSize)
	require.Equal(t, Blake256([]byte("ab")), Blake256([]byte("a"), []byte("b")))
	require.Equal(
		t,
		"a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a",
		SHA3256(nil).String(),
	)
	require.True(t, Hash(make([]byte, 4)).IsZero())
}
