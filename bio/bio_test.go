package bio

import (
	"bytes"
	"errors"
	"github.com/stretchr/testify/require"
	"testing"
)

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("boom")
}

func TestUint64LE(t *testing.T) {
	require.Equal(t, []byte{0xe8, 0x03, 0, 0, 0, 0, 0, 0}, Uint64LE(1000))
}

func TestGuardWriterStopsAfterError(t *testing.T) {
	g := NewGuardWriter(failWriter{})
	WriteByte(g, 0x01)
	WriteRawBytes(g, Uint64LE(5))
	require.EqualError(t, g.Err, "boom")
	require.EqualValues(t, 0, g.N)
}

func TestGuardReaderRoundTrip(t *testing.T) {
	buf := new(bytes.Buffer)
	g := NewGuardWriter(buf)
	WriteByte(g, 0x07)
	WriteRawBytes(g, []byte{0xaa, 0xbb})
	require.NoError(t, g.Err)
	require.EqualValues(t, 3, g.N)

	r := NewGuardReader(bytes.NewReader(buf.Bytes()))
	b, err := ReadByte(r)
	require.NoError(t, err)
	require.EqualValues(t, 0x07, b)
	rest, err := ReadFixedBytes(r, 2)
	require.NoError(t, err)
	require.Equal(t, []byte{0xaa, 0xbb}, rest)

	_, err = ReadByte(r)
	require.Error(t, err)
	require.Error(t, r.Err)
}
