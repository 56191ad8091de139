package wire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	buf, err := Encode([]byte("FD_TEST"), true)
	require.NoError(t, err)
	assert.Len(t, buf, FrameSize)

	frame := Decode(buf[:])
	assert.True(t, frame.Final)
	assert.Equal(t, "FD_TEST", string(frame.Payload))
}

func TestEncodeContinuationFlag(t *testing.T) {
	buf, err := Encode([]byte("partial"), false)
	require.NoError(t, err)

	frame := Decode(buf[:])
	assert.False(t, frame.Final)
	assert.Equal(t, "partial", string(frame.Payload))
}

func TestEncodePayloadTooLong(t *testing.T) {
	payload := []byte(strings.Repeat("x", FrameSize))
	_, err := Encode(payload, true)
	assert.ErrorIs(t, err, ErrPayloadTooLong)
}

func TestDecodeEmptyInput(t *testing.T) {
	frame := Decode(nil)
	assert.True(t, frame.Final)
	assert.Empty(t, frame.Payload)
}

func TestEndpointSendReceive(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/test.sock"

	server, err := Listen(path)
	require.NoError(t, err)
	defer server.Close()

	client, err := Dial(path)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Send([]byte("QH_TEST"), true))

	frame, err := server.Receive()
	require.NoError(t, err)
	assert.True(t, frame.Final)
	assert.Equal(t, "QH_TEST", string(frame.Payload))
}

func TestEndpointReceiveAllMultiPart(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/multi.sock"

	server, err := Listen(path)
	require.NoError(t, err)
	defer server.Close()

	client, err := Dial(path)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Send([]byte("part1"), false))
	require.NoError(t, client.Send([]byte("part2"), true))

	parts, err := server.ReceiveAll()
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, "part1", string(parts[0]))
	assert.Equal(t, "part2", string(parts[1]))
}

func TestDialUnavailableEndpoint(t *testing.T) {
	dir := t.TempDir()
	_, err := Dial(dir + "/does-not-exist.sock")
	assert.ErrorIs(t, err, ErrEndpointUnavailable)
}
