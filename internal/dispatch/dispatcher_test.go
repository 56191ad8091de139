package dispatch

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taggablefs/tagfs/internal/model"
	"github.com/taggablefs/tagfs/internal/store"
	"github.com/taggablefs/tagfs/internal/wire"
)

type testRig struct {
	inboundClient *wire.Endpoint
	bridgeServer  *wire.Endpoint
	ctlServer     *wire.Endpoint
	dispatcher    *Dispatcher
	done          chan error
}

func newTestRig(t *testing.T, tagView bool) *testRig {
	t.Helper()
	dir := t.TempDir()

	inboundPath := filepath.Join(dir, "mgr.sock")
	bridgePath := filepath.Join(dir, "bridge.sock")
	ctlPath := filepath.Join(dir, "ctl.sock")

	inboundServer, err := wire.Listen(inboundPath)
	require.NoError(t, err)
	inboundClient, err := wire.Dial(inboundPath)
	require.NoError(t, err)

	// bridge and ctl mailboxes are bound by their owning processes before
	// the daemon ever dials a reply to them.
	bridgeServer, err := wire.Listen(bridgePath)
	require.NoError(t, err)
	ctlServer, err := wire.Listen(ctlPath)
	require.NoError(t, err)

	dbPath := filepath.Join(dir, "metadata", "fs.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	m := model.New(st, dir)
	d := New(m, inboundServer, bridgePath, ctlPath, tagView)

	rig := &testRig{
		inboundClient: inboundClient,
		bridgeServer:  bridgeServer,
		ctlServer:     ctlServer,
		dispatcher:    d,
		done:          make(chan error, 1),
	}

	go func() { rig.done <- d.Run() }()

	t.Cleanup(func() {
		inboundClient.Close()
		bridgeServer.Close()
		ctlServer.Close()
	})

	return rig
}

func TestDispatcherOperatorTestEcho(t *testing.T) {
	rig := newTestRig(t, false)

	require.NoError(t, rig.inboundClient.Send([]byte("QH_TEST"), true))
	frame, err := rig.ctlServer.Receive()
	require.NoError(t, err)
	assert.Contains(t, string(frame.Payload), "TM_ACK")
}

func TestDispatcherCreateFolderAndMkdir(t *testing.T) {
	rig := newTestRig(t, false)

	require.NoError(t, rig.inboundClient.Send([]byte("FD_MKDIR /docs"), true))
	frame, err := rig.bridgeServer.Receive()
	require.NoError(t, err)
	assert.Equal(t, ReplyAck, string(frame.Payload))

	require.NoError(t, rig.inboundClient.Send([]byte("FD_MKDIR /docs"), true))
	frame, err = rig.bridgeServer.Receive()
	require.NoError(t, err)
	assert.NotEqual(t, ReplyAck, string(frame.Payload))
}

func TestDispatcherShutdownOnExit(t *testing.T) {
	rig := newTestRig(t, false)

	require.NoError(t, rig.inboundClient.Send([]byte("QH_EXIT"), true))
	frame, err := rig.ctlServer.Receive()
	require.NoError(t, err)
	assert.Equal(t, ReplyAck, string(frame.Payload))

	err = <-rig.done
	assert.NoError(t, err)
}

func TestDispatcherCreateTagAndStats(t *testing.T) {
	rig := newTestRig(t, false)

	require.NoError(t, rig.inboundClient.Send([]byte("QH_CREATE_TAG red"), true))
	frame, err := rig.ctlServer.Receive()
	require.NoError(t, err)
	assert.Equal(t, ReplyAck, string(frame.Payload))

	require.NoError(t, rig.inboundClient.Send([]byte("QH_STATS"), true))
	frame, err = rig.ctlServer.Receive()
	require.NoError(t, err)
	assert.Contains(t, string(frame.Payload), "tags=1")
}
