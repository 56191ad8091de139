package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taggablefs/tagfs/internal/config"
	"github.com/taggablefs/tagfs/internal/dispatch"
	"github.com/taggablefs/tagfs/internal/model"
	"github.com/taggablefs/tagfs/internal/store"
	"github.com/taggablefs/tagfs/internal/wire"
)

// startTestDaemon brings up a real dispatcher bound at the same endpoint
// paths a tagfsctl invocation against rootDir would dial, so the cli
// package can be exercised end to end without a live tagfsd process.
func startTestDaemon(t *testing.T, rootDir string) {
	t.Helper()

	cfg := config.NewDefaultConfig()
	cfg.RootDir = rootDir

	st, err := store.Open(cfg.DBPath())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	m := model.New(st, rootDir)

	inbound, err := wire.Listen(cfg.InboundEndpoint())
	require.NoError(t, err)
	t.Cleanup(func() { inbound.Close() })

	d := dispatch.New(m, inbound, cfg.BridgeEndpoint(), cfg.CtlEndpoint(), false)

	done := make(chan error, 1)
	go func() { done <- d.Run() }()
	t.Cleanup(func() {
		sender, err := wire.Dial(cfg.InboundEndpoint())
		if err == nil {
			sender.Send([]byte(dispatch.QHExit), true)
			sender.Close()
			<-done
		}
	})
}

func run(t *testing.T, rootDir string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append([]string{"--root", rootDir}, args...))
	err := root.Execute()
	return buf.String(), err
}

func TestCLIPing(t *testing.T) {
	dir := t.TempDir()
	startTestDaemon(t, dir)

	out, err := run(t, dir, "ping")
	require.NoError(t, err)
	require.Contains(t, out, "alive")
}

func TestCLICreateTagAndStats(t *testing.T) {
	dir := t.TempDir()
	startTestDaemon(t, dir)

	_, err := run(t, dir, "create-tag", "/red")
	require.NoError(t, err)

	out, err := run(t, dir, "stats")
	require.NoError(t, err)
	require.Contains(t, out, "tags=1")
}

func TestCLITagMissingFileFails(t *testing.T) {
	dir := t.TempDir()
	startTestDaemon(t, dir)

	_, err := run(t, dir, "create-tag", "/red")
	require.NoError(t, err)

	// Tagging a nonexistent file is expected to fail with an errno reply,
	// exercising the error path rather than requiring a real blob.
	_, err = run(t, dir, "tag", "/missing.txt", "/red")
	require.Error(t, err)
}

func TestCLINestRejectsCycle(t *testing.T) {
	dir := t.TempDir()
	startTestDaemon(t, dir)

	_, err := run(t, dir, "create-tag", "/a")
	require.NoError(t, err)
	_, err = run(t, dir, "create-tag", "/b")
	require.NoError(t, err)

	_, err = run(t, dir, "nest", "/b", "/a")
	require.NoError(t, err)

	_, err = run(t, dir, "nest", "/a", "/b")
	require.Error(t, err)
	require.Contains(t, err.Error(), "cycle")
}
