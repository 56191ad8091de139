// Command tagfsd is the TaggableFS core daemon: it owns the Metadata
// Store and services requests from a kernel filesystem bridge and the
// tagfsctl operator CLI over Unix datagram sockets.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/taggablefs/tagfs/internal/config"
	"github.com/taggablefs/tagfs/internal/dispatch"
	"github.com/taggablefs/tagfs/internal/model"
	"github.com/taggablefs/tagfs/internal/store"
	"github.com/taggablefs/tagfs/internal/util"
	"github.com/taggablefs/tagfs/internal/wire"
)

func main() {
	var (
		mountPoint = flag.String("mount", "", "mount point the filesystem bridge will attach to")
		rootDir    = flag.String("root", "", "storage root holding blobs and metadata/")
		tagView    = flag.Bool("tag-view", false, "present the tag graph instead of the folder tree")
		enableLog  = flag.Bool("log", false, "set the EnableLogging setting (no log file is written; log lines go to the console only)")
		verbosity  = flag.Int("v", 0, "log verbosity (0=info .. 2=trace)")
		configFile = flag.String("config", "", "optional YAML/JSON config override file")
	)
	flag.Parse()

	if os.Geteuid() == 0 {
		fmt.Fprintln(os.Stderr, "tagfsd: refusing to run as root")
		os.Exit(1)
	}

	cfg := config.NewDefaultConfig()
	if *configFile != "" {
		override, err := config.LoadConfigOverrideFile(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tagfsd: %v\n", err)
			os.Exit(1)
		}
		cfg.Merge(override)
	}
	if *mountPoint != "" {
		cfg.MountPoint = *mountPoint
	}
	if *rootDir != "" {
		cfg.RootDir = *rootDir
	}
	if *tagView {
		cfg.TagView = true
	}
	if *enableLog {
		cfg.EnableLogging = true
	}
	if cfg.RootDir == "" {
		fmt.Fprintln(os.Stderr, "tagfsd: -root is required")
		os.Exit(1)
	}

	logLvls := []util.LogLevel{util.InfoLevel, util.DebugLevel, util.TraceLevel}
	logLvl := logLvls[min(*verbosity, len(logLvls)-1)]
	util.InitializeLogger(logLvl)
	log := util.GetLogger("tagfsd")

	st, err := store.Open(cfg.DBPath())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open metadata store")
	}

	m := model.New(st, cfg.RootDir)

	inbound, err := wire.Listen(cfg.InboundEndpoint())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to bind inbound endpoint")
	}

	// The bridge mailbox is bound by the kernel filesystem bridge process
	// and the operator mailbox by each tagfsctl invocation; the daemon
	// only needs their paths to dial a reply once one exists.
	d := dispatch.New(m, inbound, cfg.BridgeEndpoint(), cfg.CtlEndpoint(), cfg.TagView)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	runErr := make(chan error, 1)
	go func() { runErr <- d.Run() }()

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-runErr:
		if err != nil {
			log.Error().Err(err).Msg("dispatch loop exited with error")
		}
	}

	inbound.Close()

	if err := st.Flush(); err != nil {
		log.Fatal().Err(err).Msg("failed to flush metadata store to disk")
	}
	if err := st.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close metadata store")
	}
	log.Info().Msg("flushed metadata store, exiting")
}
