package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kartoffels/kartoffels"
	"github.com/kartoffels/kartoffels/internal/logging"
	"github.com/kartoffels/kartoffels/internal/storage"
)

func main() {
	var (
		width     = flag.Int("width", 64, "map width in tiles")
		height    = flag.Int("height", 64, "map height in tiles")
		seed      = flag.Int64("seed", 1, "world RNG seed")
		savePath  = flag.String("save", "", "save file path (empty disables persistence)")
		saveEvery = flag.Uint64("save-every", 0, "autosave every N ticks (0 disables autosaving)")
		verbose   = flag.Bool("v", false, "verbose logging")
		ticks     = flag.Int("ticks", 0, "run exactly N ticks then exit (0 runs until Ctrl+C)")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] firmware.elf [firmware.elf ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	params := kartoffels.DefaultWorldParams()
	params.Map = kartoffels.NewMap(int32(*width), int32(*height))
	params.Seed = *seed
	params.Logger = logger

	if *savePath != "" {
		params.Storage = storage.NewFileStorage(*savePath)
		params.SaveEveryNTicks = *saveEvery
	}
	if *ticks > 0 {
		params.Clock = kartoffels.NewManualClock()
	}

	handle, err := kartoffels.Spawn(params)
	if err != nil {
		logger.Errorf("failed to spawn world: %v", err)
		os.Exit(1)
	}

	for _, path := range flag.Args() {
		firmware, err := os.ReadFile(path)
		if err != nil {
			logger.Errorf("reading firmware %q: %v", path, err)
			continue
		}
		id, err := handle.CreateBot(kartoffels.CreateBotRequest{Firmware: firmware, Instant: true})
		if err != nil {
			logger.Errorf("creating bot from %q: %v", path, err)
			continue
		}
		logger.Infof("spawned bot %d from %s", id, path)
	}

	sub, err := handle.Subscribe()
	if err != nil {
		logger.Errorf("subscribing: %v", err)
		os.Exit(1)
	}
	go func() {
		for batch := range sub.Events.C() {
			for _, ev := range batch {
				logger.Debugf("tick %d: %s bot=%d", ev.Version, ev.Kind, ev.BotID)
			}
		}
	}()

	if *ticks > 0 {
		logger.Infof("running %d ticks then exiting", *ticks)
		if err := handle.Tick(*ticks); err != nil {
			logger.Errorf("tick: %v", err)
		}
		if err := handle.Shutdown(); err != nil {
			logger.Errorf("shutdown: %v", err)
		}
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Infof("received shutdown signal")
	if err := handle.Shutdown(); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

