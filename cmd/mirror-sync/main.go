package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/WangWilly/xChain/pkgs/clipkg/workers"
	"github.com/WangWilly/xChain/pkgs/commonpkg/helpers/syscfghelper"
	"github.com/WangWilly/xChain/pkgs/commonpkg/services"
	log "github.com/sirupsen/logrus"
)

func main() {
	var confPath string
	var isDebug bool
	var once bool
	var interval time.Duration
	var batchSize int

	flag.StringVar(&confPath, "config", "", "path to config file (default ./conf.yaml when present)")
	flag.BoolVar(&isDebug, "debug", false, "display debug message")
	flag.BoolVar(&once, "once", false, "mirror pending events once and exit")
	flag.DurationVar(&interval, "interval", time.Minute, "time between mirror runs")
	flag.IntVar(&batchSize, "batch-size", services.DEFAULT_MIRROR_BATCH_SIZE, "events per chroma request")
	flag.Parse()

	resolved, err := syscfghelper.ResolveConfigPath(confPath)
	if err != nil {
		log.Fatalln("failed to resolve config path:", err)
	}

	helper, err := syscfghelper.New(syscfghelper.CliParams{
		IsDebug:    isDebug,
		ConfigPath: resolved,
	})
	if err != nil {
		log.Fatalln("failed to initialize:", err)
	}
	defer helper.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mirrorService, err := helper.GetMirrorService(ctx)
	if err != nil {
		log.Fatalln("failed to create mirror service:", err)
	}

	////////////////////////////////////////////////////////////////////////////

	if once {
		workers.RunMirrorOnce(ctx, mirrorService, batchSize)
		return
	}

	scheduler, err := workers.NewMirrorScheduler(ctx, mirrorService, interval, batchSize)
	if err != nil {
		log.Fatalln("failed to create scheduler:", err)
	}
	scheduler.Start()
	log.WithField("interval", interval.String()).Info("Mirror sync started")

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	<-signalChan
	log.Println("Received shutdown signal, stopping...")

	cancel()
	if err := scheduler.Stop(); err != nil {
		log.Errorln("failed to stop scheduler:", err)
	}
}
