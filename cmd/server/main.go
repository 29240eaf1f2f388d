package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/WangWilly/xChain/pkgs/commonpkg/helpers/syscfghelper"
	"github.com/WangWilly/xChain/pkgs/serverpkg/server"
	log "github.com/sirupsen/logrus"
)

const SHUTDOWN_TIMEOUT = 10 * time.Second

func main() {
	var confPath string
	var isDebug bool
	flag.StringVar(&confPath, "config", "", "path to config file (default ./conf.yaml when present)")
	flag.BoolVar(&isDebug, "debug", false, "display debug message")
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

	////////////////////////////////////////////////////////////////////////////

	eventService, err := helper.GetEventService()
	if err != nil {
		log.Fatalln("failed to create event service:", err)
	}

	srv := server.New(helper.GetConfig().Server.Port, eventService)

	////////////////////////////////////////////////////////////////////////////

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case sig := <-signalChan:
		log.WithField("signal", sig.String()).Info("Received shutdown signal, stopping...")
	case err := <-errChan:
		if err != nil {
			log.Errorln("server failed:", err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorln("failed to shut down server:", err)
	}
}
