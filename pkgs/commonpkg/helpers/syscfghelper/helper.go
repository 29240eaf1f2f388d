package syscfghelper

import (
	"fmt"
	"os"

	"github.com/WangWilly/xChain/pkgs/commonpkg/config"
	"github.com/WangWilly/xChain/pkgs/commonpkg/logging"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
)

type CliParams struct {
	IsDebug    bool
	ConfigPath string // empty uses defaults plus environment
}

type helper struct {
	cliParams CliParams

	logFile   *os.File
	sysConfig config.Config

	db     *sqlx.DB
	closer []func() error
}

func New(cliParams CliParams) (*helper, error) {
	h := &helper{
		cliParams: cliParams,
	}

	if err := h.init(); err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}

func (h *helper) init() error {
	conf, err := config.Load(h.cliParams.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	h.sysConfig = conf

	////////////////////////////////////////////////////////////////////////////

	logFile, err := logging.OpenLogFile(conf.LogPath)
	if err != nil {
		return err
	}
	if logFile != nil {
		h.logFile = logFile
		logging.InitLogger(h.cliParams.IsDebug, logFile)
	} else {
		logging.InitLogger(h.cliParams.IsDebug, nil)
	}

	log.WithFields(log.Fields{
		"caller":   "syscfghelper.init",
		"provider": conf.Embedding.Provider,
		"dim":      conf.Embedding.VectorDim,
		"database": conf.Database.Type,
	}).Debug("Configuration loaded")
	return nil
}

////////////////////////////////////////////////////////////////////////////////

func (h *helper) GetConfig() config.Config {
	return h.sysConfig
}

////////////////////////////////////////////////////////////////////////////////

func (h *helper) Close() {
	for i := len(h.closer) - 1; i >= 0; i-- {
		if err := h.closer[i](); err != nil {
			log.WithError(err).Warn("failed to close resource")
		}
	}
	h.closer = nil

	if h.db != nil {
		h.db.Close()
		h.db = nil
	}
	if h.logFile != nil {
		h.logFile.Close()
		h.logFile = nil
	}
}
