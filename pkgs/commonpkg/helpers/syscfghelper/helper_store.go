package syscfghelper

import (
	"fmt"

	"github.com/WangWilly/xChain/pkgs/commonpkg/database"
	"github.com/WangWilly/xChain/pkgs/commonpkg/repos/eventrepo"
	"github.com/WangWilly/xChain/pkgs/commonpkg/repos/liteeventrepo"
	"github.com/WangWilly/xChain/pkgs/commonpkg/services"
	"github.com/jmoiron/sqlx"
)

// EventStore is what both backends provide.
type EventStore interface {
	services.EventRepo
	services.MirrorRepo
}

// GetDB connects on first use and makes sure the event tables exist.
func (h *helper) GetDB() (*sqlx.DB, error) {
	if h.db != nil {
		return h.db, nil
	}

	db, err := database.ConnectWithConfig(h.sysConfig.Database)
	if err != nil {
		return nil, err
	}
	if db.DriverName() == database.DRIVER_SQLITE {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	}

	if err := database.CreateEventTables(db, h.sysConfig.Embedding.VectorDim); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create event tables: %w", err)
	}

	h.db = db
	return db, nil
}

// GetEventStore picks the repository matching the connected database.
func (h *helper) GetEventStore() (EventStore, error) {
	db, err := h.GetDB()
	if err != nil {
		return nil, err
	}
	return storeForDriver(db.DriverName())
}

func storeForDriver(driver string) (EventStore, error) {
	switch driver {
	case database.DRIVER_POSTGRES:
		return eventrepo.New(), nil
	case database.DRIVER_SQLITE:
		return liteeventrepo.New(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}
