package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/WangWilly/xChain/pkgs/commonpkg/config"
	"github.com/WangWilly/xChain/pkgs/commonpkg/database"
	"github.com/WangWilly/xChain/pkgs/commonpkg/helpers/syscfghelper"
	log "github.com/sirupsen/logrus"
)

const (
	usageText = `Schema tool for the xChain database

Usage:
  migrate [flags] [command]

Available Commands:
  up       Create the event tables (idempotent)
  down     Drop the event tables
  reindex  Rebuild the vector index from the rows now stored (postgres)

Flags:
  -config path   config file (default ./conf.yaml when present)

The database and vector dimension come from the config file and the
XCHAIN_* environment variables, as for the server.

Examples:
  migrate up
  migrate reindex
  XCHAIN_DB_TYPE=sqlite XCHAIN_DB_PATH=./data/xchain.db migrate down
`
)

var (
	confPath = flag.String("config", "", "path to config file")
	help     = flag.Bool("help", false, "Show help message")
	h        = flag.Bool("h", false, "Show help message")
)

func main() {
	flag.Parse()

	if *help || *h {
		fmt.Print(usageText)
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Print(usageText)
		os.Exit(1)
	}

	resolved, err := syscfghelper.ResolveConfigPath(*confPath)
	if err != nil {
		log.Fatalln("failed to resolve config path:", err)
	}
	conf, err := config.Load(resolved)
	if err != nil {
		log.Fatalln("failed to load config:", err)
	}

	db, err := database.ConnectWithConfig(conf.Database)
	if err != nil {
		log.Fatalln("failed to connect to database:", err)
	}
	defer db.Close()

	switch args[0] {
	case "up":
		err = database.CreateEventTables(db, conf.Embedding.VectorDim)
	case "down":
		err = database.DropEventTables(db)
	case "reindex":
		var created bool
		created, err = database.RebuildVectorIndex(db, conf.Embedding.VectorDim)
		if err == nil && !created {
			log.Info("No vector index built: no rows yet, unsupported driver or dimension too wide")
		}
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		fmt.Print(usageText)
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", args[0], err)
	}
	log.WithFields(log.Fields{
		"command":  args[0],
		"database": conf.Database.Type,
	}).Info("Schema updated")
}
