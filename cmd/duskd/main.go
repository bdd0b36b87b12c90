package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"

	"syscall"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/wheelibin/duskd/internal/astro"
	"github.com/wheelibin/duskd/internal/config"
	"github.com/wheelibin/duskd/internal/devices"
	"github.com/wheelibin/duskd/internal/history"
	"github.com/wheelibin/duskd/internal/mqtt"
	"github.com/wheelibin/duskd/internal/scheduler"
	"github.com/wheelibin/duskd/internal/web"
)

func main() {

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           log.InfoLevel,
		ReportTimestamp: true,
	})
	logger.Info("duskd starting")

	// read the config file
	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatal("error loading config", "err", err)
	}

	// switch to rotated file logging when configured (also feeds the /log page)
	if cfg.LogFile != "" {
		logger = log.NewWithOptions(&lumberjack.Logger{
			Filename: cfg.LogFile,
			MaxAge:   3,
		}, log.Options{
			Level:      log.InfoLevel,
			TimeFormat: "2006/01/02 15:04:05",
		})
	}

	// connect to the device command channel
	broker, err := mqtt.NewBroker(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.BaseTopic)
	if err != nil {
		logger.Fatal("error connecting to mqtt broker", "broker", cfg.MQTT.Broker, "err", err)
	}
	defer broker.Close()

	db, err := sql.Open("sqlite3", cfg.HistoryDB)
	if err != nil {
		logger.Fatal("error opening history db", "path", cfg.HistoryDB, "err", err)
	}
	defer db.Close()
	repo, err := history.NewRepo(logger, db)
	if err != nil {
		logger.Fatal("error initialising history db", "err", err)
	}

	// create/wire up the core
	state := devices.NewState(logger, broker, cfg.Lights, cfg.Outlets, cfg.Brightness)
	dusk := astro.NewService(logger, cfg.City)
	sched := scheduler.NewScheduler(logger, dusk, state, cfg.OffHour, cfg.OffMinute)
	sched.SetRecorder(repo)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Web.Enabled {
		srv := web.New(logger, cfg.Web.Listen, state, sched, repo, cfg.LogFile)
		sched.SetNotifier(srv)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("web server error", "err", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Info("web interface enabled", "listen", cfg.Web.Listen)
	} else {
		logger.Info("web interface disabled")
	}

	// apply the state that should hold right now, then run the transition loop
	sched.Start()
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "err", err)
	}

	logger.Info("duskd closing")
}
