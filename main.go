package main

import (
	"flag"
	"os"
	"time"

	"thermo-inspect/internal/api"
	"thermo-inspect/internal/app"
	"thermo-inspect/internal/config"
	"thermo-inspect/internal/logging"
	"thermo-inspect/internal/version"
	"thermo-inspect/ui/mainwindow"
	"thermo-inspect/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("loading config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logging.New(cfg.Logging.Level, cfg.Logging.JSON)
	log.Info("starting", "version", version.Version, "backend", cfg.Backend.BaseURL)

	token, err := cfg.Token()
	if err != nil {
		log.Error("resolving auth token failed", "error", err)
		os.Exit(1)
	}
	session := api.Session{Token: token, User: cfg.Auth.User}
	if !session.Valid() {
		log.Error("no auth token configured; set THERMO_TOKEN or auth.tokenFile")
		os.Exit(1)
	}

	client := api.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, session)
	state := app.NewState()
	userPrefs := prefs.Load()

	fyneApp := fyneapp.New()
	fyneApp.Settings().SetTheme(&app.InspectTheme{})

	win := mainwindow.New(fyneApp, state, client, log, userPrefs)

	// Watch the binary during development and offer a restart when a
	// newer build lands.
	if reloader := app.NewHotReloader(2 * time.Second); reloader != nil {
		reloader.OnNewBinary(func() {
			win.PromptRestart(func() {
				if err := reloader.Restart(); err != nil {
					log.Error("restart failed", "error", err)
				}
			}, func() {
				reloader.ResetBaseline()
				reloader.Start()
			})
		})
		reloader.Start()
		defer reloader.Stop()
	}

	win.ShowAndRun()
}
