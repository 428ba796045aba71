package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomtime.org/internal/auth"
	"roomtime.org/internal/config"
	"roomtime.org/internal/httpapi"
	"roomtime.org/internal/obs"
	"roomtime.org/internal/scheduling"
	"roomtime.org/internal/store/jsonfile"
)

var version = "0.3.0"

func main() {
	obs.Init()
	log := obs.Logger()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load configuration")
	}

	db, err := jsonfile.Open(cfg.DatabasePath)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}

	codec, err := auth.NewTokenCodec(cfg.AuthSecret,
		auth.WithIssuer("roomtime"),
		auth.WithTTL(cfg.TokenTTL),
	)
	if err != nil {
		log.WithError(err).Fatal("build token codec")
	}

	authn := auth.NewAuthenticator(db, codec, log)
	guard := auth.NewGuard(db, codec)
	sched, err := scheduling.NewService(db, log)
	if err != nil {
		log.WithError(err).Fatal("build scheduling service")
	}

	api := httpapi.New(db, authn, guard, sched, log, version)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.Handler(api),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.WithField("addr", srv.Addr).Infof("starting roomtime-api %s", version)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Info("stopped")
}
