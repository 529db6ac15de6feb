// Package handler exposes the HTTP surface as a serverless function. Background
// loops do not run here; deploy cmd/app alongside for them.
package handler

import (
	"meetflow/config"
	"meetflow/di"
	"meetflow/shared/logger"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	once    sync.Once
	handler http.Handler
)

func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger()

		logger.SetLogLevel(cfg)

		app, _, err := di.InitializeApp()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize application")
		}

		handler = app.HTTP.Handler()
	})

	r.RequestURI = r.URL.String()

	handler.ServeHTTP(w, r)
}
