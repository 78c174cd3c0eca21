package handler

import (
	"net/http"
	"sync"

	"dinebook/config"
	"dinebook/di"
	"dinebook/shared/logger"
	"dinebook/shared/timezone"
)

var (
	once    sync.Once
	handler http.Handler
)

// Handler is the serverless entry point. The dependency graph is built on
// the first request and reused by warm invocations.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		logger.InitLogger()

		cfg := config.Get()

		logger.Configure(cfg)
		timezone.Init(cfg.App.Timezone)

		handler = di.InitializeService().Handler()
	})

	r.RequestURI = r.URL.String()

	handler.ServeHTTP(w, r)
}
