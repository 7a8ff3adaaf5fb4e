package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fleet-dispatch-engine/internal/adapter"
	"fleet-dispatch-engine/internal/adapters/advisor"
	"fleet-dispatch-engine/internal/adapters/routing"
	"fleet-dispatch-engine/internal/adapters/signals"
	"fleet-dispatch-engine/internal/api"
	"fleet-dispatch-engine/internal/config"
	"fleet-dispatch-engine/internal/engine"
	"fleet-dispatch-engine/internal/matcher"
	"fleet-dispatch-engine/internal/motion"
	"fleet-dispatch-engine/internal/observer"
	"fleet-dispatch-engine/internal/platform/logging"
	"fleet-dispatch-engine/internal/predictor"
	"fleet-dispatch-engine/internal/scheduler"
	"fleet-dispatch-engine/internal/store"
)

// main is the application composition root. It wires concrete adapters
// (the route cache, the chat-completion advisor, the stochastic signal
// generator) behind ports, starts the Dispatch Loop, and serves the REST
// boundary.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal(err)
	}

	appLog := logging.New("engine", cfg.Logging.Format, cfg.Logging.Level)

	routeCache, err := routing.New(cfg.Route, logging.New("routing", cfg.Logging.Format, cfg.Logging.Level))
	if err != nil {
		log.Fatal(err)
	}
	advisorClient := advisor.New(cfg.Advisor)
	signalSource := signals.NewGenerator(rand.NewSource(time.Now().UnixNano()))

	s := store.New(cfg.Events.RingSize, logging.New("store", cfg.Logging.Format, cfg.Logging.Level))
	motionEngine := motion.New(s, routeCache, cfg.Motion, logging.New("motion", cfg.Logging.Format, cfg.Logging.Level))
	predictorAgent := predictor.New(cfg.Predictor, cfg.Motion)
	observerAgent := observer.New(signalSource, cfg.Observer, logging.New("observer", cfg.Logging.Format, cfg.Logging.Level))
	matcherAgent := matcher.New(s, routeCache, advisorClient, cfg.Matcher, logging.New("matcher", cfg.Logging.Format, cfg.Logging.Level))
	adapterAgent := adapter.New(s, advisorClient, cfg.Adapter, cfg.Matcher, logging.New("adapter", cfg.Logging.Format, cfg.Logging.Level))

	dispatchLoop := scheduler.New(s, motionEngine, observerAgent, matcherAgent, adapterAgent, cfg.Tick, logging.New("scheduler", cfg.Logging.Format, cfg.Logging.Level))

	eng := engine.New(s, motionEngine, predictorAgent, observerAgent, matcherAgent, adapterAgent, cfg, rand.NewSource(time.Now().UnixNano()), appLog)

	ctx, cancel := context.WithCancel(context.Background())
	go dispatchLoop.Run(ctx)

	router := api.NewRouter(eng, logging.New("api", cfg.Logging.Format, cfg.Logging.Level))

	appLog.Infof("server listening addr=:%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	appLog.Infof("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}
