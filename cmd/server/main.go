package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"time"

	httpadapter "outpost/internal/adapter/http"
	metricsinmem "outpost/internal/adapter/metrics/inmemory"
	"outpost/internal/adapter/notify"
	"outpost/internal/adapter/runtime"
	"outpost/internal/adapter/ws"
	"outpost/internal/app/observe"
	"outpost/internal/app/repair"
	"outpost/internal/app/snapshot"
	"outpost/internal/app/status"
	"outpost/internal/domain/entity"

	"github.com/cloudwego/hertz/pkg/app/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevelEnv("OUTPOST_LOG_LEVEL")}))
	slog.SetDefault(logger)

	templates, err := loadTemplates(stringEnv("OUTPOST_TEMPLATES", ""))
	if err != nil {
		log.Fatalf("load templates: %v", err)
	}
	store, err := buildRepos(context.Background())
	if err != nil {
		log.Fatalf("build repos: %v", err)
	}
	defer store.close()

	hub := ws.NewHub(ws.HubConfig{Logger: logger})
	bus := notify.NewBus(
		notify.Config{BufferSize: intEnv("OUTPOST_EVENT_BUFFER", 512), Logger: logger},
		notify.NamedSink{Name: "repo", Sink: notify.RepoSink(store.events)},
		notify.NamedSink{Name: "ws", Sink: hub},
	)
	recorder := metricsinmem.NewRecorder()

	reg := entity.NewRegistry()
	loop := runtime.NewLoop(runtime.NewScheduler(), runtime.Config{
		Step:   time.Duration(intEnv("OUTPOST_STEP_MS", 100)) * time.Millisecond,
		Speed:  floatEnv("OUTPOST_SPEED", 1),
		Logger: logger,
	})
	demo, err := buildDemoWorld(reg, demoConfig{
		Seed:      int64(intEnv("OUTPOST_SEED", 1)),
		Units:     intEnv("OUTPOST_UNITS", 3),
		Templates: templates,
		Scheduler: loop.Scheduler(),
		Notifier:  bus,
		Metrics:   recorder,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("build world: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("simulation loop failed", "error", err)
		}
	}()

	wsAddr := stringEnv("OUTPOST_WS_ADDR", ":8081")
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/ws/events", hub.Handle)
	wsServer := &nethttp.Server{Addr: wsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := wsServer.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			logger.Error("event stream server failed", "error", err)
		}
	}()

	h := httpadapter.Handler{
		ObserveUC: observe.UseCase{Registry: reg, Serializer: loop},
		StatusUC:  status.UseCase{Registry: reg, Serializer: loop},
		RepairUC:  repair.UseCase{Registry: reg, Serializer: loop},
		SnapshotUC: snapshot.UseCase{
			Registry:   reg,
			Serializer: loop,
			Snapshots:  store.snapshots,
			Events:     store.events,
			TxManager:  store.tx,
			Now:        time.Now,
		},
		KPI: httpadapter.KPIFunc(func() any {
			return map[string]any{
				"simulation": recorder.Snapshot(),
				"events":     bus.Stats(),
				"observers":  hub.Clients(),
				"steps":      loop.Steps(),
				"pending":    pendingTimers(loop),
			}
		}),
	}

	addr := stringEnv("OUTPOST_ADDR", ":8080")
	s := server.Default(server.WithHostPorts(addr))
	h.RegisterRoutes(s)

	logger.Info("outpost server listening",
		"addr", addr,
		"ws_addr", wsAddr,
		"persistence", store.backend,
		"units", len(demo.Units),
		"resources", len(demo.Resources),
		"foundation", demo.Foundation,
	)
	s.Spin()

	cancel()
	loop.Stop()
	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := bus.Close(shutdownCtx); err != nil {
		logger.Warn("event bus drain incomplete", "error", err)
	}
	hub.Close()
	_ = wsServer.Shutdown(shutdownCtx)
}

func pendingTimers(loop *runtime.Loop) int {
	n := 0
	_ = loop.Exec(context.Background(), func() { n = loop.Scheduler().Pending() })
	return n
}
