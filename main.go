package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	analytics "maintenance-kpi/internal/analytics/application"
	apihttp "maintenance-kpi/internal/api/http"
	"maintenance-kpi/internal/audit"
	"maintenance-kpi/internal/auth"
	"maintenance-kpi/internal/config"
	"maintenance-kpi/internal/eventing"
	maintapp "maintenance-kpi/internal/maintenance/application"
	"maintenance-kpi/internal/maintenance/application/events"
	maintenance "maintenance-kpi/internal/maintenance/domain"
	maintmemory "maintenance-kpi/internal/maintenance/infrastructure/memory"
	maintrepo "maintenance-kpi/internal/maintenance/infrastructure/postgres"
	"maintenance-kpi/internal/maintenance/notify"
	masterdata "maintenance-kpi/internal/masterdata/domain"
	mdmemory "maintenance-kpi/internal/masterdata/infrastructure/memory"
	mdrepo "maintenance-kpi/internal/masterdata/infrastructure/postgres"
	"maintenance-kpi/internal/observability/metrics"
	procurement "maintenance-kpi/internal/procurement/domain"
	procmemory "maintenance-kpi/internal/procurement/infrastructure/memory"
	procrepo "maintenance-kpi/internal/procurement/infrastructure/postgres"
)

// stores groups the repositories behind the configured storage backend.
type stores struct {
	schedules     maintenance.ScheduleRepository
	events        maintenance.EventReader
	tx            maintenance.TxRunner
	parts         masterdata.PartReader
	supplierParts masterdata.SupplierPartReader
	equipment     masterdata.EquipmentReader
	orders        procurement.OrderReader
	audit         audit.Logger
}

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	var db *sql.DB
	var st stores
	switch cfg.Storage {
	case config.StorageMemory:
		st = memoryStores()
		logger.Printf("storage: in-memory")
	default:
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
		st, err = postgresStores(db, cfg.Engine.LockWaitTimeout)
		if err != nil {
			logger.Fatalf("postgres stores error: %v", err)
		}
	}

	metrics.Init(db, logger)

	classifier, err := cfg.Engine.Classifier()
	if err != nil {
		logger.Fatalf("classifier error: %v", err)
	}
	fallback, err := cfg.Engine.Fallback()
	if err != nil {
		logger.Fatalf("equipment fallback error: %v", err)
	}

	bus := eventing.NewInMemoryBus()
	processed := eventing.NewMemoryProcessedStore()

	reports, err := analytics.NewReportService(analytics.Readers{
		Events:        st.events,
		Parts:         st.parts,
		SupplierParts: st.supplierParts,
		Orders:        st.orders,
		Equipment:     st.equipment,
	},
		analytics.WithClassifier(classifier),
		analytics.WithMaxPeriods(cfg.Engine.MaxPeriods),
		analytics.WithQueryTimeout(cfg.Engine.QueryTimeout),
		analytics.WithLogger(logger),
	)
	if err != nil {
		logger.Fatalf("report service error: %v", err)
	}

	statuses, err := maintapp.NewStatusService(st.schedules,
		maintapp.WithDueSoonDays(cfg.Engine.DueSoonDays),
		maintapp.WithStatusTimeout(cfg.Engine.QueryTimeout),
	)
	if err != nil {
		logger.Fatalf("status service error: %v", err)
	}
	completion, err := maintapp.NewCompletionService(st.tx, logger,
		maintapp.WithEquipmentFallback(fallback),
		maintapp.WithPublisher(bus),
		maintapp.WithCompletionTimeout(cfg.Engine.QueryTimeout),
	)
	if err != nil {
		logger.Fatalf("completion service error: %v", err)
	}

	var sweeperOpts []maintapp.SweeperOption
	if cfg.Engine.Notify.WebhookURL != "" {
		overdueNotifier, err := buildOverdueNotifier(cfg.Engine.Notify)
		if err != nil {
			logger.Fatalf("overdue notifier error: %v", err)
		}
		sweeperOpts = append(sweeperOpts, maintapp.WithOverdueNotifier(overdueNotifier))
	}
	sweeper, err := maintapp.NewSweeper(statuses, cfg.Engine.SweepInterval, logger, sweeperOpts...)
	if err != nil {
		logger.Fatalf("sweeper error: %v", err)
	}
	maintapp.WireMaintenanceEventBus(bus, sweeper, processed)
	eventing.Subscribe(bus, eventing.TypeOf[events.ScheduleCompleted](), "maintenance.log", func(ctx context.Context, event any) error {
		evt, ok := event.(events.ScheduleCompleted)
		if !ok {
			return eventing.ErrInvalidEventType
		}
		env, _ := eventing.EnvelopeFromContext(ctx)
		logger.Printf("schedule completed event: schedule=%s by=%s next_due=%s event=%s correlation=%s", evt.ScheduleID, evt.CompletedBy, evt.NextDue.Format(time.RFC3339), env.EventID, env.CorrelationID)
		return nil
	}, processed)

	kpiHandler, err := apihttp.NewKPIHandler(reports, st.audit, logger,
		apihttp.WithDefaultPeriods(cfg.Engine.DefaultPeriods),
		apihttp.WithExportTitle(cfg.Engine.ExportTitle),
	)
	if err != nil {
		logger.Fatalf("kpi handler error: %v", err)
	}
	scheduleHandler, err := apihttp.NewScheduleHandler(statuses, completion, st.audit, logger)
	if err != nil {
		logger.Fatalf("schedule handler error: %v", err)
	}

	router := apihttp.NewRouter(kpiHandler, scheduleHandler)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sweeper.Start(ctx)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           loggingMiddleware(authMiddleware.Wrap(router), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("http shutdown error: %v", err)
		}
	}()

	logger.Printf("http listening on %s", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("http server error: %v", err)
	}
}

func postgresStores(db *sql.DB, lockWait time.Duration) (stores, error) {
	tx, err := maintrepo.NewTxRunner(db, maintrepo.WithLockWaitTimeout(lockWait))
	if err != nil {
		return stores{}, err
	}
	return stores{
		schedules:     maintrepo.NewScheduleRepository(db),
		events:        maintrepo.NewEventRepository(db),
		tx:            tx,
		parts:         mdrepo.NewPartRepository(db),
		supplierParts: mdrepo.NewSupplierPartRepository(db),
		equipment:     mdrepo.NewEquipmentRepository(db),
		orders:        procrepo.NewOrderRepository(db),
		audit:         audit.NewRepository(db),
	}, nil
}

func buildOverdueNotifier(cfg config.Notify) (*notify.OverdueNotifier, error) {
	channel, err := notify.NewWebhookChannel(cfg.WebhookURL)
	if err != nil {
		return nil, err
	}
	tpl, err := notify.NewTemplate(cfg.Template)
	if err != nil {
		return nil, err
	}
	return notify.NewOverdueNotifier(channel, tpl,
		notify.WithCooldown(cfg.Cooldown),
		notify.WithRequestTimeout(cfg.Timeout),
	)
}

func memoryStores() stores {
	maint := maintmemory.NewStore()
	catalog := mdmemory.NewCatalog()
	return stores{
		schedules:     maint,
		events:        maint,
		tx:            maint,
		parts:         catalog,
		supplierParts: catalog,
		equipment:     catalog,
		orders:        procmemory.NewOrderRepository(),
		audit:         audit.NewMemoryLog(),
	}
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
