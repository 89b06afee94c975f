package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/mcclellann/depreg/pkg/config"
	"github.com/mcclellann/depreg/pkg/depreciation"
	"github.com/mcclellann/depreg/pkg/register"
	"github.com/mcclellann/depreg/pkg/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server holds the register instance.
type Server struct {
	register *register.Register
	storage  store.Storage // Keep a reference to the storage to close it
	logger   zerolog.Logger
}

func NewServer(s store.Storage, engine *depreciation.Engine, logger zerolog.Logger) *Server {
	return &Server{
		register: register.NewRegister(s, engine, logger),
		storage:  s,
		logger:   logger,
	}
}

// Router wires every route onto a new mux router.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.metricsMiddleware)

	router.HandleFunc("/assets", s.listAssetsHandler).Methods("GET")
	router.HandleFunc("/assets", s.createAssetHandler).Methods("POST")
	router.HandleFunc("/assets/{id}", s.getAssetHandler).Methods("GET")
	router.HandleFunc("/assets/{id}", s.updateAssetHandler).Methods("PUT")
	router.HandleFunc("/assets/{id}", s.deleteAssetHandler).Methods("DELETE")

	router.HandleFunc("/blocks", s.listBlocksHandler).Methods("GET")
	router.HandleFunc("/blocks", s.createBlockHandler).Methods("POST")
	router.HandleFunc("/blocks/{id}", s.getBlockHandler).Methods("GET")
	router.HandleFunc("/blocks/{id}", s.updateBlockHandler).Methods("PUT")
	router.HandleFunc("/blocks/{id}", s.deleteBlockHandler).Methods("DELETE")

	router.HandleFunc("/settings", s.getSettingsHandler).Methods("GET")
	router.HandleFunc("/settings", s.updateSettingsHandler).Methods("PUT")
	router.HandleFunc("/rates", s.ratesHandler).Methods("GET")

	router.HandleFunc("/schedules/companies-act", s.companiesActScheduleHandler).Methods("GET")
	router.HandleFunc("/schedules/income-tax", s.incomeTaxScheduleHandler).Methods("GET")
	router.HandleFunc("/deferred-tax", s.deferredTaxHandler).Methods("GET")

	router.HandleFunc("/export/companies-act.csv", s.exportCompaniesActHandler).Methods("GET")
	router.HandleFunc("/export/income-tax.csv", s.exportIncomeTaxHandler).Methods("GET")
	router.HandleFunc("/export/companies-act-summary.csv", s.exportCompaniesActSummaryHandler).Methods("GET")
	router.HandleFunc("/export/income-tax-summary.csv", s.exportIncomeTaxSummaryHandler).Methods("GET")
	router.HandleFunc("/snapshot", s.getSnapshotHandler).Methods("GET")
	router.HandleFunc("/snapshot", s.putSnapshotHandler).Methods("PUT")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/health", s.healthHandler).Methods("GET")
	return router
}

func openStorage(cfg *config.Config, logger zerolog.Logger) (store.Storage, error) {
	switch cfg.Storage.Driver {
	case "memory":
		logger.Warn().Msg("Using in-memory storage; the register is lost on exit")
		return store.NewMemoryStore(), nil
	case "sqlite", "":
		return store.NewSQLiteStore(cfg.Storage.Path, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func main() {
	bootLogger := config.NewLogger("info")
	if err := config.LoadDotEnv(); err != nil {
		bootLogger.Fatal().Err(err).Msg("Failed to load .env")
	}
	cfg, err := config.LoadConfig("depreg.toml", os.Getenv("DEPREG_CONFIG"))
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger := config.NewLogger(cfg.Logging.Level)

	tables, err := cfg.Tables()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid rate tables")
	}
	defaults, err := cfg.Settings()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid default settings")
	}

	storage, err := openStorage(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer storage.Close()

	server := NewServer(storage, depreciation.NewEngine(tables), logger)
	server.register.WithDefaults(defaults)

	httpServer := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info().Str("addr", httpServer.Addr).Msg("Server starting")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("Server stopped")
	}
}
