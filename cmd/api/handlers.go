package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mcclellann/depreg/pkg/export"
	"github.com/mcclellann/depreg/pkg/fiscal"
	"github.com/mcclellann/depreg/pkg/models"
	"github.com/mcclellann/depreg/pkg/register"
	"github.com/mcclellann/depreg/pkg/store"
	"github.com/shopspring/decimal"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps register and store errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrAssetNotFound):
		http.Error(w, "Asset not found", http.StatusNotFound)
	case errors.Is(err, store.ErrBlockNotFound):
		http.Error(w, "Block not found", http.StatusNotFound)
	case errors.Is(err, register.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.logger.Error().Err(err).Msg("Request failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseID(w http.ResponseWriter, r *http.Request, kind string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid "+kind+" ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) listAssetsHandler(w http.ResponseWriter, r *http.Request) {
	assets, err := s.register.ListAssets()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if assets == nil {
		assets = []*models.CompaniesActAsset{}
	}
	writeJSON(w, http.StatusOK, assets)
}

func (s *Server) createAssetHandler(w http.ResponseWriter, r *http.Request) {
	var asset models.CompaniesActAsset
	if !decodeBody(w, r, &asset) {
		return
	}
	created, err := s.register.CreateAsset(&asset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getAssetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "asset")
	if !ok {
		return
	}
	asset, err := s.register.GetAsset(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (s *Server) updateAssetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "asset")
	if !ok {
		return
	}
	var asset models.CompaniesActAsset
	if !decodeBody(w, r, &asset) {
		return
	}
	asset.ID = id // Ensure ID from URL is used
	if err := s.register.UpdateAsset(&asset); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (s *Server) deleteAssetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "asset")
	if !ok {
		return
	}
	if err := s.register.DeleteAsset(id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listBlocksHandler(w http.ResponseWriter, r *http.Request) {
	blocks, err := s.register.ListBlocks()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if blocks == nil {
		blocks = []*models.IncomeTaxBlock{}
	}
	writeJSON(w, http.StatusOK, blocks)
}

func (s *Server) createBlockHandler(w http.ResponseWriter, r *http.Request) {
	var block models.IncomeTaxBlock
	if !decodeBody(w, r, &block) {
		return
	}
	created, err := s.register.CreateBlock(&block)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getBlockHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "block")
	if !ok {
		return
	}
	block, err := s.register.GetBlock(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, block)
}

func (s *Server) updateBlockHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "block")
	if !ok {
		return
	}
	var block models.IncomeTaxBlock
	if !decodeBody(w, r, &block) {
		return
	}
	block.ID = id
	if err := s.register.UpdateBlock(&block); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, block)
}

func (s *Server) deleteBlockHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "block")
	if !ok {
		return
	}
	if err := s.register.DeleteBlock(id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getSettingsHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := s.register.Settings()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) updateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var settings models.Settings
	if !decodeBody(w, r, &settings) {
		return
	}
	if err := s.register.UpdateSettings(settings); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) ratesHandler(w http.ResponseWriter, r *http.Request) {
	tables := s.register.Engine().Tables()
	writeJSON(w, http.StatusOK, map[string]any{
		"asset_classes": tables.AssetClasses(),
		"block_classes": tables.BlockClasses(),
	})
}

// scheduleParams reads the method and fy query parameters.
func (s *Server) scheduleParams(r *http.Request) (models.Method, fiscal.Window, error) {
	q := r.URL.Query()
	method, err := s.register.Method(q.Get("method"))
	if err != nil {
		return "", fiscal.Window{}, err
	}
	window, err := s.register.Window(q.Get("fy"))
	if err != nil {
		return "", fiscal.Window{}, err
	}
	return method, window, nil
}

func (s *Server) companiesActScheduleHandler(w http.ResponseWriter, r *http.Request) {
	method, window, err := s.scheduleParams(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sched, err := s.register.CompaniesActSchedule(method, window)
	if err != nil {
		s.writeError(w, err)
		return
	}
	schedulesComputed.WithLabelValues("companies_act").Inc()
	writeJSON(w, http.StatusOK, sched)
}

func (s *Server) incomeTaxScheduleHandler(w http.ResponseWriter, r *http.Request) {
	window, err := s.register.Window(r.URL.Query().Get("fy"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	sched, err := s.register.IncomeTaxSchedule(window)
	if err != nil {
		s.writeError(w, err)
		return
	}
	schedulesComputed.WithLabelValues("income_tax").Inc()
	writeJSON(w, http.StatusOK, sched)
}

func queryDecimal(r *http.Request, key string, fallback decimal.Decimal) (decimal.Decimal, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s must be a number", register.ErrInvalid, key)
	}
	return d, nil
}

func (s *Server) deferredTaxHandler(w http.ResponseWriter, r *http.Request) {
	method, window, err := s.scheduleParams(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	settings, err := s.register.Settings()
	if err != nil {
		s.writeError(w, err)
		return
	}
	rate, err := queryDecimal(r, "rate", settings.TaxRate)
	if err != nil {
		s.writeError(w, err)
		return
	}
	profit, err := queryDecimal(r, "profit", settings.AccountingProfit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	report, err := s.register.DeferredTax(method, window, rate, profit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	schedulesComputed.WithLabelValues("deferred_tax").Inc()
	writeJSON(w, http.StatusOK, report)
}

func csvHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
}

func (s *Server) exportCompaniesActHandler(w http.ResponseWriter, r *http.Request) {
	method, window, err := s.scheduleParams(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sched, err := s.register.CompaniesActSchedule(method, window)
	if err != nil {
		s.writeError(w, err)
		return
	}
	csvHeaders(w, "companies-act-"+window.Label()+".csv")
	if err := export.CompaniesActCSV(w, sched.Results); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write Companies Act CSV")
	}
}

func (s *Server) exportIncomeTaxHandler(w http.ResponseWriter, r *http.Request) {
	window, err := s.register.Window(r.URL.Query().Get("fy"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	sched, err := s.register.IncomeTaxSchedule(window)
	if err != nil {
		s.writeError(w, err)
		return
	}
	csvHeaders(w, "income-tax-"+window.Label()+".csv")
	if err := export.IncomeTaxCSV(w, sched.Results); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write Income Tax CSV")
	}
}

func (s *Server) exportCompaniesActSummaryHandler(w http.ResponseWriter, r *http.Request) {
	method, window, err := s.scheduleParams(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sched, err := s.register.CompaniesActSchedule(method, window)
	if err != nil {
		s.writeError(w, err)
		return
	}
	csvHeaders(w, "companies-act-summary-"+window.Label()+".csv")
	if err := export.CompaniesActSummaryCSV(w, sched.Summary); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write Companies Act summary CSV")
	}
}

func (s *Server) exportIncomeTaxSummaryHandler(w http.ResponseWriter, r *http.Request) {
	window, err := s.register.Window(r.URL.Query().Get("fy"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	sched, err := s.register.IncomeTaxSchedule(window)
	if err != nil {
		s.writeError(w, err)
		return
	}
	csvHeaders(w, "income-tax-summary-"+window.Label()+".csv")
	if err := export.IncomeTaxSummaryCSV(w, sched.Summary); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write Income Tax summary CSV")
	}
}

func (s *Server) getSnapshotHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := s.register.ExportSnapshot()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) putSnapshotHandler(w http.ResponseWriter, r *http.Request) {
	var snap models.Snapshot
	if !decodeBody(w, r, &snap) {
		return
	}
	if err := s.register.ImportSnapshot(&snap); err != nil {
		s.writeError(w, err)
		return
	}
	s.getSnapshotHandler(w, r)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
