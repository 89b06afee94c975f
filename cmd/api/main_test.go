package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mcclellann/depreg/pkg/config"
	"github.com/mcclellann/depreg/pkg/depreciation"
	"github.com/mcclellann/depreg/pkg/models"
	"github.com/mcclellann/depreg/pkg/rates"
	"github.com/mcclellann/depreg/pkg/register"
	"github.com/mcclellann/depreg/pkg/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T) (*Server, *mux.Router) {
	t.Helper()
	dbFile := filepath.Join(t.TempDir(), "test_api.db")
	s, err := store.NewSQLiteStore(dbFile, config.NewSilentLogger())
	require.NoError(t, err, "Failed to create store")
	t.Cleanup(func() { s.Close() })

	server := NewServer(s, depreciation.NewEngine(rates.Default()), config.NewSilentLogger())
	return server, server.Router()
}

func do(t *testing.T, router *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestAPI_CreateAndGetAsset(t *testing.T) {
	_, router := setupTestServer(t)

	rr := do(t, router, "POST", "/assets", map[string]any{
		"name":                             "CNC lathe",
		"asset_type":                       rates.PlantMachinery,
		"opening_gross_block":              "500000",
		"opening_accumulated_depreciation": 50000,
		"purchase_date":                    "2019-04-15",
		"additions":                        []map[string]any{{"date": "2024-10-03", "cost": "1000"}},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created models.CompaniesActAsset
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.NotEqual(t, uuid.Nil, created.ID)

	rr = do(t, router, "GET", "/assets/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var fetched models.CompaniesActAsset
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &fetched))
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "2019-04-15", fetched.PurchaseDate.String())
	require.Len(t, fetched.Additions, 1)
	assert.True(t, fetched.Additions[0].Cost.Equal(decimal.NewFromInt(1000)))
}

func TestAPI_AssetErrors(t *testing.T) {
	_, router := setupTestServer(t)

	rr := do(t, router, "GET", "/assets/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, "GET", "/assets/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, router, "PUT", "/assets/"+uuid.NewString(), map[string]any{"name": "ghost"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, router, "POST", "/assets", map[string]any{"name": "neg", "opening_gross_block": -1})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, "DELETE", "/blocks/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPI_UpdateAndDeleteBlock(t *testing.T) {
	_, router := setupTestServer(t)

	rr := do(t, router, "POST", "/blocks", map[string]any{
		"name":        "Computers",
		"block_type":  rates.BlockComputer,
		"opening_wdv": 100000,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var block models.IncomeTaxBlock
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &block))
	assert.True(t, block.Rate.Equal(decimal.RequireFromString("0.40")))

	block.BlockType = rates.BlockFurniture
	rr = do(t, router, "PUT", "/blocks/"+block.ID.String(), block)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated models.IncomeTaxBlock
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.True(t, updated.Rate.Equal(decimal.RequireFromString("0.10")))

	rr = do(t, router, "GET", "/blocks", nil)
	var list []models.IncomeTaxBlock
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rr = do(t, router, "DELETE", "/blocks/"+block.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestAPI_Schedules(t *testing.T) {
	_, router := setupTestServer(t)

	do(t, router, "POST", "/assets", map[string]any{
		"name":                             "CNC lathe",
		"asset_type":                       rates.PlantMachinery,
		"opening_gross_block":              500000,
		"opening_accumulated_depreciation": 50000,
	})
	do(t, router, "POST", "/blocks", map[string]any{
		"name":        "Plant",
		"block_type":  rates.BlockPlantMachinery,
		"opening_wdv": 1000000,
	})

	rr := do(t, router, "GET", "/schedules/companies-act?method=WDV&fy=2024-25", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var ca register.CompaniesActSchedule
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ca))
	assert.Equal(t, "FY2024-25", ca.FinancialYear)
	require.Len(t, ca.Results, 1)
	assert.True(t, ca.Results[0].DepreciationForYear.Equal(decimal.NewFromInt(81450)))

	rr = do(t, router, "GET", "/schedules/income-tax?fy=2024", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var it register.IncomeTaxSchedule
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &it))
	assert.True(t, it.Summary.Totals.DepreciationForYear.Equal(decimal.NewFromInt(150000)))

	rr = do(t, router, "GET", "/deferred-tax?method=WDV&fy=2024-25&rate=0.25&profit=1000000", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var dt register.DeferredTaxReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dt))
	// Opening WDVs 450000 vs 1000000; movement 81450 - 150000.
	assert.True(t, dt.Result.OpeningTimingDifference.Equal(decimal.NewFromInt(550000)))
	assert.True(t, dt.Result.MovementTimingDifference.Equal(decimal.NewFromInt(-68550)))

	rr = do(t, router, "GET", "/schedules/companies-act?method=DDB", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = do(t, router, "GET", "/schedules/income-tax?fy=2024-27", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = do(t, router, "GET", "/deferred-tax?rate=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPI_ExportCSV(t *testing.T) {
	_, router := setupTestServer(t)
	do(t, router, "POST", "/assets", map[string]any{
		"name":                "Desk",
		"asset_type":          rates.FurnitureFittings,
		"opening_gross_block": 100000,
		"residual_value":      10000,
	})

	rr := do(t, router, "GET", "/export/companies-act.csv?method=SLM&fy=2024-25", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "FY2024-25")

	records, err := csv.NewReader(rr.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "9000.00", records[1][9])

	rr = do(t, router, "GET", "/export/income-tax.csv", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "block_id,"))
}

func TestAPI_ExportSummaryCSV(t *testing.T) {
	_, router := setupTestServer(t)
	do(t, router, "POST", "/assets", map[string]any{
		"name":                "Desk",
		"asset_type":          rates.FurnitureFittings,
		"opening_gross_block": 100000,
		"residual_value":      10000,
	})
	do(t, router, "POST", "/blocks", map[string]any{
		"name":        "Plant",
		"block_type":  rates.BlockPlantMachinery,
		"opening_wdv": 1000000,
	})

	rr := do(t, router, "GET", "/export/companies-act-summary.csv?method=SLM&fy=2024-25", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "companies-act-summary-FY2024-25")
	records, err := csv.NewReader(rr.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, rates.FurnitureFittings, records[1][0])
	assert.Equal(t, "total", records[2][0])
	assert.Equal(t, "1", records[2][1])

	rr = do(t, router, "GET", "/export/income-tax-summary.csv?fy=2024-25", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	records, err = csv.NewReader(rr.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "total", records[2][0])
	assert.Equal(t, "150000.00", records[2][9])

	rr = do(t, router, "GET", "/export/companies-act-summary.csv?method=DDB", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPI_SettingsAndSnapshot(t *testing.T) {
	_, router := setupTestServer(t)

	rr := do(t, router, "PUT", "/settings", map[string]any{"method": "WDV", "financial_year": 2023, "tax_rate": "0.2517"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, router, "GET", "/settings", nil)
	var settings models.Settings
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &settings))
	assert.Equal(t, models.MethodWDV, settings.Method)
	assert.Equal(t, 2023, settings.FinancialYear)

	snap := models.Snapshot{
		Settings: models.Settings{Method: models.MethodSLM, FinancialYear: 2024, TaxRate: decimal.RequireFromString("0.25")},
		Assets: []models.CompaniesActAsset{
			{Name: "Imported", AssetType: rates.Computer, OpeningGrossBlock: decimal.NewFromInt(60000)},
		},
	}
	rr = do(t, router, "PUT", "/snapshot", snap)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, router, "GET", "/snapshot", nil)
	var got models.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got.Assets, 1)
	assert.Equal(t, "Imported", got.Assets[0].Name)
	assert.NotEqual(t, uuid.Nil, got.Assets[0].ID)
	assert.Equal(t, 2024, got.Settings.FinancialYear)
}

func TestAPI_HealthRatesAndMetrics(t *testing.T) {
	_, router := setupTestServer(t)

	rr := do(t, router, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, router, "GET", "/rates", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var tables struct {
		AssetClasses []rates.AssetClass `json:"asset_classes"`
		BlockClasses []rates.BlockClass `json:"block_classes"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tables))
	assert.Len(t, tables.AssetClasses, 10)
	assert.Len(t, tables.BlockClasses, 9)

	rr = do(t, router, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `depreg_http_requests_total{code="200",method="GET",route="/health"}`)
}
