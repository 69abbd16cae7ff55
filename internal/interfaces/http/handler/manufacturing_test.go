package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	mfgapp "github.com/goldpos/backend/internal/application/manufacturing"
	"github.com/goldpos/backend/internal/domain/manufacturing"
	"github.com/goldpos/backend/internal/domain/shared"
	"github.com/goldpos/backend/internal/infrastructure/persistence"
	"github.com/goldpos/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// stubDirectory serves the catalog/identity lookups for handler tests
type stubDirectory struct {
	product mfgapp.ProductInfo
}

func (d *stubDirectory) GetProduct(_ context.Context, id uuid.UUID) (*mfgapp.ProductInfo, error) {
	if id != d.product.ID {
		return nil, shared.ErrNotFound
	}
	info := d.product
	return &info, nil
}

func (d *stubDirectory) BranchExists(_ context.Context, _ uuid.UUID) (bool, error) {
	return true, nil
}

func (d *stubDirectory) TechnicianExists(_ context.Context, _ uuid.UUID) (bool, error) {
	return true, nil
}

type testEnv struct {
	db      *gorm.DB
	engine  *gin.Engine
	lot     *manufacturing.RawGoldLot
	product mfgapp.ProductInfo
	userID  uuid.UUID
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

func setupTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&manufacturing.RawGoldLot{},
		&manufacturing.ManufacturingRecord{},
		&manufacturing.WorkflowHistoryEntry{},
		&manufacturing.RawMaterialContribution{},
	))

	lot, err := manufacturing.NewRawGoldLot(
		uuid.New(), uuid.New(), uuid.New(), manufacturing.Karat21,
		decimal.RequireFromString("100.000"), decimal.RequireFromString("100.000"),
	)
	require.NoError(t, err)
	require.NoError(t, db.Create(lot).Error)

	directory := &stubDirectory{product: mfgapp.ProductInfo{
		ID:        uuid.New(),
		Name:      "Gold Bangle 21K",
		KaratType: manufacturing.Karat21,
		Weight:    decimal.RequireFromString("2.000"),
	}}

	lotRepo := persistence.NewGormRawGoldLotRepository(db)
	recordRepo := persistence.NewGormManufacturingRecordRepository(db)
	historyRepo := persistence.NewGormWorkflowHistoryRepository(db)
	contributionRepo := persistence.NewGormContributionRepository(db)
	txScope := persistence.NewGormTransactionScope(db)

	ledgerService := mfgapp.NewWeightLedgerService(lotRepo, txScope, nil)
	manufacturingService := mfgapp.NewManufacturingService(recordRepo, txScope, directory, directory, directory, nil)
	workflowService := mfgapp.NewWorkflowService(recordRepo, historyRepo, txScope, nil)
	compositionService := mfgapp.NewCompositionService(contributionRepo, recordRepo)

	ledgerHandler := NewLedgerHandler(ledgerService)
	manufacturingHandler := NewManufacturingHandler(manufacturingService)
	workflowHandler := NewWorkflowHandler(workflowService)
	compositionHandler := NewCompositionHandler(compositionService)

	engine := gin.New()
	engine.POST("/lots", ledgerHandler.RegisterLot)
	engine.GET("/lots", ledgerHandler.List)
	engine.GET("/lots/available", ledgerHandler.ListAvailable)
	engine.GET("/lots/:id", ledgerHandler.Get)
	engine.GET("/lots/:id/remaining-weight", ledgerHandler.RemainingWeight)
	engine.GET("/lots/:id/check-sufficient", ledgerHandler.CheckSufficient)

	engine.POST("/records", manufacturingHandler.Create)
	engine.GET("/records", manufacturingHandler.List)
	engine.GET("/records/summary", manufacturingHandler.Summary)
	engine.GET("/records/search", manufacturingHandler.SearchByBatch)
	engine.GET("/records/:id", manufacturingHandler.Get)
	engine.DELETE("/records/:id", manufacturingHandler.Delete)

	engine.GET("/records/:id/transitions", workflowHandler.AvailableTransitions)
	engine.POST("/records/:id/transition", workflowHandler.Transition)
	engine.POST("/records/:id/quality-check", workflowHandler.QualityCheck)
	engine.POST("/records/:id/approval", workflowHandler.Approval)
	engine.POST("/records/:id/cancel", workflowHandler.Cancel)
	engine.GET("/records/:id/history", workflowHandler.History)

	engine.POST("/records/:id/contributions", compositionHandler.Add)
	engine.GET("/records/:id/contributions", compositionHandler.List)
	engine.GET("/records/:id/contributions/total", compositionHandler.Total)
	engine.DELETE("/records/:id/contributions/:contributionId", compositionHandler.Remove)

	return &testEnv{
		db:      db,
		engine:  engine,
		lot:     lot,
		product: directory.product,
		userID:  uuid.New(),
	}
}

func (e *testEnv) request(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, apiResponse) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", e.userID.String())
	req.Header.Set("X-User-Name", "workshop-tester")

	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)

	var resp apiResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func (e *testEnv) createRecordPayload(batchNumber, consumedWeight string) gin.H {
	return gin.H{
		"batch_number":        batchNumber,
		"product_id":          e.product.ID.String(),
		"source_lot_id":       e.lot.ID.String(),
		"branch_id":           e.lot.BranchID.String(),
		"quantity_to_produce": 5,
		"consumed_weight":     consumedWeight,
		"cost_per_gram":       "15.00",
	}
}

func (e *testEnv) createRecord(t *testing.T, batchNumber, consumedWeight string) manufacturing.ManufacturingRecord {
	rec, resp := e.request(t, http.MethodPost, "/records", e.createRecordPayload(batchNumber, consumedWeight))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var record manufacturing.ManufacturingRecord
	require.NoError(t, json.Unmarshal(resp.Data, &record))
	return record
}

func (e *testEnv) remainingWeight(t *testing.T) string {
	_, resp := e.request(t, http.MethodGet, fmt.Sprintf("/lots/%s/remaining-weight", e.lot.ID), nil)
	var data RemainingWeightResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data.RemainingWeight
}

func TestManufacturingHandlerCreate(t *testing.T) {
	t.Run("creates a record and reserves the weight", func(t *testing.T) {
		env := setupTestEnv(t)

		record := env.createRecord(t, "GLD-001", "10.000")
		assert.Equal(t, manufacturing.StatusDraft, record.Status)
		assert.Equal(t, "150", record.TotalCost.String())
		assert.Equal(t, env.userID, record.CreatedBy)

		assert.Equal(t, "90.000", env.remainingWeight(t))
	})

	t.Run("rejects a reservation the lot cannot cover", func(t *testing.T) {
		env := setupTestEnv(t)

		rec, resp := env.request(t, http.MethodPost, "/records", env.createRecordPayload("GLD-002", "150.000"))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ERR_INSUFFICIENT_WEIGHT", resp.Error.Code)

		// Nothing persisted, nothing reserved
		assert.Equal(t, "100.000", env.remainingWeight(t))
	})

	t.Run("rejects an unknown product", func(t *testing.T) {
		env := setupTestEnv(t)

		payload := env.createRecordPayload("GLD-003", "10.000")
		payload["product_id"] = uuid.New().String()

		rec, resp := env.request(t, http.MethodPost, "/records", payload)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ERR_VALIDATION", resp.Error.Code)
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		env := setupTestEnv(t)

		rec, _ := env.request(t, http.MethodPost, "/records", gin.H{"batch_number": "GLD-004"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestManufacturingHandlerDelete(t *testing.T) {
	t.Run("deletes a draft record and releases the weight", func(t *testing.T) {
		env := setupTestEnv(t)
		record := env.createRecord(t, "GLD-010", "10.000")
		require.Equal(t, "90.000", env.remainingWeight(t))

		rec, _ := env.request(t, http.MethodDelete, "/records/"+record.ID.String(), nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		assert.Equal(t, "100.000", env.remainingWeight(t))

		rec, resp := env.request(t, http.MethodGet, "/records/"+record.ID.String(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ERR_NOT_FOUND", resp.Error.Code)
	})

	t.Run("refuses to delete once production started", func(t *testing.T) {
		env := setupTestEnv(t)
		record := env.createRecord(t, "GLD-011", "10.000")

		rec, _ := env.request(t, http.MethodPost, "/records/"+record.ID.String()+"/transition",
			gin.H{"target_status": "IN_PROGRESS"})
		require.Equal(t, http.StatusOK, rec.Code)

		rec, resp := env.request(t, http.MethodDelete, "/records/"+record.ID.String(), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ERR_NOT_DELETABLE", resp.Error.Code)

		// The reservation stays on the ledger
		assert.Equal(t, "90.000", env.remainingWeight(t))
	})
}

func TestWorkflowHandler(t *testing.T) {
	t.Run("walks the happy path to completion", func(t *testing.T) {
		env := setupTestEnv(t)
		record := env.createRecord(t, "GLD-020", "10.000")
		base := "/records/" + record.ID.String()

		rec, _ := env.request(t, http.MethodPost, base+"/transition", gin.H{"target_status": "IN_PROGRESS"})
		require.Equal(t, http.StatusOK, rec.Code)
		rec, _ = env.request(t, http.MethodPost, base+"/transition", gin.H{"target_status": "QUALITY_CHECK"})
		require.Equal(t, http.StatusOK, rec.Code)

		rec, resp := env.request(t, http.MethodPost, base+"/quality-check", gin.H{"passed": true, "notes": "clean"})
		require.Equal(t, http.StatusOK, rec.Code)
		var afterQC manufacturing.ManufacturingRecord
		require.NoError(t, json.Unmarshal(resp.Data, &afterQC))
		assert.Equal(t, manufacturing.StatusFinalApproval, afterQC.Status)

		rec, resp = env.request(t, http.MethodPost, base+"/approval", gin.H{"approved": true})
		require.Equal(t, http.StatusOK, rec.Code)
		var done manufacturing.ManufacturingRecord
		require.NoError(t, json.Unmarshal(resp.Data, &done))
		assert.Equal(t, manufacturing.StatusCompleted, done.Status)

		_, resp = env.request(t, http.MethodGet, base+"/history", nil)
		var history []manufacturing.WorkflowHistoryEntry
		require.NoError(t, json.Unmarshal(resp.Data, &history))
		require.Len(t, history, 5)
		assert.Equal(t, manufacturing.EntryTypeCreated, history[0].EntryType)
		assert.Equal(t, manufacturing.StatusCompleted, history[4].ToStatus)
	})

	t.Run("failed quality check returns the batch to production", func(t *testing.T) {
		env := setupTestEnv(t)
		record := env.createRecord(t, "GLD-021", "10.000")
		base := "/records/" + record.ID.String()

		env.request(t, http.MethodPost, base+"/transition", gin.H{"target_status": "IN_PROGRESS"})
		env.request(t, http.MethodPost, base+"/transition", gin.H{"target_status": "QUALITY_CHECK"})

		rec, resp := env.request(t, http.MethodPost, base+"/quality-check", gin.H{"passed": false, "notes": "scratched"})
		require.Equal(t, http.StatusOK, rec.Code)
		var reworked manufacturing.ManufacturingRecord
		require.NoError(t, json.Unmarshal(resp.Data, &reworked))
		assert.Equal(t, manufacturing.StatusInProgress, reworked.Status)
	})

	t.Run("rejects an illegal transition", func(t *testing.T) {
		env := setupTestEnv(t)
		record := env.createRecord(t, "GLD-022", "10.000")

		rec, resp := env.request(t, http.MethodPost, "/records/"+record.ID.String()+"/transition",
			gin.H{"target_status": "COMPLETED"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ERR_INVALID_TRANSITION", resp.Error.Code)
	})

	t.Run("cancels from a non-terminal status", func(t *testing.T) {
		env := setupTestEnv(t)
		record := env.createRecord(t, "GLD-023", "10.000")
		base := "/records/" + record.ID.String()

		env.request(t, http.MethodPost, base+"/transition", gin.H{"target_status": "IN_PROGRESS"})

		rec, resp := env.request(t, http.MethodPost, base+"/cancel", gin.H{"notes": "customer withdrew"})
		require.Equal(t, http.StatusOK, rec.Code)
		var cancelled manufacturing.ManufacturingRecord
		require.NoError(t, json.Unmarshal(resp.Data, &cancelled))
		assert.Equal(t, manufacturing.StatusCancelled, cancelled.Status)

		// Terminal records refuse further transitions
		rec, resp = env.request(t, http.MethodPost, base+"/transition", gin.H{"target_status": "IN_PROGRESS"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ERR_INVALID_TRANSITION", resp.Error.Code)
	})

	t.Run("reports available transitions", func(t *testing.T) {
		env := setupTestEnv(t)
		record := env.createRecord(t, "GLD-024", "10.000")

		_, resp := env.request(t, http.MethodGet, "/records/"+record.ID.String()+"/transitions", nil)
		var transitions []manufacturing.ManufacturingStatus
		require.NoError(t, json.Unmarshal(resp.Data, &transitions))
		assert.ElementsMatch(t, []manufacturing.ManufacturingStatus{
			manufacturing.StatusInProgress, manufacturing.StatusCancelled,
		}, transitions)
	})
}

func TestManufacturingHandlerListAndSummary(t *testing.T) {
	env := setupTestEnv(t)
	env.createRecord(t, "GLD-030", "10.000")
	env.createRecord(t, "GLD-031", "10.000")
	other := env.createRecord(t, "XAU-001", "10.000")

	env.request(t, http.MethodPost, "/records/"+other.ID.String()+"/transition",
		gin.H{"target_status": "IN_PROGRESS"})

	t.Run("lists with batch prefix filter", func(t *testing.T) {
		rec, resp := env.request(t, http.MethodGet, "/records?batch_prefix=GLD-", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var records []manufacturing.ManufacturingRecord
		require.NoError(t, json.Unmarshal(resp.Data, &records))
		assert.Len(t, records, 2)
		require.NotNil(t, resp.Meta)
		assert.EqualValues(t, 2, resp.Meta.Total)
	})

	t.Run("filters by status", func(t *testing.T) {
		_, resp := env.request(t, http.MethodGet, "/records?status=IN_PROGRESS", nil)
		var records []manufacturing.ManufacturingRecord
		require.NoError(t, json.Unmarshal(resp.Data, &records))
		require.Len(t, records, 1)
		assert.Equal(t, "XAU-001", records[0].BatchNumber)
	})

	t.Run("rejects an unknown status filter", func(t *testing.T) {
		rec, _ := env.request(t, http.MethodGet, "/records?status=BOGUS", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("searches by batch prefix", func(t *testing.T) {
		_, resp := env.request(t, http.MethodGet, "/records/search?prefix=XAU-", nil)
		var records []manufacturing.ManufacturingRecord
		require.NoError(t, json.Unmarshal(resp.Data, &records))
		require.Len(t, records, 1)
		assert.Equal(t, "XAU-001", records[0].BatchNumber)
	})

	t.Run("summarizes per status", func(t *testing.T) {
		_, resp := env.request(t, http.MethodGet, "/records/summary", nil)
		var summary []manufacturing.StatusSummary
		require.NoError(t, json.Unmarshal(resp.Data, &summary))

		byStatus := map[manufacturing.ManufacturingStatus]manufacturing.StatusSummary{}
		for _, s := range summary {
			byStatus[s.Status] = s
		}
		assert.EqualValues(t, 2, byStatus[manufacturing.StatusDraft].Count)
		assert.EqualValues(t, 1, byStatus[manufacturing.StatusInProgress].Count)
	})
}

func TestLedgerHandler(t *testing.T) {
	t.Run("registers a received lot", func(t *testing.T) {
		env := setupTestEnv(t)

		rec, resp := env.request(t, http.MethodPost, "/lots", gin.H{
			"purchase_order_id":      uuid.New().String(),
			"purchase_order_item_id": uuid.New().String(),
			"branch_id":              uuid.New().String(),
			"karat_type":             "22K",
			"weight_ordered":         "50.000",
			"weight_received":        "49.500",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var lot manufacturing.RawGoldLot
		require.NoError(t, json.Unmarshal(resp.Data, &lot))
		assert.Equal(t, manufacturing.Karat22, lot.KaratType)
		assert.Equal(t, "49.500", lot.RemainingWeight().StringFixed())
	})

	t.Run("rejects a lot with a negative weight", func(t *testing.T) {
		env := setupTestEnv(t)

		rec, resp := env.request(t, http.MethodPost, "/lots", gin.H{
			"purchase_order_id":      uuid.New().String(),
			"purchase_order_item_id": uuid.New().String(),
			"branch_id":              uuid.New().String(),
			"karat_type":             "22K",
			"weight_ordered":         "50.000",
			"weight_received":        "-1.000",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ERR_VALIDATION", resp.Error.Code)
	})

	t.Run("reports remaining weight and sufficiency", func(t *testing.T) {
		env := setupTestEnv(t)
		env.createRecord(t, "GLD-040", "40.000")

		assert.Equal(t, "60.000", env.remainingWeight(t))

		_, resp := env.request(t, http.MethodGet,
			fmt.Sprintf("/lots/%s/check-sufficient?weight=60.000", env.lot.ID), nil)
		var check SufficiencyResponse
		require.NoError(t, json.Unmarshal(resp.Data, &check))
		assert.True(t, check.Sufficient)

		_, resp = env.request(t, http.MethodGet,
			fmt.Sprintf("/lots/%s/check-sufficient?weight=60.001", env.lot.ID), nil)
		require.NoError(t, json.Unmarshal(resp.Data, &check))
		assert.False(t, check.Sufficient)
	})

	t.Run("unknown lot yields not found", func(t *testing.T) {
		env := setupTestEnv(t)

		rec, resp := env.request(t, http.MethodGet,
			fmt.Sprintf("/lots/%s/remaining-weight", uuid.New()), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ERR_NOT_FOUND", resp.Error.Code)
	})

	t.Run("lists only lots with remaining weight as available", func(t *testing.T) {
		env := setupTestEnv(t)
		env.createRecord(t, "GLD-041", "100.000") // drains the seeded lot

		_, resp := env.request(t, http.MethodGet, "/lots/available", nil)
		var lots []manufacturing.RawGoldLot
		require.NoError(t, json.Unmarshal(resp.Data, &lots))
		assert.Empty(t, lots)
	})
}

func TestCompositionHandler(t *testing.T) {
	env := setupTestEnv(t)
	record := env.createRecord(t, "GLD-050", "10.000")
	base := "/records/" + record.ID.String() + "/contributions"

	contributionPayload := func(percent string) gin.H {
		return gin.H{
			"raw_product_id":       uuid.New().String(),
			"quantity_used":        "5.000",
			"unit_cost":            "8.00",
			"contribution_percent": percent,
			"source_type":          "PURCHASE_ORDER",
			"source_id":            uuid.New().String(),
		}
	}

	t.Run("tracks contributions toward a balanced composition", func(t *testing.T) {
		rec, resp := env.request(t, http.MethodPost, base, contributionPayload("60.00"))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var first manufacturing.RawMaterialContribution
		require.NoError(t, json.Unmarshal(resp.Data, &first))

		_, resp = env.request(t, http.MethodGet, base+"/total", nil)
		var total mfgapp.CompositionTotal
		require.NoError(t, json.Unmarshal(resp.Data, &total))
		assert.False(t, total.Balanced)
		assert.Equal(t, "60", total.TotalPercent.String())

		env.request(t, http.MethodPost, base, contributionPayload("40.00"))

		_, resp = env.request(t, http.MethodGet, base+"/total", nil)
		require.NoError(t, json.Unmarshal(resp.Data, &total))
		assert.True(t, total.Balanced)
		assert.Equal(t, 2, total.ContributionCount)

		rec, _ = env.request(t, http.MethodDelete, base+"/"+first.ID.String(), nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		_, resp = env.request(t, http.MethodGet, base, nil)
		var listed []manufacturing.RawMaterialContribution
		require.NoError(t, json.Unmarshal(resp.Data, &listed))
		assert.Len(t, listed, 1)
	})

	t.Run("rejects a contribution against an unknown record", func(t *testing.T) {
		rec, resp := env.request(t, http.MethodPost,
			"/records/"+uuid.New().String()+"/contributions", contributionPayload("10.00"))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ERR_NOT_FOUND", resp.Error.Code)
	})

	t.Run("rejects an out-of-range percentage", func(t *testing.T) {
		rec, resp := env.request(t, http.MethodPost, base, contributionPayload("101.00"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ERR_VALIDATION", resp.Error.Code)
	})
}
