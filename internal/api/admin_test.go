package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lorefit/internal/domain"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func ledgerRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/ledger", ListLedgerHandler(db, testRedis()))
	return r
}

// seedEntries creates a ledger with one entry per given timestamp.
func seedEntries(t *testing.T, db *gorm.DB, userID uint, times ...time.Time) {
	t.Helper()
	ledger := domain.PointsLedger{UserID: userID}
	if err := db.Create(&ledger).Error; err != nil {
		t.Fatalf("seed ledger: %v", err)
	}
	for _, ts := range times {
		entry := domain.LedgerEntry{
			LedgerID:  ledger.ID,
			Delta:     50,
			Reason:    "workout",
			CreatedAt: ts.UnixMilli(),
		}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("seed entry: %v", err)
		}
	}
}

func getLedger(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListLedgerRejectsBadDates(t *testing.T) {
	db := newAPITestDB(t)
	r := ledgerRouter(db)

	// A bare date is not RFC3339
	if w := getLedger(t, r, "/admin/ledger?from=2026-08-20"); w.Code != http.StatusBadRequest {
		t.Errorf("from status = %d, want 400, body %s", w.Code, w.Body.String())
	}
	if w := getLedger(t, r, "/admin/ledger?to=noon"); w.Code != http.StatusBadRequest {
		t.Errorf("to status = %d, want 400, body %s", w.Code, w.Body.String())
	}
}

func TestListLedgerDateRange(t *testing.T) {
	db := newAPITestDB(t)
	seedEntries(t, db, 1,
		time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
	)
	r := ledgerRouter(db)

	w := getLedger(t, r, "/admin/ledger?from=2026-08-05T00:00:00Z&to=2026-08-15T00:00:00Z")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Entries []domain.LedgerEntry `json:"entries"`
		Total   int64                `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 || len(resp.Entries) != 1 {
		t.Fatalf("total = %d, entries = %d, want 1 and 1", resp.Total, len(resp.Entries))
	}
	want := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC).UnixMilli()
	if resp.Entries[0].CreatedAt != want {
		t.Errorf("CreatedAt = %d, want %d", resp.Entries[0].CreatedAt, want)
	}
}
