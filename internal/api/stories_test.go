package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"lorefit/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newAPITestDB opens a throwaway sqlite database with the handler tables migrated.
func newAPITestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&domain.PointsLedger{},
		&domain.LedgerEntry{},
		&domain.Story{},
		&domain.Chapter{},
		&domain.ChapterVote{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// testRedis returns a client pointed at a closed port. Every cache
// operation fails and the handlers fall through to the database.
func testRedis() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
}

// voteRouter wires the vote route with the given user already authenticated.
func voteRouter(db *gorm.DB, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	r.POST("/chapters/:id/vote", VoteChapterHandler(db, testRedis()))
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// seedChapter creates a story with one chapter by the given author.
func seedChapter(t *testing.T, db *gorm.DB, authorID uint) domain.Chapter {
	t.Helper()
	story := domain.Story{Title: "the long run", CreatorID: authorID, Status: domain.StoryOpen}
	if err := db.Create(&story).Error; err != nil {
		t.Fatalf("seed story: %v", err)
	}
	chapter := domain.Chapter{StoryID: story.ID, AuthorID: authorID, Number: 1, Body: "It began at dawn."}
	if err := db.Create(&chapter).Error; err != nil {
		t.Fatalf("seed chapter: %v", err)
	}
	return chapter
}

func TestVoteChapterWeighted(t *testing.T) {
	db := newAPITestDB(t)
	chapter := seedChapter(t, db, 2)
	// 1000 lifetime points make the voter count double
	if err := db.Create(&domain.PointsLedger{UserID: 1, LifetimeEarned: 1000}).Error; err != nil {
		t.Fatalf("seed ledger: %v", err)
	}
	r := voteRouter(db, 1)

	w := postJSON(t, r, "/chapters/1/vote", `{"value": 1}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Weight float64 `json:"weight"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Weight != 2.0 {
		t.Errorf("weight = %v, want 2.0", resp.Weight)
	}
	var fresh domain.Chapter
	db.First(&fresh, chapter.ID)
	if fresh.VoteScore != 2.0 {
		t.Errorf("VoteScore = %v, want 2.0", fresh.VoteScore)
	}
}

func TestVoteChapterDuplicate(t *testing.T) {
	db := newAPITestDB(t)
	seedChapter(t, db, 2)
	if err := db.Create(&domain.PointsLedger{UserID: 1}).Error; err != nil {
		t.Fatalf("seed ledger: %v", err)
	}
	r := voteRouter(db, 1)

	if w := postJSON(t, r, "/chapters/1/vote", `{"value": 1}`); w.Code != http.StatusCreated {
		t.Fatalf("first vote status = %d, want 201", w.Code)
	}
	// The repeat is a client error, not a server failure
	w := postJSON(t, r, "/chapters/1/vote", `{"value": -1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("second vote status = %d, want 400, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Already voted") {
		t.Errorf("body = %s, want duplicate-vote message", w.Body.String())
	}
	var votes int64
	db.Model(&domain.ChapterVote{}).Count(&votes)
	if votes != 1 {
		t.Errorf("vote count = %d, want 1", votes)
	}
}

func TestVoteChapterOwnChapter(t *testing.T) {
	db := newAPITestDB(t)
	seedChapter(t, db, 1)
	if err := db.Create(&domain.PointsLedger{UserID: 1}).Error; err != nil {
		t.Fatalf("seed ledger: %v", err)
	}
	r := voteRouter(db, 1)

	w := postJSON(t, r, "/chapters/1/vote", `{"value": 1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("self-vote status = %d, want 400", w.Code)
	}
}

func TestVoteChapterInvalidValue(t *testing.T) {
	db := newAPITestDB(t)
	seedChapter(t, db, 2)
	r := voteRouter(db, 1)

	w := postJSON(t, r, "/chapters/1/vote", `{"value": 2}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
