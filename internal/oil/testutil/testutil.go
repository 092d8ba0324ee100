package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-oil/internal/middleware"
	"github.com/bitfantasy/nimo-oil/internal/oil/entity"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const JWTSecret = "nimo-oil-test-secret"

// SetupTestDB opens a private in-memory SQLite database with the oil schema.
// The pool is pinned to one connection so the database lives as long as the
// test and transactions serialize the way row locks would on Postgres.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:oiltest_%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", uuid.New().String()[:8])
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := entity.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// SetupRouter creates a gin test router.
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID())
	return r
}

// AuthGroup creates an API group behind JWT auth.
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid token for userID.
func GenerateTestToken(userID, name string, roles []string) string {
	if roles == nil {
		roles = []string{}
	}
	now := time.Now()
	claims := middleware.JWTClaims{
		UserID: userID,
		Name:   name,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    "nimo-oil",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
			ID:        fmt.Sprintf("test-jti-%d", now.UnixNano()),
		},
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(JWTSecret))
	return token
}

// DefaultTestToken returns a token for the default test accountant.
func DefaultTestToken() string {
	return GenerateTestToken("test-user-001", "Test Accountant", []string{"accountant"})
}

// DoRequest executes an HTTP request against the test router.
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	}
	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse decodes the {code, message, data} envelope.
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedMaterial creates a material. An empty targetOilType leaves it
// unconfigured for production.
func SeedMaterial(t *testing.T, db *gorm.DB, id, shortCode, targetOilType string) *entity.Material {
	t.Helper()
	m := &entity.Material{
		ID:            id,
		Name:          "Material " + id,
		ShortCode:     shortCode,
		Category:      entity.MaterialCategorySeed,
		TargetOilType: targetOilType,
		Unit:          "kg",
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("Failed to seed material: %v", err)
	}
	return m
}

func SeedSupplier(t *testing.T, db *gorm.DB, id, shortCode string) *entity.Supplier {
	t.Helper()
	s := &entity.Supplier{ID: id, Name: "Supplier " + id, ShortCode: shortCode}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("Failed to seed supplier: %v", err)
	}
	return s
}

func SeedProductionUnit(t *testing.T, db *gorm.DB, id, shortCode string, primary bool) *entity.ProductionUnit {
	t.Helper()
	u := &entity.ProductionUnit{ID: id, Name: "Unit " + id, ShortCode: shortCode, IsPrimary: primary}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("Failed to seed production unit: %v", err)
	}
	return u
}

// SeedCostElement creates an active catalogue entry. A nil defaultRate leaves
// the element without a default.
func SeedCostElement(t *testing.T, db *gorm.DB, id string, defaultRate *float64) *entity.CostElement {
	t.Helper()
	el := &entity.CostElement{ID: id, Name: id, UnitOfMeasure: "unit", DefaultRate: defaultRate, IsActive: true}
	if err := db.Create(el).Error; err != nil {
		t.Fatalf("Failed to seed cost element: %v", err)
	}
	return el
}

// SeedBatchCode inserts a bare batch row carrying code, bypassing the
// allocator. Used to simulate drift and collisions.
func SeedBatchCode(t *testing.T, db *gorm.DB, code, seedCode, materialID string) *entity.Batch {
	t.Helper()
	b := &entity.Batch{
		ID:              uuid.New().String(),
		LineageCode:     code,
		SeedLineageCode: seedCode,
		MaterialID:      materialID,
		OilType:         "seeded",
		PreDryQty:       1,
		PostDryQty:      1,
		ProductionDate:  time.Now(),
		CreatedBy:       "seed",
	}
	if err := db.Omit("CostElements", "Byproducts").Create(b).Error; err != nil {
		t.Fatalf("Failed to seed batch: %v", err)
	}
	return b
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
