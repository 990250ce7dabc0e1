package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/mna11/ReadMe3D/internal/adapters/handler/http"
	"github.com/mna11/ReadMe3D/internal/adapters/metrics"
	"github.com/mna11/ReadMe3D/internal/adapters/repository"
	"github.com/mna11/ReadMe3D/internal/config"
	"github.com/mna11/ReadMe3D/internal/core/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	_ = godotenv.Load("../../.env")

	db := config.DB{
		User:     getEnv("DB_USER", "readme3d"),
		Password: getEnv("DB_PASSWORD", "secret"),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		Name:     getEnv("DB_NAME", "readme3d_test"),
	}

	conn, err := sqlx.Connect("pgx", db.DSN())
	if err != nil {
		t.Skipf("Skipping end to end test (Postgres down): %v", err)
	}
	return conn
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestEndToEnd_SnapshotToCity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	repo := repository.NewPostgresSnapshotRepository(db)
	require.NoError(t, repo.EnsureSchema(ctx))
	_, err := db.Exec("TRUNCATE TABLE activity_snapshots CASCADE")
	require.NoError(t, err, "Failed to truncate snapshots table")

	renderer, err := newRenderer(config.Render{WindowSize: 7, Seed: 7, HeightFormula: "linear", PNGScale: 1})
	require.NoError(t, err)

	m := metrics.NewMetrics()
	svc := services.NewCityService(repo, repo, renderer, services.CityOptions{Recorder: m})
	tokens := services.NewTokenService("e2e-secret", "readme3d", time.Hour)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		CityHandler:     adapterHTTP.NewCityHandler(svc),
		SnapshotHandler: adapterHTTP.NewSnapshotHandler(svc),
		TokenService:    tokens,
		Metrics:         m,
		DB:              db,
		StartTime:       time.Now(),
	})

	token, err := tokens.GenerateToken("e2e-tester", services.ScopeIngest)
	require.NoError(t, err)

	days := make([]string, 0, 10)
	start := time.Date(2026, time.October, 8, 0, 0, 0, 0, time.UTC)
	counts := []int{5, 5, 5, 0, 3, 0, 4, 4, 0, 12}
	for i, c := range counts {
		days = append(days, fmt.Sprintf(`{"date":"%s","count":%d}`, start.AddDate(0, 0, i).Format("2006-01-02"), c))
	}
	payload := fmt.Sprintf(`{"username":"e2e-city","total":38,"days":[%s]}`, strings.Join(days, ","))

	t.Run("1. Health reports the database", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"connected"`)
	})

	t.Run("2. Unknown user", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cities/e2e-city", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("3. Push Snapshot", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/snapshots", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.EqualValues(t, 10, resp["days"])
	})

	t.Run("4. Render City", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cities/e2e-city", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
		assert.Equal(t, "38", w.Header().Get("X-City-Total"))
		assert.Equal(t, "12", w.Header().Get("X-City-Today"))
		assert.Contains(t, w.Body.String(), "TODAY: ")
	})
}
