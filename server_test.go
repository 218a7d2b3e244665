package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"biorel/config"
	"biorel/graph"
	"biorel/models"
	"biorel/providers"
	"biorel/services"
)

type staticProteome []models.Protein

func (p staticProteome) Stream(_ context.Context, taxonID int, fn func(models.Protein) error) error {
	for _, protein := range p {
		protein.TaxonID = taxonID
		if err := fn(protein); err != nil {
			return err
		}
	}
	return nil
}

func setupTestRouter(t *testing.T, cfg *config.Config) (*gin.Engine, *gorm.DB, *[]string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, migrate(db))

	source := services.NewProteinSource(db, staticProteome{
		{Accession: "P04637", Mnemonic: "P53_HUMAN"},
		{Accession: "P38398", Mnemonic: "BRCA1_HUMAN"},
	}, 9606, zap.NewNop())
	m, err := services.NewNamespaceManager[models.Protein](db, source, zap.NewNop())
	require.NoError(t, err)

	var triggered []string
	trigger := func(source string) error {
		if source != "intact" {
			return errUnknownSource
		}
		triggered = append(triggered, source)
		return nil
	}
	return newRouter(cfg, db, m, trigger, zap.NewNop()), db, &triggered
}

func do(router http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNamespaceRoutes(t *testing.T) {
	router, _, _ := setupTestRouter(t, &config.Config{})

	w := do(router, http.MethodGet, "/namespace", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodPost, "/namespace/upload", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var body struct {
		Created bool `json:"created"`
		Added   int  `json:"added"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Created)
	assert.Equal(t, 2, body.Added)

	w = do(router, http.MethodPost, "/namespace/upload?update=true", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/namespace", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ns models.Namespace
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ns))
	assert.Equal(t, "UNIPROT", ns.Keyword)

	w = do(router, http.MethodGet, "/namespace/belns", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasSuffix(w.Body.String(), "[Values]\nP04637|A\nP38398|A\n"))

	w = do(router, http.MethodDelete, "/namespace", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(router, http.MethodDelete, "/namespace", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIngestRoute(t *testing.T) {
	router, _, triggered := setupTestRouter(t, &config.Config{})

	w := do(router, http.MethodPost, "/ingest/intact", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"intact"}, *triggered)

	w = do(router, http.MethodPost, "/ingest/reactome", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEdgeRoutes(t *testing.T) {
	router, db, _ := setupTestRouter(t, &config.Config{})
	ctx := context.Background()

	sink := graph.NewGormSink(db, "intact", "run-1")
	p53 := graph.Protein("uniprot", "P04637", "P53_HUMAN")
	brca1 := graph.Protein("uniprot", "P38398", "BRCA1_HUMAN")
	require.NoError(t, graph.AddAssociation(ctx, sink, p53, brca1, "1", "From IntAct"))
	require.NoError(t, graph.AddIncreases(ctx, sink, p53, brca1, "2", "From IntAct"))

	w := do(router, http.MethodGet, "/edges?relation=increases", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var edges []models.Edge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &edges))
	require.Len(t, edges, 1)
	assert.Equal(t, "2", edges[0].Citation)

	w = do(router, http.MethodGet, "/edges?limit=1", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &edges))
	assert.Len(t, edges, 1)

	w = do(router, http.MethodGet, "/edges?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPIKey(t *testing.T) {
	router, _, _ := setupTestRouter(t, &config.Config{APISecretKey: "s3cret"})

	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodGet, "/edges", nil).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/edges", map[string]string{"X-API-KEY": "s3cret"}).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/healthz", nil).Code)
}

type namedProvider struct {
	providers.Provider
	name string
}

func (p namedProvider) Name() string { return p.name }

func TestIngestTriggerRunsUnderServerContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	jobs := newBackgroundJobs(ctx)

	started := make(chan struct{})
	var sawCancel, finished atomic.Bool
	run := func(ctx context.Context, p providers.Provider) error {
		close(started)
		<-ctx.Done()
		sawCancel.Store(errors.Is(ctx.Err(), context.Canceled))
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
		return ctx.Err()
	}
	lookup := func(name string) (providers.Provider, error) {
		return namedProvider{name: name}, nil
	}
	trigger := newIngestTrigger(jobs, map[string]bool{"intact": true}, lookup, run)

	assert.ErrorIs(t, trigger("signor"), errUnknownSource)
	require.NoError(t, trigger("intact"))

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("triggered ingestion never started")
	}
	assert.False(t, finished.Load())

	cancel()
	jobs.Wait()
	assert.True(t, sawCancel.Load())
	assert.True(t, finished.Load())
}

func TestBackgroundJobsWaitForEveryJob(t *testing.T) {
	jobs := newBackgroundJobs(context.Background())
	var done atomic.Int32
	for i := 0; i < 5; i++ {
		jobs.Go(func(context.Context) {
			time.Sleep(10 * time.Millisecond)
			done.Add(1)
		})
	}
	jobs.Wait()
	assert.EqualValues(t, 5, done.Load())
}
