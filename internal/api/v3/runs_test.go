package v3

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/dreamingspires/mat-dp-pipeline/internal/model"
	"github.com/dreamingspires/mat-dp-pipeline/internal/pipeline"
	"github.com/dreamingspires/mat-dp-pipeline/internal/store"
)

var hydro = model.TechKey{Category: "Power plant", Specific: "Hydro"}

func testRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.New(filepath.Join(t.TempDir(), "matdp.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	leaf, err := model.NewLeafNode("France", model.NodeData{}, model.Targets{hydro: {2020: 10}})
	if err != nil {
		t.Fatalf("leaf: %v", err)
	}
	root, err := model.NewInternalNode("World", model.NodeData{
		Intensities: model.Intensities{hydro: {"Steel": 2}},
		Indicators:  model.Indicators{"Steel": {"CO2": 10}},
		TechMeta: model.TechMetaTable{
			hydro: {MaterialUnit: "t", ProductionUnit: "MW"},
		},
	}, map[string]*model.Node{"France": leaf})
	if err != nil {
		t.Fatalf("internal: %v", err)
	}
	index, err := pipeline.Run(root, pipeline.Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	runID, err := st.SaveRun(index, "api-test")
	if err != nil {
		t.Fatalf("save run: %v", err)
	}

	router := gin.New()
	NewHandler(st).RegisterRoutes(router.Group("/api"))
	return router, runID
}

func get(t *testing.T, router *gin.Engine, url string, out any) int {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	router.ServeHTTP(w, req)
	if out != nil && w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return w.Code
}

func TestGetStatus(t *testing.T) {
	router, runID := testRouter(t)

	var resp StatusResponse
	if code := get(t, router, "/api/status", &resp); code != http.StatusOK {
		t.Fatalf("status code=%d", code)
	}
	if !resp.Initialized || resp.RunCount != 1 || resp.LatestRunID != runID {
		t.Fatalf("resp=%+v", resp)
	}
}

func TestListAndGetRun(t *testing.T) {
	router, runID := testRouter(t)

	var runs []store.RunSummary
	if code := get(t, router, "/api/runs", &runs); code != http.StatusOK {
		t.Fatalf("list code=%d", code)
	}
	if len(runs) != 1 || runs[0].RunID != runID {
		t.Fatalf("runs=%v", runs)
	}

	var summary store.RunSummary
	if code := get(t, router, "/api/runs/"+runID, &summary); code != http.StatusOK {
		t.Fatalf("get code=%d", code)
	}
	if summary.Source != "api-test" || summary.LeafCount != 1 {
		t.Fatalf("summary=%+v", summary)
	}

	if code := get(t, router, "/api/runs/r_missing", nil); code != http.StatusNotFound {
		t.Fatalf("missing run code=%d, want 404", code)
	}
}

func TestGetRunPathsAndYears(t *testing.T) {
	router, runID := testRouter(t)

	var paths struct {
		Paths []string `json:"paths"`
	}
	if code := get(t, router, "/api/runs/"+runID+"/paths", &paths); code != http.StatusOK {
		t.Fatalf("paths code=%d", code)
	}
	if len(paths.Paths) != 1 || paths.Paths[0] != "World/France" {
		t.Fatalf("paths=%v", paths.Paths)
	}

	var years struct {
		Years []int `json:"years"`
	}
	if code := get(t, router, "/api/runs/"+runID+"/years", &years); code != http.StatusOK {
		t.Fatalf("years code=%d", code)
	}
	if len(years.Years) != 1 || years.Years[0] != 2020 {
		t.Fatalf("years=%v", years.Years)
	}

	var indicators struct {
		Indicators []string `json:"indicators"`
	}
	if code := get(t, router, "/api/runs/"+runID+"/indicators", &indicators); code != http.StatusOK {
		t.Fatalf("indicators code=%d", code)
	}
	if len(indicators.Indicators) != 1 || indicators.Indicators[0] != "CO2" {
		t.Fatalf("indicators=%v", indicators.Indicators)
	}
}

func TestQueryResourcesAndEmissions(t *testing.T) {
	router, runID := testRouter(t)

	var resources struct {
		Rows []store.ValueRow `json:"rows"`
	}
	if code := get(t, router, "/api/runs/"+runID+"/resources?path=World", &resources); code != http.StatusOK {
		t.Fatalf("resources code=%d", code)
	}
	if len(resources.Rows) != 1 || resources.Rows[0].Value != 20 {
		t.Fatalf("rows=%v", resources.Rows)
	}

	var emissions struct {
		Rows []store.ValueRow `json:"rows"`
	}
	url := "/api/runs/" + runID + "/emissions?path=World%2FFrance&indicator=CO2"
	if code := get(t, router, url, &emissions); code != http.StatusOK {
		t.Fatalf("emissions code=%d", code)
	}
	if len(emissions.Rows) != 1 || emissions.Rows[0].Value != 200 {
		t.Fatalf("rows=%v", emissions.Rows)
	}

	if code := get(t, router, "/api/runs/"+runID+"/resources", nil); code != http.StatusBadRequest {
		t.Fatalf("missing path code=%d, want 400", code)
	}
	if code := get(t, router, "/api/runs/"+runID+"/emissions?path=World", nil); code != http.StatusBadRequest {
		t.Fatalf("missing indicator code=%d, want 400", code)
	}
}

func TestGetRunTechMeta(t *testing.T) {
	router, runID := testRouter(t)

	var meta struct {
		Techs []TechMetaRow `json:"techs"`
	}
	if code := get(t, router, "/api/runs/"+runID+"/tech-meta", &meta); code != http.StatusOK {
		t.Fatalf("tech-meta code=%d", code)
	}
	if len(meta.Techs) != 1 || meta.Techs[0].Specific != "Hydro" || meta.Techs[0].MaterialUnit != "t" {
		t.Fatalf("techs=%v", meta.Techs)
	}
}
