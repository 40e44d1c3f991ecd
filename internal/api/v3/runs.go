package v3

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dreamingspires/mat-dp-pipeline/internal/model"
	"github.com/dreamingspires/mat-dp-pipeline/internal/store"
)

// ListRuns 列出所有运行记录
// GET /api/runs
func (h *Handler) ListRuns(c *gin.Context) {
	runs, err := h.store.ListRuns()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}
	c.JSON(http.StatusOK, runs)
}

// GetRun 取单次运行摘要
// GET /api/runs/:id
func (h *Handler) GetRun(c *gin.Context) {
	summary, err := h.store.GetRun(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetRunPaths 某次运行的叶子路径列表
// GET /api/runs/:id/paths
func (h *Handler) GetRunPaths(c *gin.Context) {
	paths, err := h.store.RunPaths(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if paths == nil {
		paths = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"paths": paths})
}

// GetRunYears 某次运行覆盖的年份列表
// GET /api/runs/:id/years
func (h *Handler) GetRunYears(c *gin.Context) {
	years, err := h.store.RunYears(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if years == nil {
		years = []int{}
	}
	c.JSON(http.StatusOK, gin.H{"years": years})
}

// GetRunIndicators 某次运行的指标名集合
// GET /api/runs/:id/indicators
func (h *Handler) GetRunIndicators(c *gin.Context) {
	summary, err := h.store.GetRun(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"indicators": summary.Indicators})
}

// QueryResources 查询某路径（含子路径）的所需资源
// GET /api/runs/:id/resources?path=Europe/France
func (h *Handler) QueryResources(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 path 参数"})
		return
	}
	rows, err := h.store.QueryResources(c.Param("id"), path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rows == nil {
		rows = []store.ValueRow{}
	}
	c.JSON(http.StatusOK, gin.H{"path": path, "rows": rows})
}

// QueryEmissions 查询某路径（含子路径）某指标的排放
// GET /api/runs/:id/emissions?path=Europe/France&indicator=CO2
func (h *Handler) QueryEmissions(c *gin.Context) {
	path := c.Query("path")
	indicator := c.Query("indicator")
	if path == "" || indicator == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 path 或 indicator 参数"})
		return
	}
	rows, err := h.store.QueryEmissions(c.Param("id"), path, indicator)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rows == nil {
		rows = []store.ValueRow{}
	}
	c.JSON(http.StatusOK, gin.H{"path": path, "indicator": indicator, "rows": rows})
}

// TechMetaRow 技术元数据行
type TechMetaRow struct {
	Category       string `json:"category"`
	Specific       string `json:"specific"`
	Description    string `json:"description"`
	MaterialUnit   string `json:"materialUnit"`
	ProductionUnit string `json:"productionUnit"`
}

// GetRunTechMeta 某次运行的技术元数据
// GET /api/runs/:id/tech-meta
func (h *Handler) GetRunTechMeta(c *gin.Context) {
	meta, err := h.store.RunTechMeta(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	rows := make([]TechMetaRow, 0, len(meta))
	for _, tech := range model.SortedTechKeys(meta) {
		m := meta[tech]
		rows = append(rows, TechMetaRow{
			Category:       tech.Category,
			Specific:       tech.Specific,
			Description:    m.Description,
			MaterialUnit:   m.MaterialUnit,
			ProductionUnit: m.ProductionUnit,
		})
	}
	c.JSON(http.StatusOK, gin.H{"techs": rows})
}

// GetRunIssues 某次运行收集到的校验问题
// GET /api/runs/:id/issues
func (h *Handler) GetRunIssues(c *gin.Context) {
	issues, err := h.store.RunIssues(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if issues == nil {
		issues = []model.Issue{}
	}
	c.JSON(http.StatusOK, gin.H{"issues": issues})
}
