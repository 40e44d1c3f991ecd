package v3

import (
	"github.com/gin-gonic/gin"

	"github.com/dreamingspires/mat-dp-pipeline/internal/store"
)

// Handler V3 API 处理器
type Handler struct {
	store *store.Store
}

// NewHandler 创建 V3 API 处理器
func NewHandler(store *store.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册 V3 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 运行记录
	router.GET("/runs", h.ListRuns)
	router.GET("/runs/:id", h.GetRun)

	// 结果查询
	router.GET("/runs/:id/paths", h.GetRunPaths)
	router.GET("/runs/:id/years", h.GetRunYears)
	router.GET("/runs/:id/indicators", h.GetRunIndicators)
	router.GET("/runs/:id/resources", h.QueryResources)
	router.GET("/runs/:id/emissions", h.QueryEmissions)
	router.GET("/runs/:id/tech-meta", h.GetRunTechMeta)
	router.GET("/runs/:id/issues", h.GetRunIssues)
}
