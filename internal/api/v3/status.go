package v3

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized bool   `json:"initialized"` // 是否已有运行记录
	RunCount    int    `json:"runCount"`    // 运行记录总数
	LatestRunID string `json:"latestRunId"` // 最近一次运行 ID
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	runs, err := h.store.ListRuns()
	if err != nil {
		c.JSON(http.StatusOK, StatusResponse{
			Initialized: false,
		})
		return
	}

	resp := StatusResponse{
		Initialized: len(runs) > 0,
		RunCount:    len(runs),
	}
	if len(runs) > 0 {
		resp.LatestRunID = runs[0].RunID
	}
	c.JSON(http.StatusOK, resp)
}
