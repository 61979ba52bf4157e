package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fatflowers/financeplus/pkg/response"
)

const healthTimeout = 2 * time.Second

// @Summary      Health check
// @Description  Returns service status and database reachability
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  handlers.RespOK
// @Router       /healthz [get]
func Healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, response.ErrorT(response.APIResponseCodeUnavailable, map[string]string{"status": "degraded", "database": err.Error()}))
				return
			}
		}
		c.JSON(http.StatusOK, response.OKT(map[string]string{"status": "ok"}))
	}
}

func RegisterHealthRoutes(r gin.IRouter, db *gorm.DB) {
	r.GET("/healthz", Healthz(db))
}
