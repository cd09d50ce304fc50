package healthcheck

import (
	"github.com/gin-gonic/gin"
	"github.com/ribgsilva/note-sync/platform/web/handler"
	"net/http"
)

// Get godoc
// @Summary Healthcheck
// @Description Reports that the service is up; clients use it as a connectivity probe
// @Tags Healthcheck
// @Produce json
// @Success 200 {object} handler.Success
// @Router /v1/healthcheck [get]
func Get(_ *gin.Context) handler.Result {
	return handler.Result{
		Status: http.StatusOK,
		Body:   handler.Success{Success: true},
	}
}
