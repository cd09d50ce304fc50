package handler

import (
	"github.com/gin-gonic/gin"
)

// Result is what every api handler returns; Wrapper renders it as json
type Result struct {
	Status int
	Body   any
}

// Error is the body returned on failures
type Error struct {
	Message string `json:"error"`
}

// Success is the body returned by operations that have nothing else to say
type Success struct {
	Success bool `json:"success"`
}

// Wrapper adapts a Result returning handler into a gin.HandlerFunc
func Wrapper(h func(ctx *gin.Context) Result) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		r := h(ctx)
		if r.Body == nil {
			ctx.Status(r.Status)
			return
		}
		ctx.JSON(r.Status, r.Body)
	}
}
