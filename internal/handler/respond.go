package handler

import "github.com/gin-gonic/gin"

// Error kinds surfaced to clients alongside the message.
const (
	kindValidation   = "validation"
	kindUnauthorized = "unauthorized"
	kindForbidden    = "forbidden"
	kindNotFound     = "not_found"
	kindConflict     = "conflict"
	kindUpstream     = "upstream"
	kindInternal     = "internal"
)

func respondErr(c *gin.Context, status int, kind, msg string) {
	c.JSON(status, gin.H{"error": msg, "kind": kind})
}
