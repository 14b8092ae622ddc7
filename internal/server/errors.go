package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/boletos-tracker/internal/common"
)

const msgBillNotFound = "Boleto não encontrado."

// writeError maps service errors onto HTTP responses. Store errors keep their
// underlying message and are logged here.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "bill not found", "message": msgBillNotFound})
	case errors.Is(err, common.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		common.LoggerFromContext(c.Request.Context(), logger).Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
