package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	webhookusecases "github.com/seatwise-io/seatwise/internal/application/webhook/usecases"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
	"github.com/seatwise-io/seatwise/internal/shared/utils"
)

// maxWebhookBody caps how much of a delivery we buffer. Providers send
// payloads well under this.
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	handleWebhookUseCase *webhookusecases.HandleWebhookUseCase
	logger               logger.Interface
}

func NewWebhookHandler(handleWebhookUseCase *webhookusecases.HandleWebhookUseCase, logger logger.Interface) *WebhookHandler {
	return &WebhookHandler{
		handleWebhookUseCase: handleWebhookUseCase,
		logger:               logger,
	}
}

// Receive handles POST /webhooks/:provider. The raw body is read before any
// parsing because signature schemes are computed over the exact bytes sent.
func (h *WebhookHandler) Receive(c *gin.Context) {
	providerName := c.Param("provider")

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.logger.Warnw("failed to read webhook body", "provider", providerName, "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "failed to read request body")
		return
	}

	result, err := h.handleWebhookUseCase.Execute(c.Request.Context(), providerName, c.Request, body)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if result.Duplicate {
		utils.SuccessResponse(c, http.StatusOK, "event already processed", result)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "event accepted", result)
}
