package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	entitlementusecases "github.com/seatwise-io/seatwise/internal/application/entitlement/usecases"
	"github.com/seatwise-io/seatwise/internal/interfaces/http/middleware"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
	"github.com/seatwise-io/seatwise/internal/shared/utils"
)

type EntitlementHandler struct {
	listEntitlementsUseCase *entitlementusecases.ListEntitlementsUseCase
	logger                  logger.Interface
}

func NewEntitlementHandler(listEntitlementsUseCase *entitlementusecases.ListEntitlementsUseCase, logger logger.Interface) *EntitlementHandler {
	return &EntitlementHandler{
		listEntitlementsUseCase: listEntitlementsUseCase,
		logger:                  logger,
	}
}

// ListMine handles GET /api/v1/entitlements. It always returns the caller's
// own entitlements; there is no cross-user lookup on this route.
func (h *EntitlementHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	entitlements, err := h.listEntitlementsUseCase.Execute(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", entitlements)
}
