package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	seatusecases "github.com/seatwise-io/seatwise/internal/application/seat/usecases"
	"github.com/seatwise-io/seatwise/internal/interfaces/http/middleware"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
	"github.com/seatwise-io/seatwise/internal/shared/utils"
)

type SeatHandler struct {
	assignSeatUseCase    *seatusecases.AssignSeatUseCase
	revokeSeatUseCase    *seatusecases.RevokeSeatUseCase
	getSeatLimitsUseCase *seatusecases.GetSeatLimitsUseCase
	listSeatsUseCase     *seatusecases.ListSeatsUseCase
	logger               logger.Interface
}

func NewSeatHandler(
	assignSeatUseCase *seatusecases.AssignSeatUseCase,
	revokeSeatUseCase *seatusecases.RevokeSeatUseCase,
	getSeatLimitsUseCase *seatusecases.GetSeatLimitsUseCase,
	listSeatsUseCase *seatusecases.ListSeatsUseCase,
	logger logger.Interface,
) *SeatHandler {
	return &SeatHandler{
		assignSeatUseCase:    assignSeatUseCase,
		revokeSeatUseCase:    revokeSeatUseCase,
		getSeatLimitsUseCase: getSeatLimitsUseCase,
		listSeatsUseCase:     listSeatsUseCase,
		logger:               logger,
	}
}

type assignSeatRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// AssignSeat handles POST /api/v1/subscriptions/:sid/seats
func (h *SeatHandler) AssignSeat(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req assignSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request format: "+err.Error())
		return
	}

	result, err := h.assignSeatUseCase.Execute(c.Request.Context(), seatusecases.AssignSeatCommand{
		SubscriptionSID: c.Param("sid"),
		TargetUserID:    req.UserID,
		CallerUserID:    callerID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if result.AlreadyAssigned {
		utils.SuccessResponse(c, http.StatusOK, "seat already assigned", result)
		return
	}
	utils.CreatedResponse(c, result, "seat assigned successfully")
}

// RevokeSeat handles DELETE /api/v1/subscriptions/:sid/seats/:user_id
func (h *SeatHandler) RevokeSeat(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil || targetID == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid user ID")
		return
	}

	err = h.revokeSeatUseCase.Execute(c.Request.Context(), seatusecases.RevokeSeatCommand{
		SubscriptionSID: c.Param("sid"),
		TargetUserID:    uint(targetID),
		CallerUserID:    callerID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

// GetSeatLimits handles GET /api/v1/subscriptions/:sid/seats/limits
func (h *SeatHandler) GetSeatLimits(c *gin.Context) {
	limits, err := h.getSeatLimitsUseCase.Execute(c.Request.Context(), seatusecases.GetSeatLimitsQuery{
		SubscriptionSID: c.Param("sid"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", limits)
}

// ListSeats handles GET /api/v1/subscriptions/:sid/seats
func (h *SeatHandler) ListSeats(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.listSeatsUseCase.Execute(c.Request.Context(), seatusecases.ListSeatsQuery{
		SubscriptionSID: c.Param("sid"),
		Page:            page,
		PageSize:        pageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Seats, result.Total, page, pageSize)
}
