package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Drafter5000/Drafter5000-sub000/internal/domain/billing"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/constants"
	apperrors "github.com/Drafter5000/Drafter5000-sub000/internal/shared/errors"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/utils"
)

// respondError maps domain sentinels to HTTP status codes before falling
// back to the generic AppError translation.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, billing.ErrPlanNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "plan not found")
	case errors.Is(err, billing.ErrProfileNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "billing profile not found")
	case errors.Is(err, billing.ErrPlanIDExists):
		utils.ErrorResponse(c, http.StatusConflict, "plan ID already exists")
	case errors.Is(err, apperrors.ErrPlanNotPurchasable):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrPlanHasNoPrice):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrNoProviderCustomer):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, billing.ErrUsageLimitExceeded):
		utils.ErrorResponse(c, http.StatusTooManyRequests, err.Error())
	default:
		utils.ErrorResponseWithError(c, err)
	}
}

// currentUserID reads the authenticated user ID set by the auth middleware.
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
