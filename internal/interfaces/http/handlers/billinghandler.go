package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/usecases"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/constants"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/logger"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/utils"
)

type BillingHandler struct {
	processWebhookUC processWebhookUseCase
	createCheckoutUC createCheckoutUseCase
	createPortalUC   createPortalUseCase
	checkUsageUC     checkUsageUseCase
	logger           logger.Interface
}

func NewBillingHandler(
	processWebhookUC processWebhookUseCase,
	createCheckoutUC createCheckoutUseCase,
	createPortalUC createPortalUseCase,
	checkUsageUC checkUsageUseCase,
	logger logger.Interface,
) *BillingHandler {
	return &BillingHandler{
		processWebhookUC: processWebhookUC,
		createCheckoutUC: createCheckoutUC,
		createPortalUC:   createPortalUC,
		checkUsageUC:     checkUsageUC,
		logger:           logger,
	}
}

type CreateCheckoutRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

// HandleWebhook receives provider event deliveries. The raw body is passed
// through untouched; signature verification needs the exact bytes the
// provider signed.
func (h *BillingHandler) HandleWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		h.logger.Warnw("failed to read webhook body", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "failed to read request body")
		return
	}

	signature := c.GetHeader(constants.HeaderStripeSignature)
	if signature == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "missing signature header")
		return
	}

	cmd := usecases.ProcessWebhookCommand{
		Payload:   payload,
		Signature: signature,
	}

	if err := h.processWebhookUC.Execute(c.Request.Context(), cmd); err != nil {
		// A non-2xx response makes the provider redeliver, which is what
		// we want for transient failures.
		utils.ErrorResponseWithError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

func (h *BillingHandler) CreateCheckout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create checkout", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.CreateCheckoutCommand{
		UserID: userID,
		PlanID: req.PlanID,
	}

	result, err := h.createCheckoutUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Checkout session created", result)
}

func (h *BillingHandler) CreatePortal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	cmd := usecases.CreatePortalCommand{
		UserID: userID,
	}

	result, err := h.createPortalUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Portal session created", result)
}

func (h *BillingHandler) GetUsage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	cmd := usecases.CheckUsageCommand{
		UserID: userID,
	}

	result, err := h.checkUsageUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.OKResponse(c, result)
}
