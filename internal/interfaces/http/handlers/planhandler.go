package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/dto"
	"github.com/Drafter5000/Drafter5000-sub000/internal/application/billing/usecases"
	apperrors "github.com/Drafter5000/Drafter5000-sub000/internal/shared/errors"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/logger"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/utils"
)

type PlanHandler struct {
	createPlanUC     createPlanUseCase
	updatePlanUC     updatePlanUseCase
	deactivatePlanUC deactivatePlanUseCase
	getPlanUC        getPlanUseCase
	listPlansUC      listPlansUseCase
	getPublicPlansUC getPublicPlansUseCase
	syncCatalogUC    syncCatalogUseCase
	logger           logger.Interface
}

func NewPlanHandler(
	createPlanUC createPlanUseCase,
	updatePlanUC updatePlanUseCase,
	deactivatePlanUC deactivatePlanUseCase,
	getPlanUC getPlanUseCase,
	listPlansUC listPlansUseCase,
	getPublicPlansUC getPublicPlansUseCase,
	syncCatalogUC syncCatalogUseCase,
	logger logger.Interface,
) *PlanHandler {
	return &PlanHandler{
		createPlanUC:     createPlanUC,
		updatePlanUC:     updatePlanUC,
		deactivatePlanUC: deactivatePlanUC,
		getPlanUC:        getPlanUC,
		listPlansUC:      listPlansUC,
		getPublicPlansUC: getPublicPlansUC,
		syncCatalogUC:    syncCatalogUC,
		logger:           logger,
	}
}

type CreatePlanRequest struct {
	PlanID          string             `json:"plan_id" binding:"required" validate:"required,max=50"`
	Name            string             `json:"name" binding:"required" validate:"required,max=100"`
	Description     string             `json:"description"`
	PriceMinorUnits int64              `json:"price_minor_units" validate:"gte=0"`
	Currency        string             `json:"currency" validate:"omitempty,len=3"`
	IncludedQuota   int                `json:"included_quota" validate:"gte=0"`
	IsVisible       bool               `json:"is_visible"`
	IsHighlighted   bool               `json:"is_highlighted"`
	SortOrder       int                `json:"sort_order"`
	CTAText         string             `json:"cta_text"`
	CTABehavior     string             `json:"cta_behavior" validate:"omitempty,oneof=checkout contact free-signup"`
	Features        []dto.FeatureInput `json:"features"`
}

type UpdatePlanRequest struct {
	Name            *string            `json:"name"`
	Description     *string            `json:"description"`
	PriceMinorUnits *int64             `json:"price_minor_units"`
	IncludedQuota   *int               `json:"included_quota"`
	IsVisible       *bool              `json:"is_visible"`
	IsHighlighted   *bool              `json:"is_highlighted"`
	SortOrder       *int               `json:"sort_order"`
	CTAText         *string            `json:"cta_text"`
	CTABehavior     *string            `json:"cta_behavior"`
	Features        []dto.FeatureInput `json:"features"`
	SyncToStripe    bool               `json:"sync_to_stripe"`
}

func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create plan", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		h.logger.Warnw("create plan request failed validation", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.CreatePlanCommand{
		PlanID:          req.PlanID,
		Name:            req.Name,
		Description:     req.Description,
		PriceMinorUnits: req.PriceMinorUnits,
		Currency:        req.Currency,
		IncludedQuota:   req.IncludedQuota,
		IsVisible:       req.IsVisible,
		IsHighlighted:   req.IsHighlighted,
		SortOrder:       req.SortOrder,
		CTAText:         req.CTAText,
		CTABehavior:     req.CTABehavior,
		Features:        req.Features,
	}

	result, err := h.createPlanUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Plan created successfully")
}

func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	planID, err := parsePlanID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update plan",
			"plan_id", planID,
			"error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.UpdatePlanCommand{
		PlanID:          planID,
		Name:            req.Name,
		Description:     req.Description,
		PriceMinorUnits: req.PriceMinorUnits,
		IncludedQuota:   req.IncludedQuota,
		IsVisible:       req.IsVisible,
		IsHighlighted:   req.IsHighlighted,
		SortOrder:       req.SortOrder,
		CTAText:         req.CTAText,
		CTABehavior:     req.CTABehavior,
		Features:        req.Features,
	}

	result, err := h.updatePlanUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.SyncToStripe {
		if _, err := h.syncCatalogUC.ExecuteOne(c.Request.Context(), planID); err != nil {
			// The local update succeeded; report the sync failure so the
			// operator retries the sync rather than the whole edit.
			h.logger.Errorw("plan updated but provider sync failed",
				"plan_id", planID,
				"error", err)
			respondError(c, err)
			return
		}
	}

	utils.SuccessResponse(c, http.StatusOK, "Plan updated successfully", result)
}

func (h *PlanHandler) DeactivatePlan(c *gin.Context) {
	planID, err := parsePlanID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.DeactivatePlanCommand{PlanID: planID}
	if err := h.deactivatePlanUC.Execute(c.Request.Context(), cmd); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Plan deactivated successfully", nil)
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	planID, err := parsePlanID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getPlanUC.Execute(c.Request.Context(), planID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *PlanHandler) ListPlans(c *gin.Context) {
	cmd, err := parseListPlansQuery(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.listPlansUC.Execute(c.Request.Context(), *cmd)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *PlanHandler) GetPublicPlans(c *gin.Context) {
	result, err := h.getPublicPlansUC.Execute(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// SyncCatalog pushes every active paid plan to the payment provider.
func (h *PlanHandler) SyncCatalog(c *gin.Context) {
	report, err := h.syncCatalogUC.Execute(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Catalog sync finished", report)
}

// SyncPlan pushes a single plan to the payment provider.
func (h *PlanHandler) SyncPlan(c *gin.Context) {
	planID, err := parsePlanID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.syncCatalogUC.ExecuteOne(c.Request.Context(), planID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Plan sync finished", result)
}

func parsePlanID(c *gin.Context) (string, error) {
	planID := c.Param("id")
	if planID == "" {
		return "", apperrors.NewValidationError("plan ID is required")
	}
	return planID, nil
}

func parseListPlansQuery(c *gin.Context) (*usecases.ListPlansCommand, error) {
	cmd := &usecases.ListPlansCommand{}

	if v := c.Query("is_active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid is_active value")
		}
		cmd.IsActive = &b
	}

	if v := c.Query("is_visible"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid is_visible value")
		}
		cmd.IsVisible = &b
	}

	if v := c.Query("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return nil, apperrors.NewValidationError("invalid page value")
		}
		cmd.Page = page
	}

	if v := c.Query("page_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 {
			return nil, apperrors.NewValidationError("invalid page_size value")
		}
		cmd.PageSize = size
	}

	cmd.SortBy = c.Query("sort_by")
	cmd.SortDesc = c.Query("sort_desc") == "true"

	return cmd, nil
}
