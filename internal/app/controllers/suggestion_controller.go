package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appauth "github.com/hivenest/communio/internal/app/auth"
	"github.com/hivenest/communio/internal/app/models"
	"github.com/hivenest/communio/internal/app/models/dto"
	"github.com/hivenest/communio/internal/app/services"
	"github.com/hivenest/communio/internal/pkg/helpers"
)

// SuggestionController handles event suggestion operations
type SuggestionController struct {
	suggestionService services.SuggestionService
}

// NewSuggestionController creates a new SuggestionController
func NewSuggestionController(suggestionService services.SuggestionService) *SuggestionController {
	return &SuggestionController{suggestionService: suggestionService}
}

func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name+" parameter").WithField(name)))
		return 0, false
	}
	return id, true
}

func principalOrAbort(ctx *gin.Context) (appauth.Principal, bool) {
	principal, ok := appauth.FromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return appauth.Principal{}, false
	}
	return principal, true
}

// Generate handles cached suggestion generation for a community
// @Summary Generate event suggestions
// @Description Returns the community's current suggestion batch, generating a new one when no cached batch exists. Seeds demonstration content into empty communities first.
// @Tags suggestions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param fresh query bool false "Bypass the cached batch and regenerate" default(false)
// @Success 200 {object} dto.APIResponse{data=dto.SuggestionBatchResponse} "Suggestion batch"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not a member of this community"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 503 {object} dto.ErrorResponse "Suggestion service unavailable"
// @Router /communities/{id}/suggestions/generate [post]
func (c *SuggestionController) Generate(ctx *gin.Context) {
	communityID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}

	forceFresh := helpers.ParseBoolParam(ctx, "fresh")

	batch, err := c.suggestionService.GetOrGenerate(ctx, communityID, principal, forceFresh)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(batch, "Suggestions retrieved successfully"))
}

// List handles retrieving a community's persisted suggestions
// @Summary List event suggestions
// @Description Retrieves the community's persisted suggestions ordered by expected engagement (descending) then suggested date (ascending)
// @Tags suggestions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param status query string false "Filter by status" Enums(PENDING, APPROVED, IMPLEMENTED, REJECTED, EXPIRED)
// @Param limit query int false "Maximum results (default: 20, max: 100)" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.SuggestionListResponse} "Suggestions"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not a member of this community"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Router /communities/{id}/suggestions [get]
func (c *SuggestionController) List(ctx *gin.Context) {
	communityID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}

	var status *models.SuggestionStatus
	if statusStr := ctx.Query("status"); statusStr != "" {
		s := models.SuggestionStatus(statusStr)
		status = &s
	}
	limit := helpers.ParseLimitParam(ctx)

	response, err := c.suggestionService.List(ctx, communityID, principal, status, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response, "Suggestions retrieved successfully"))
}

// Broadcast handles announcing a suggestion to the community
// @Summary Broadcast a suggestion
// @Description Announces the suggestion to all residents of its community. Does not change the suggestion's status. Owner only.
// @Tags suggestions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Suggestion ID"
// @Param request body dto.BroadcastRequest false "Broadcast options"
// @Success 200 {object} dto.APIResponse{data=dto.BroadcastResponse} "Broadcast sent"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Only the community owner may broadcast"
// @Failure 404 {object} dto.ErrorResponse "Suggestion not found"
// @Router /suggestions/{id}/broadcast [post]
func (c *SuggestionController) Broadcast(ctx *gin.Context) {
	suggestionID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}

	var req dto.BroadcastRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			respondBindingError(ctx, err)
			return
		}
	}

	response, err := c.suggestionService.Broadcast(ctx, suggestionID, principal, req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response, "Suggestion broadcast successfully"))
}

// Implement handles promoting a suggestion into a production event
// @Summary Implement a suggestion
// @Description Creates a production event from the suggestion and marks it IMPLEMENTED. Owner only.
// @Tags suggestions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Suggestion ID"
// @Param request body dto.ImplementRequest false "Schedule overrides"
// @Success 200 {object} dto.APIResponse{data=dto.ImplementResponse} "Suggestion implemented"
// @Failure 400 {object} dto.ErrorResponse "Suggestion status or schedule does not allow implementation"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Only the community owner may implement"
// @Failure 404 {object} dto.ErrorResponse "Suggestion not found"
// @Router /suggestions/{id}/implement [post]
func (c *SuggestionController) Implement(ctx *gin.Context) {
	suggestionID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}

	var req dto.ImplementRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			respondBindingError(ctx, err)
			return
		}
	}

	response, err := c.suggestionService.Implement(ctx, suggestionID, principal, req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response, "Suggestion implemented successfully"))
}

// Review handles a manual approve or reject decision
// @Summary Review a suggestion
// @Description Applies an APPROVED or REJECTED decision to a pending suggestion. Owner only.
// @Tags suggestions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Suggestion ID"
// @Param request body dto.ReviewRequest true "Review decision"
// @Success 200 {object} dto.APIResponse{data=models.Suggestion} "Suggestion reviewed"
// @Failure 400 {object} dto.ErrorResponse "Suggestion status does not allow review"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Only the community owner may review"
// @Failure 404 {object} dto.ErrorResponse "Suggestion not found"
// @Router /suggestions/{id}/review [post]
func (c *SuggestionController) Review(ctx *gin.Context) {
	suggestionID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}

	var req dto.ReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindingError(ctx, err)
		return
	}

	suggestion, err := c.suggestionService.Review(ctx, suggestionID, principal, req.Decision)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(suggestion, "Suggestion reviewed successfully"))
}
