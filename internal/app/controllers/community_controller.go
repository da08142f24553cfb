package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hivenest/communio/internal/app/models/dto"
	"github.com/hivenest/communio/internal/app/services"
)

// CommunityController handles community-scoped seeding operations
type CommunityController struct {
	communityService services.CommunityService
}

// NewCommunityController creates a new CommunityController
func NewCommunityController(communityService services.CommunityService) *CommunityController {
	return &CommunityController{communityService: communityService}
}

// GetSeedingInfo handles retrieving the community's seeding record
// @Summary Get seeding info
// @Description Returns the demonstration-content seeding record for the community, or an empty result when it has not been seeded
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} dto.APIResponse{data=dto.SeedingInfo} "Seeding record"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not a member of this community"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Router /communities/{id}/seeding [get]
func (c *CommunityController) GetSeedingInfo(ctx *gin.Context) {
	communityID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}

	info, err := c.communityService.GetSeedingInfo(ctx, communityID, principal)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if info == nil {
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Community has not been seeded"))
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(info, "Seeding record retrieved successfully"))
}

// ClearSeeding handles removing the community's demonstration content
// @Summary Clear seeded content
// @Description Removes the community's seeded demonstration content and its seeding record so the next access reseeds it. Owner only.
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} dto.APIResponse "Seeded content cleared"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Only the community owner may clear seeded content"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Router /communities/{id}/seeding [delete]
func (c *CommunityController) ClearSeeding(ctx *gin.Context) {
	communityID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	principal, ok := principalOrAbort(ctx)
	if !ok {
		return
	}

	if err := c.communityService.ClearSeeding(ctx, communityID, principal); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Seeded content cleared successfully"))
}
