package controller

import (
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/service"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/util"

	"github.com/gin-gonic/gin"
)

type BadgeController struct {
	BadgeService *service.BadgeService
}

func NewBadgeController(badgeService *service.BadgeService) *BadgeController {
	return &BadgeController{BadgeService: badgeService}
}

// @Summary All badge definitions
// @Tags badges
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/badges [get]
func (c *BadgeController) ListBadges(ctx *gin.Context) {
	badges, err := c.BadgeService.ListAll()
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, badges)
}

// @Summary Badges the caller has earned
// @Tags badges
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/badges/mine [get]
func (c *BadgeController) ListMyBadges(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	badges, err := c.BadgeService.ListUserBadges(user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, badges)
}
