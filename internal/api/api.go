package api

import (
	"context"
	"net/http"

	authHandler "crm-server/internal/auth/handler"
	authProcessor "crm-server/internal/auth/processor"
	campaignHandler "crm-server/internal/campaign/handler"
	"crm-server/internal/campaign/lifecycle"
	dispatchHandler "crm-server/internal/dispatch/handler"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type API struct {
	router          *gin.RouterGroup
	authHandler     authHandler.Handler
	campaignHandler campaignHandler.Handler
	dispatchHandler dispatchHandler.Handler
	db              Pinger
}

func New(
	router *gin.RouterGroup,
	authHandler authHandler.Handler,
	campaignHandler campaignHandler.Handler,
	dispatchHandler dispatchHandler.Handler,
	db Pinger,
) API {
	return API{
		router:          router,
		authHandler:     authHandler,
		campaignHandler: campaignHandler,
		dispatchHandler: dispatchHandler,
		db:              db,
	}
}

func (a *API) RegisterRoutes() {
	a.Health()
	apiGroup := a.router.Group("/api", a.authHandler.HandleJWTMiddleware)

	dispatchGroup := apiGroup.Group("/dispatch",
		authHandler.RequireRole(authProcessor.RoleService, authProcessor.RoleOperator))
	{
		dispatchGroup.POST("/tick", a.dispatchHandler.HandleTick)
	}

	campaignGroup := apiGroup.Group("/campaigns", authHandler.RequireRole(authProcessor.RoleOperator))
	{
		campaignGroup.POST("/prepare", a.campaignHandler.HandlePrepareCampaign)
		campaignGroup.POST("", a.campaignHandler.HandleCreateCampaign)
		campaignGroup.GET("", a.campaignHandler.HandleListCampaigns)
		campaignGroup.GET("/:campaign_id", a.campaignHandler.HandleGetCampaign)
		campaignGroup.GET("/:campaign_id/recipients", a.campaignHandler.HandleListRecipients)
		for _, action := range lifecycle.OperatorActions() {
			campaignGroup.POST("/:campaign_id/"+action, a.campaignHandler.HandleCampaignEvent(action))
		}
		campaignGroup.POST("/:campaign_id/duplicate", a.campaignHandler.HandleDuplicateCampaign)
	}
}

func (a *API) Health() {
	a.router.GET("/health", func(c *gin.Context) {
		if a.db != nil {
			if err := a.db.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"message": "database unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
}
