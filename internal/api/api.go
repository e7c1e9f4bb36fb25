package api

import (
	adsHandler "ad-server/internal/ads/handler"
	affiliateHandler "ad-server/internal/affiliate/handler"
	fraudHandler "ad-server/internal/fraud/handler"
	paymentsHandler "ad-server/internal/payments/handler"
	"net/http"

	"github.com/gin-gonic/gin"
)

type API struct {
	router           *gin.RouterGroup
	adsHandler       adsHandler.Handler
	affiliateHandler affiliateHandler.Handler
	fraudHandler     fraudHandler.Handler
	paymentsHandler  paymentsHandler.Handler
}

func New(router *gin.RouterGroup, adsHandler adsHandler.Handler, affiliateHandler affiliateHandler.Handler, fraudHandler fraudHandler.Handler, paymentsHandler paymentsHandler.Handler) API {
	return API{
		router:           router,
		adsHandler:       adsHandler,
		affiliateHandler: affiliateHandler,
		fraudHandler:     fraudHandler,
		paymentsHandler:  paymentsHandler,
	}
}

func (a *API) RegisterRoutes() {
	a.Health()
	apiGroup := a.router.Group("/api/v1")
	{
		adsGroup := apiGroup.Group("/ads")
		adsGroup.POST("/serve", a.adsHandler.HandleServeAd)
		adsGroup.POST("/track", a.adsHandler.HandleTrackImpression)

		affiliateGroup := apiGroup.Group("/affiliate")
		affiliateGroup.POST("/commissions", a.affiliateHandler.HandleAttributeConversion)
		affiliateGroup.POST("/fraud", a.fraudHandler.HandleDetectFraud)
	}
	apiGroup.POST("/payments/webhook", a.paymentsHandler.HandleWebhook)
}

func (a *API) Health() {
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
}
