package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/services"
)

// Register mounts every endpoint under /api.
func Register(router *gin.Engine, api *APIHandler, assistant *AssistantHandler, users services.UserService) {
	session := RequireSession(users)
	admin := RequireRole(models.RoleAdmin)

	r := router.Group("/api")
	{
		r.POST("/auth/otp", api.RequestOTP)
		r.POST("/auth/customer", api.CustomerLogin)
		r.POST("/auth/staff", api.StaffLogin)
		r.GET("/auth/me", session, api.Me)
		r.DELETE("/auth/session", session, api.Logout)

		r.GET("/menu", api.GetMenu)
		r.PUT("/menu/:id/description", session, admin, api.UpdateDescription)
		r.POST("/menu/:id/description/generate", session, admin, api.GenerateDescription)

		r.GET("/cart", session, api.GetCart)
		r.POST("/cart/items/:id", session, api.AddToCart)
		r.DELETE("/cart/items/:id", session, api.RemoveFromCart)
		r.GET("/cart/recommendations", session, api.GetRecommendations)

		r.POST("/orders", session, api.PlaceOrder)
		r.GET("/orders/:id", session, api.GetOrder)
		r.PUT("/orders/:id/status", session, api.UpdateOrderStatus)

		r.GET("/views/kitchen", session, RequireRole(models.RoleKitchen, models.RoleAdmin), api.KitchenView)
		r.GET("/views/delivery", session, RequireRole(models.RoleDelivery, models.RoleAdmin), api.DeliveryView)
		r.GET("/views/customer", session, api.CustomerView)
		r.GET("/views/admin", session, admin, api.AdminView)

		r.GET("/assistant/greeting", assistant.Greeting)
		r.POST("/assistant/message", session, assistant.Message)
		r.POST("/assistant/voice", assistant.Voice)
		r.POST("/assistant/speech-error", session, assistant.SpeechError)
	}
}
