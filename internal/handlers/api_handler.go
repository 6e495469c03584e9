package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/apperrors"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/services"
)

type APIHandler struct {
	userService           services.UserService
	menuService           services.MenuService
	cartService           services.CartService
	orderService          services.OrderService
	recommendationService services.RecommendationService
	assistantService      services.AssistantService
}

func NewAPIHandler(
	userService services.UserService,
	menuService services.MenuService,
	cartService services.CartService,
	orderService services.OrderService,
	recommendationService services.RecommendationService,
	assistantService services.AssistantService,
) *APIHandler {
	return &APIHandler{
		userService:           userService,
		menuService:           menuService,
		cartService:           cartService,
		orderService:          orderService,
		recommendationService: recommendationService,
		assistantService:      assistantService,
	}
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return false
	}
	return true
}

// Login endpoints
func (h *APIHandler) RequestOTP(c *gin.Context) {
	var req struct {
		Mobile string `json:"mobile"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.userService.RequestOTP(c.Request.Context(), req.Mobile); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "otp_sent"})
}

func (h *APIHandler) CustomerLogin(c *gin.Context) {
	var req struct {
		Mobile string `json:"mobile"`
		OTP    string `json:"otp"`
		Name   string `json:"name"`
	}
	if !bindJSON(c, &req) {
		return
	}
	sess, err := h.userService.VerifyOTP(c.Request.Context(), req.Mobile, req.OTP, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *APIHandler) StaffLogin(c *gin.Context) {
	var req struct {
		Role     string `json:"role"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}
	sess, err := h.userService.StaffLogin(c.Request.Context(), models.Role(req.Role), req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *APIHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (h *APIHandler) Logout(c *gin.Context) {
	id := sessionID(c)
	if err := h.userService.Logout(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	if err := h.assistantService.Forget(c.Request.Context(), id); err != nil {
		log.Printf("Warning: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

// Menu endpoints
func (h *APIHandler) GetMenu(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.menuService.List()})
}

func (h *APIHandler) UpdateDescription(c *gin.Context) {
	var req struct {
		Description string `json:"description"`
	}
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.menuService.UpdateDescription(c.Request.Context(), currentUser(c), c.Param("id"), req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *APIHandler) GenerateDescription(c *gin.Context) {
	var req struct {
		Ingredients string `json:"ingredients"`
	}
	if !bindJSON(c, &req) {
		return
	}
	text, err := h.menuService.GenerateDescription(c.Request.Context(), currentUser(c), c.Param("id"), req.Ingredients)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": text})
}

// Cart endpoints
func (h *APIHandler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cartService.Summary(sessionID(c)))
}

func (h *APIHandler) AddToCart(c *gin.Context) {
	summary, err := h.cartService.Add(sessionID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *APIHandler) RemoveFromCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cartService.Remove(sessionID(c), c.Param("id")))
}

func (h *APIHandler) GetRecommendations(c *gin.Context) {
	recs, err := h.recommendationService.Recommend(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

// Order endpoints
func (h *APIHandler) PlaceOrder(c *gin.Context) {
	var req services.PlaceOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.PlaceOrder(c.Request.Context(), sessionID(c), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetOrder returns one order. Customers only see their own.
func (h *APIHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	user := currentUser(c)
	if user.Role == models.RoleCustomer && order.CustomerName != user.Name {
		respondError(c, apperrors.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *APIHandler) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.UpdateStatus(c.Request.Context(), currentUser(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Role views
func (h *APIHandler) KitchenView(c *gin.Context) {
	v, err := h.orderService.KitchenView(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *APIHandler) DeliveryView(c *gin.Context) {
	v, err := h.orderService.DeliveryView(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *APIHandler) CustomerView(c *gin.Context) {
	v, err := h.orderService.CustomerView(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *APIHandler) AdminView(c *gin.Context) {
	v, err := h.orderService.AdminView(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}
