package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/services"
	"github.com/vswdatasolutions/Shuarya-Dhaba/pkg/speech"
)

type AssistantHandler struct {
	assistantService services.AssistantService
}

func NewAssistantHandler(assistantService services.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService}
}

func (h *AssistantHandler) Greeting(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"response": h.assistantService.Greeting()})
}

func (h *AssistantHandler) Message(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if !bindJSON(c, &req) {
		return
	}
	reply, err := h.assistantService.HandleMessage(c.Request.Context(), sessionID(c), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// Voice picks the synthesis voice among those the client reports.
func (h *AssistantHandler) Voice(c *gin.Context) {
	var req struct {
		Locale string         `json:"locale"`
		Voices []speech.Voice `json:"voices"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.Locale == "" {
		req.Locale = "en-IN"
	}
	voice, ok := h.assistantService.SelectVoice(req.Voices, req.Locale)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"found": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"found": true, "voice": voice})
}

func (h *AssistantHandler) SpeechError(c *gin.Context) {
	var req struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
	}
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.assistantService.SpeechError(sessionID(c), req.Code, req.Detail))
}
