package web

import (
	"net/http"
	"time"

	"github.com/HuaTug/LLM/chains"
	"github.com/HuaTug/LLM/llms"
	"github.com/HuaTug/LLM/logger"
	"github.com/HuaTug/LLM/metrics"
	"github.com/HuaTug/LLM/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionCookie = "llm_session"

type ChatRequest struct {
	Message     string   `json:"message" binding:"required"`
	Temperature *float32 `json:"temperature"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
	Error bool   `json:"error,omitempty"`
}

// conversationID returns the caller's session ID, issuing a cookie on first use.
func (s *Server) conversationID(c *gin.Context) string {
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		return id
	}
	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
	return id
}

// Chat answers one message. Model failures are returned as a 200 reply
// starting with "Sorry, an error occurred:" and kept in the history.
func (s *Server) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.ObserveChatRequest(0, metrics.StatusInvalid)
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	temperature := float32(DefaultTemperature)
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	if temperature < 0 || temperature > 2 {
		metrics.ObserveChatRequest(0, metrics.StatusInvalid)
		c.JSON(http.StatusBadRequest, gin.H{"error": "temperature must be between 0 and 2"})
		return
	}

	id := s.conversationID(c)
	ctx := logger.WithConversationID(c.Request.Context(), id)

	chain := chains.NewConversationChain(llms.WithTemperature(s.llm, temperature), s.mem, s.prompt)
	chain.ConversationID = id
	chain.Logger = s.log

	start := time.Now()
	reply, err := chain.Predict(ctx, req.Message)
	resp := ChatResponse{Reply: reply}
	status := metrics.StatusSuccess
	if err != nil {
		s.log.ErrorwCtx(ctx, "chat failed", "error", err)
		resp = ChatResponse{Reply: "Sorry, an error occurred: " + err.Error(), Error: true}
		status = metrics.StatusError
	}
	metrics.ObserveChatRequest(time.Since(start), status)

	s.appendHistory(id,
		session.Message{Role: session.RoleUser, Content: req.Message},
		session.Message{Role: session.RoleAssistant, Content: resp.Reply},
	)
	c.JSON(http.StatusOK, resp)
}

// History returns the messages shown in this browser's chat.
func (s *Server) History(c *gin.Context) {
	id := s.conversationID(c)
	c.JSON(http.StatusOK, gin.H{"messages": s.historyOf(id)})
}

// Clear forgets both the displayed history and the model memory.
func (s *Server) Clear(c *gin.Context) {
	id := s.conversationID(c)
	if err := s.mem.ClearMessages(c.Request.Context(), id); err != nil {
		s.log.ErrorwCtx(c.Request.Context(), "failed to clear memory", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear conversation"})
		return
	}
	s.clearHistory(id)
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// Config returns the banner information.
func (s *Server) Config(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"info":                s.info,
		"default_temperature": DefaultTemperature,
	})
}
