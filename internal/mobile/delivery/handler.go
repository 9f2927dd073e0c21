package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"portfolio-backend/internal/mobile/domain"
	"portfolio-backend/internal/mobile/dto"
	"portfolio-backend/internal/mobile/hub"
	"portfolio-backend/internal/mobile/usecase"
	"portfolio-backend/pkg/bridge"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type MobileHandler struct {
	mobileUsecase usecase.MobileUsecase
	limiter       *hub.RateLimiter
	upgrader      websocket.Upgrader
}

// NewMobileHandler creates the handler. checkOrigin may be nil to accept any
// origin; native shells usually send none.
func NewMobileHandler(mobileUsecase usecase.MobileUsecase, limiter *hub.RateLimiter, checkOrigin func(r *http.Request) bool) *MobileHandler {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &MobileHandler{
		mobileUsecase: mobileUsecase,
		limiter:       limiter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Connect upgrades a native shell to the bridge socket
// GET /api/mobile/bridge
func (h *MobileHandler) Connect(c *gin.Context) {
	if h.limiter != nil && !h.limiter.Allow(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many connections, retry later"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		log.Printf("[Mobile] Upgrade failed: %v", err)
		return
	}

	hello, err := hub.ReadHello(conn)
	if err != nil {
		log.Printf("[Mobile] Rejecting %s: %v", c.ClientIP(), err)
		reject(conn, err)
		return
	}

	session, err := h.mobileUsecase.OpenSession(conn, hello, c.ClientIP())
	if err != nil {
		log.Printf("[Mobile] Rejecting %s: %v", c.ClientIP(), err)
		reject(conn, err)
		return
	}
	defer h.mobileUsecase.CloseSession(session)

	if err := session.Welcome(); err != nil {
		log.Printf("[Mobile] Session %s welcome failed: %v", session.ID(), err)
		return
	}
	session.Run()
}

// GET /api/mobile/sessions
func (h *MobileHandler) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.mobileUsecase.ListSessions()})
}

// GET /api/mobile/sessions/:id
func (h *MobileHandler) GetSession(c *gin.Context) {
	info, err := h.mobileUsecase.GetSession(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Login asks the shell to sign in. With ?wait=true the call blocks until the
// shell answers or the auth timeout passes.
// POST /api/mobile/sessions/:id/login
func (h *MobileHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	creds := bridge.Credentials{Email: req.Email, Password: req.Password}
	ctx := c.Request.Context()

	if wait(c) {
		result, err := h.mobileUsecase.Login(ctx, c.Param("id"), creds)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}
	resp, err := h.mobileUsecase.StartLogin(ctx, c.Param("id"), creds)
	writeResponse(c, resp, err)
}

// POST /api/mobile/sessions/:id/status
func (h *MobileHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	if wait(c) {
		authenticated, err := h.mobileUsecase.Status(ctx, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.StatusResponse{Authenticated: authenticated})
		return
	}
	resp, err := h.mobileUsecase.CheckStatus(ctx, c.Param("id"))
	writeResponse(c, resp, err)
}

// POST /api/mobile/sessions/:id/logout
func (h *MobileHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	if wait(c) {
		if err := h.mobileUsecase.Logout(ctx, c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
		return
	}
	resp, err := h.mobileUsecase.StartLogout(ctx, c.Param("id"))
	writeResponse(c, resp, err)
}

// POST /api/mobile/sessions/:id/fcm-token
func (h *MobileHandler) StoreFCMToken(c *gin.Context) {
	var req dto.FCMTokenRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	resp, err := h.mobileUsecase.StoreFCMToken(c.Request.Context(), c.Param("id"), req.Token)
	writeResponse(c, resp, err)
}

// POST /api/mobile/sessions/:id/user-data
func (h *MobileHandler) SendUserData(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user data body is required"})
		return
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user data must be JSON: " + err.Error()})
		return
	}
	resp, err := h.mobileUsecase.SendUserData(c.Request.Context(), c.Param("id"), data)
	writeResponse(c, resp, err)
}

// POST /api/mobile/sessions/:id/dispatch
func (h *MobileHandler) Dispatch(c *gin.Context) {
	var req dto.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.mobileUsecase.Dispatch(c.Request.Context(), c.Param("id"), req.Action, req.Data)
	writeResponse(c, resp, err)
}

// reject closes a socket that failed the handshake. Close reasons are capped at 123 bytes.
func reject(conn *websocket.Conn, err error) {
	reason := err.Error()
	if len(reason) > 123 {
		reason = reason[:123]
	}
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason))
	conn.Close()
}

func wait(c *gin.Context) bool {
	v, _ := strconv.ParseBool(c.Query("wait"))
	return v
}

// writeResponse reports a fire-and-forget dispatch. A failed dispatch is not
// an HTTP error; the bridge response carries the reason.
func writeResponse(c *gin.Context, resp bridge.Response, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func writeError(c *gin.Context, err error) {
	var authErr *bridge.AuthError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &authErr):
		c.JSON(http.StatusUnauthorized, gin.H{"error": authErr.Message, "code": authErr.Code})
	case errors.Is(err, bridge.ErrBridgeUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, bridge.ErrAuthTimeout), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	case errors.Is(err, bridge.ErrSuperseded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, bridge.ErrDisposed):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
