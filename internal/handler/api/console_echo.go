package api

import (
	"net/http"

	"SentinelConsole/internal/domain/models"
	domrepo "SentinelConsole/internal/domain/repository"
	"SentinelConsole/internal/service/ratelimit"
	"SentinelConsole/internal/usecase"
	xhttp "SentinelConsole/pkg/http"
	xlogger "SentinelConsole/pkg/logger"

	"github.com/labstack/echo/v4"
)

// LoginLimit bounds login attempts per remote address.
type LoginLimit struct {
	Burst     float64
	PerSecond float64
}

// ConsoleEchoHandler serves the console pages, the session routes and the live channel.
type ConsoleEchoHandler struct {
	logger   *xlogger.Logger
	console  *usecase.Console
	sessions domrepo.SessionStore
	nav      domrepo.Navigator
	live     http.Handler
	limiter  *ratelimit.Limiter
	limit    LoginLimit
}

func NewConsoleEchoHandler(
	logger *xlogger.Logger,
	console *usecase.Console,
	sessions domrepo.SessionStore,
	nav domrepo.Navigator,
	live http.Handler,
	limiter *ratelimit.Limiter,
	limit LoginLimit,
) *ConsoleEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	if limiter == nil {
		limiter = ratelimit.New()
	}
	return &ConsoleEchoHandler{
		logger:   logger,
		console:  console,
		sessions: sessions,
		nav:      nav,
		live:     live,
		limiter:  limiter,
		limit:    limit,
	}
}

func (h *ConsoleEchoHandler) RegisterRoutes(e *echo.Echo) {
	pub := e.Group("/admin")
	pub.POST("/login", h.Login)
	pub.POST("/logout", h.Logout)
	pub.GET("/session", h.Session)

	g := e.Group("/admin", h.RequireSession)
	g.GET("/market", h.Market)
	g.GET("/orderbook", h.OrderBook)
	g.GET("/trades", h.Trades)
	g.GET("/surveillance", h.Surveillance)
	g.POST("/:view/refresh", h.Refresh)
	if h.live != nil {
		g.GET("/ws", echo.WrapHandler(h.live))
	}
}

// RequireSession rejects requests made while signed out.
func (h *ConsoleEchoHandler) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.sessions.Current() == nil {
			return xhttp.UnauthorizedResponse(c, "session required", models.LoginPath)
		}
		return next(c)
	}
}

func (h *ConsoleEchoHandler) Login(c echo.Context) error {
	key := c.RealIP()
	if !h.limiter.Allow(key, h.limit.Burst, h.limit.PerSecond) {
		h.logger.Warn("login rate limited", xlogger.String("remote", key))
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many login attempts"))
	}

	req := &models.LoginRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.sessions.Login(c.Request().Context(), req.Username, req.Password) {
		return xhttp.UnauthorizedResponse(c, "invalid credentials", "")
	}
	h.limiter.Reset(key)
	return xhttp.SuccessResponse(c, h.sessions.Current().Redacted())
}

func (h *ConsoleEchoHandler) Logout(c echo.Context) error {
	h.sessions.Logout(c.Request().Context())
	if h.nav != nil {
		h.nav.ToLogin("logout")
	}
	return xhttp.NoContentResponse(c)
}

func (h *ConsoleEchoHandler) Session(c echo.Context) error {
	sess := h.sessions.Current()
	if sess == nil {
		return xhttp.UnauthorizedResponse(c, "no active session", models.LoginPath)
	}
	return xhttp.SuccessResponse(c, sess.Redacted())
}

func (h *ConsoleEchoHandler) Market(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.console.Market.View())
}

func (h *ConsoleEchoHandler) OrderBook(c echo.Context) error {
	req := &models.SymbolQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	h.console.OrderBook.SetSymbol(req.Symbol)
	return xhttp.SuccessResponse(c, h.console.OrderBook.View())
}

func (h *ConsoleEchoHandler) Trades(c echo.Context) error {
	req := &models.SymbolQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	h.console.Trades.SetSymbol(req.Symbol)
	return xhttp.SuccessResponse(c, h.console.Trades.View())
}

func (h *ConsoleEchoHandler) Surveillance(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.console.Surveillance.View())
}

// Refresh runs a fetch cycle of one view now.
func (h *ConsoleEchoHandler) Refresh(c echo.Context) error {
	v, ok := h.console.View(c.Param("view"))
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_NOT_FOUND", "view", "unknown view", http.StatusNotFound))
	}
	v.Refresh()
	return c.NoContent(http.StatusAccepted)
}
