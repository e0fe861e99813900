package directory

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"passport/internal/locale"
	"passport/internal/users"
)

// Handler exposes the directory service over HTTP.
type Handler struct {
	svc     *Service
	catalog *locale.Catalog
	logger  *slog.Logger

	cookieName    string
	cookieMaxAge  int
	secureCookies bool
}

// NewHandler creates the HTTP handler. sessionTTL sets the session cookie
// lifetime; secureCookies should be true behind TLS.
func NewHandler(svc *Service, catalog *locale.Catalog, logger *slog.Logger,
	cookieName string, sessionTTL time.Duration, secureCookies bool) *Handler {

	return &Handler{
		svc:           svc,
		catalog:       catalog,
		logger:        logger,
		cookieName:    cookieName,
		cookieMaxAge:  int(sessionTTL.Seconds()),
		secureCookies: secureCookies,
	}
}

// RegisterRoutes attaches all directory endpoints to the router.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.DELETE("/logout", h.Logout)
	}

	users := r.Group("/users")
	{
		users.GET("/all", h.ListUsers)
		users.GET("/:email", h.GetUser)
		users.PUT("/:email", h.UpdateUser)
		users.DELETE("/:email", h.DeleteUser)
	}
}

// messages resolves the request's Accept-Language header to a catalog view.
func (h *Handler) messages(c *gin.Context) *locale.Messages {
	return h.catalog.Resolve(c.GetHeader("Accept-Language"))
}

// sessionToken extracts the session token from the cookie or, failing
// that, an Authorization bearer header. The token itself is never logged.
func (h *Handler) sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(h.cookieName); err == nil && token != "" {
		return token
	}
	const prefix = "Bearer "
	if auth := c.GetHeader("Authorization"); len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}

// Register handles POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	msgs := h.messages(c)

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiResponse{
			Message: msgs.Auth("register.invalid_data"),
			Error:   &errorDetails{},
		})
		return
	}

	user, err := h.svc.Register(c.Request.Context(), RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Plan:     req.SubscriptionPlan,
	})
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, apiResponse{
				Message: msgs.Auth("register.invalid_data"),
				Error:   &errorDetails{Details: localizeFields(msgs, verr)},
			})
		case errors.Is(err, ErrConflict):
			c.JSON(http.StatusConflict, apiResponse{
				Message: msgs.User("create.duplicate"),
				Error:   &errorDetails{},
			})
		default:
			h.internalError(c, msgs, "register", err)
		}
		return
	}

	c.JSON(http.StatusCreated, apiResponse{
		Message: msgs.Auth("register.success"),
		Data:    toUserResponse(user),
	})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	msgs := h.messages(c)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiResponse{
			Message: msgs.Auth("login.invalid_credentials"),
			Error:   &errorDetails{},
		})
		return
	}

	user, token, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, apiResponse{
				Message: msgs.Auth("login.invalid_credentials"),
				Error:   &errorDetails{},
			})
			return
		}
		h.internalError(c, msgs, "login", err)
		return
	}

	c.SetCookie(h.cookieName, token, h.cookieMaxAge, "/", "", h.secureCookies, true)
	c.JSON(http.StatusOK, apiResponse{
		Message: msgs.Auth("login.success"),
		Data:    loginResponse{User: toUserResponse(user), Token: token},
	})
}

// Logout handles DELETE /auth/logout. It is idempotent: an absent or
// invalid token is treated as already logged out.
func (h *Handler) Logout(c *gin.Context) {
	token := h.sessionToken(c)
	if token != "" {
		if err := h.svc.Logout(c.Request.Context(), token); err != nil {
			h.internalError(c, h.messages(c), "logout", err)
			return
		}
	}
	c.SetCookie(h.cookieName, "", -1, "/", "", h.secureCookies, true)
	c.Status(http.StatusNoContent)
}

// ListUsers handles GET /users/all.
func (h *Handler) ListUsers(c *gin.Context) {
	msgs := h.messages(c)

	list, err := h.svc.ListUsers(c.Request.Context(), h.sessionToken(c))
	if err != nil {
		h.directoryError(c, msgs, "list users", err)
		return
	}

	c.JSON(http.StatusOK, apiResponse{
		Message: msgs.User("fetch.all_success"),
		Data:    toUserResponses(list),
	})
}

// GetUser handles GET /users/:email.
func (h *Handler) GetUser(c *gin.Context) {
	msgs := h.messages(c)

	user, err := h.svc.GetUser(c.Request.Context(), h.sessionToken(c), c.Param("email"))
	if err != nil {
		h.directoryError(c, msgs, "get user", err)
		return
	}

	c.JSON(http.StatusOK, apiResponse{
		Message: msgs.User("fetch.success"),
		Data:    toUserResponse(user),
	})
}

// UpdateUser handles PUT /users/:email.
func (h *Handler) UpdateUser(c *gin.Context) {
	msgs := h.messages(c)

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiResponse{
			Message: msgs.User("update.invalid_data"),
			Error:   &errorDetails{},
		})
		return
	}

	// email is immutable: the body must name the same user as the path
	if users.NormalizeEmail(req.Email) != users.NormalizeEmail(c.Param("email")) {
		c.JSON(http.StatusBadRequest, apiResponse{
			Message: msgs.User("update.email_mismatch"),
			Error:   &errorDetails{},
		})
		return
	}

	user, err := h.svc.UpdateUser(c.Request.Context(), h.sessionToken(c), c.Param("email"), UpdateInput{
		Name: req.Name,
		Plan: req.SubscriptionPlan,
		Role: req.Role,
	})
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, apiResponse{
				Message: msgs.User("update.invalid_data"),
				Error:   &errorDetails{Details: localizeFields(msgs, verr)},
			})
			return
		}
		h.directoryError(c, msgs, "update user", err)
		return
	}

	c.JSON(http.StatusOK, apiResponse{
		Message: msgs.User("update.success"),
		Data:    toUserResponse(user),
	})
}

// DeleteUser handles DELETE /users/:email.
func (h *Handler) DeleteUser(c *gin.Context) {
	msgs := h.messages(c)

	if err := h.svc.DeleteUser(c.Request.Context(), h.sessionToken(c), c.Param("email")); err != nil {
		h.directoryError(c, msgs, "delete user", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "passport",
	})
}

// directoryError maps the service failure taxonomy to HTTP responses.
// Authentication is reported before authorization before existence, so an
// unauthenticated caller never learns whether a target exists.
func (h *Handler) directoryError(c *gin.Context, msgs *locale.Messages, op string, err error) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, apiResponse{
			Message: msgs.Auth("unauthorized"),
			Error:   &errorDetails{},
		})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, apiResponse{
			Message: msgs.Auth("forbidden"),
			Error:   &errorDetails{},
		})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, apiResponse{
			Message: msgs.User("fetch.not_found"),
			Error:   &errorDetails{},
		})
	default:
		h.internalError(c, msgs, op, err)
	}
}

func (h *Handler) internalError(c *gin.Context, msgs *locale.Messages, op string, err error) {
	h.logger.Error("request failed", "op", op, "error", err)
	c.JSON(http.StatusInternalServerError, apiResponse{
		Message: msgs.Auth("internal_error"),
		Error:   &errorDetails{},
	})
}

// localizeFields translates a ValidationError's message keys for the
// response body.
func localizeFields(msgs *locale.Messages, verr *ValidationError) map[string][]string {
	out := make(map[string][]string, len(verr.Fields))
	for field, keys := range verr.Fields {
		translated := make([]string, 0, len(keys))
		for _, key := range keys {
			translated = append(translated, msgs.Validation(key))
		}
		out[field] = translated
	}
	return out
}
