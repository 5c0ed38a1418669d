package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dealerhub/dealer-admin/internal/api/metrics"
	"github.com/dealerhub/dealer-admin/internal/api/response"
	"github.com/dealerhub/dealer-admin/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new staff account and returns a token for it.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  response.Envelope{data=authResponse}
// @Failure      400   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Failure      500   {object}  response.Envelope
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "failure").Inc()
		return err
	}
	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()

	return c.JSON(http.StatusCreated, response.OK(authResponse{
		User:  toUserSummary(res.User),
		Token: res.Token,
	}, "User registered successfully"))
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  response.Envelope{data=authResponse}
// @Failure      400   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Failure      429   {object}  response.Envelope
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
		return err
	}
	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()

	return c.JSON(http.StatusOK, response.OK(authResponse{
		User:  toUserSummary(res.User),
		Token: res.Token,
	}, "Login successful"))
}

// Profile returns the authenticated user's account.
//
// @Summary      Current user profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=profileResponse}
// @Failure      401  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /api/auth/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	user, err := h.authService.GetProfile(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.OK(toProfileResponse(user), ""))
}
