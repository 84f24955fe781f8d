package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/ekingoksan/docker-cmd-studio/internal/adapters/dto"
	"github.com/ekingoksan/docker-cmd-studio/internal/boundaries/in"
	"github.com/ekingoksan/docker-cmd-studio/internal/domain"
	"github.com/ekingoksan/docker-cmd-studio/internal/logging"
)

// sessionMaxAge is one day, in seconds.
const sessionMaxAge = 86400

// AuthHandler serves sign-in, sign-out and the profile of the signed-in user.
type AuthHandler struct {
	auth          in.AuthService
	secureCookies bool
}

// NewAuthHandler creates a handler backed by auth.
func NewAuthHandler(auth in.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: auth, secureCookies: secureCookies}
}

func (h *AuthHandler) registerAuth(g *echo.Group) {
	g.POST("/login", h.login)
	g.POST("/logout", h.logout)
	g.GET("/session", h.session)
}

func (h *AuthHandler) registerProfile(g *echo.Group) {
	g.GET("", h.profile)
	g.PUT("", h.updateProfile)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req dto.LoginRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return badBody(c, err)
	}

	u, err := h.auth.Login(c.Request().Context(), req.Email, req.Password, c.RealIP())
	if err != nil {
		return sendError(c, err)
	}

	sess, err := session.Get(sessionName, c)
	if err != nil && sess == nil {
		return sendError(c, err)
	}
	sess.Options = h.cookieOptions(sessionMaxAge)
	sess.Values[sessionUserID] = u.ID
	sess.Values[sessionEmail] = u.Email
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return sendError(c, err)
	}

	return c.JSON(http.StatusOK, dto.SessionResponse{Authenticated: true, User: &u})
}

func (h *AuthHandler) logout(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil && sess == nil {
		return sendError(c, err)
	}
	sess.Options = h.cookieOptions(-1)
	sess.Values = map[any]any{}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return sendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) session(c echo.Context) error {
	s, ok := readSession(c)
	if !ok {
		return c.JSON(http.StatusOK, dto.SessionResponse{})
	}

	u, err := h.auth.Profile(c.Request().Context(), s.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		logging.FromCtx(c.Request().Context()).Debug().
			Str(logging.FieldUserID, s.UserID).
			Msg("session refers to a deleted user")
		return c.JSON(http.StatusOK, dto.SessionResponse{})
	}
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusOK, dto.SessionResponse{Authenticated: true, User: &u})
}

func (h *AuthHandler) profile(c echo.Context) error {
	u, err := h.auth.Profile(c.Request().Context(), currentSession(c).UserID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AuthHandler) updateProfile(c echo.Context) error {
	var req dto.ProfileRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return badBody(c, err)
	}

	res, err := h.auth.UpdateProfile(c.Request().Context(), currentSession(c).UserID, req.ToDomain())
	if err != nil {
		return sendError(c, err)
	}

	if sess, err := session.Get(sessionName, c); err == nil {
		sess.Values[sessionEmail] = res.User.Email
		sess.Options = h.cookieOptions(sessionMaxAge)
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			return sendError(c, err)
		}
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) cookieOptions(maxAge int) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
