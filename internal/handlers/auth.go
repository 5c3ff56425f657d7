package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
	userService services.UserService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService, userService services.UserService) *AuthHandler {
	return &AuthHandler{
		log:         log.With("handler", "AuthHandler"),
		authService: authService,
		userService: userService,
	}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	body, err := readBody(c, bodySpec{Mandatory: []string{"name", "email", "password"}})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	user, token, err := h.authService.Signup(c.Request.Context(),
		bodyString(body, "name"), bodyString(body, "email"), bodyString(body, "password"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.setTokenCookie(c, token)
	respondCreated(c, gin.H{"user": user, "token": token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	body, err := readBody(c, bodySpec{Mandatory: []string{"email", "password"}})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	user, token, err := h.authService.Login(c.Request.Context(),
		bodyString(body, "email"), bodyString(body, "password"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.setTokenCookie(c, token)
	respondOK(c, gin.H{"user": user, "token": token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), reqData(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.SetCookie("jwt", "", -1, "/", "", false, true)
	respondNoContent(c)
}

func (h *AuthHandler) Me(c *gin.Context) {
	rd := reqData(c)
	user, err := h.userService.Get(c.Request.Context(), rd.UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, user)
}

// UpdatePassword changes the caller's password and kills their other
// sessions; the response carries a fresh token for this one.
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	body, err := readBody(c, bodySpec{Mandatory: []string{"current_password", "new_password"}})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	rd := reqData(c)
	user, err := h.userService.UpdatePassword(c.Request.Context(), rd,
		bodyString(body, "current_password"), bodyString(body, "new_password"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	_, token, err := h.authService.Login(c.Request.Context(), user.Email, bodyString(body, "new_password"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.setTokenCookie(c, token)
	respondOK(c, gin.H{"user": user, "token": token})
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string) {
	c.SetCookie("jwt", token, int(h.authService.TokenTTL().Seconds()), "/", "", false, true)
}
