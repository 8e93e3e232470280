package api

import (
	"errors"
	"net/http"

	reqdto "nazca360/internal/handler/dto/request"
	resdto "nazca360/internal/handler/dto/response"
	"nazca360/internal/handler/middleware"
	"nazca360/internal/pkg/errs"
	"nazca360/internal/usecase"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUseCase usecase.AuthUseCase
}

func NewAuthHandler(authUseCase usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

// @Summary Register a new account
// @Description Create an email/password account; a verification link is mailed
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.RegisterRequest true "Registration request"
// @Success 201 {object} readmodel.AuthorizedUserRM
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req reqdto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	credentials, err := req.ToDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request data",
		})
		return
	}

	created, err := h.authUseCase.Register(c.Request.Context(), credentials, req.Name)
	if err != nil {
		if errors.Is(err, errs.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Email already registered",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// @Summary Verify email address
// @Description Confirm the address with the token from the verification mail
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.VerifyEmailRequest true "Verification token"
// @Success 200 {object} resdto.MessageResponse
// @Failure 400 {object} map[string]string
// @Router /auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req reqdto.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.authUseCase.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidToken):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid or expired token",
			})
		case errors.Is(err, errs.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Account not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}
	c.JSON(http.StatusOK, resdto.MessageResponse{Message: "Email verified"})
}

// @Summary User login
// @Description Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.LoginRequest true "Login request"
// @Success 200 {object} resdto.LoginResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req reqdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	credentials, err := req.ToDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request data",
		})
		return
	}

	token, user, err := h.authUseCase.Login(c.Request.Context(), credentials)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid email or password",
			})
		case errors.Is(err, errs.ErrEmailNotVerified):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Email address not verified",
			})
		case errors.Is(err, errs.ErrOAuthAccount):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Account uses Google sign-in",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.LoginResponse{
		AccessToken: token,
		User:        user,
	})
}

// @Summary Google sign-in URL
// @Description Returns the Google authorization URL to redirect the user to
// @Tags auth
// @Produce json
// @Param state query string false "Opaque state round-tripped by Google"
// @Success 200 {object} map[string]string
// @Router /auth/google [get]
func (h *AuthHandler) GoogleAuthURL(c *gin.Context) {
	state := c.DefaultQuery("state", "nazca360")
	c.JSON(http.StatusOK, gin.H{
		"auth_url": h.authUseCase.GoogleAuthURL(state),
	})
}

// @Summary Google sign-in callback
// @Description Exchange the authorization code for a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.GoogleCallbackRequest true "Authorization code"
// @Success 200 {object} resdto.LoginResponse
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /auth/google/callback [post]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	var req reqdto.GoogleCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	token, user, err := h.authUseCase.GoogleLogin(c.Request.Context(), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrUpstreamUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Google is unavailable",
			})
		case errors.Is(err, errs.ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid authorization code",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.LoginResponse{
		AccessToken: token,
		User:        user,
	})
}

// @Summary Request password reset
// @Description Sends a reset link when the address is registered; always returns 200
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.ForgotPasswordRequest true "Account email"
// @Success 200 {object} resdto.MessageResponse
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req reqdto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.authUseCase.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, resdto.MessageResponse{
		Message: "If the address is registered, a reset link has been sent",
	})
}

// @Summary Reset password
// @Description Set a new password with the token from the reset mail
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} resdto.MessageResponse
// @Failure 400 {object} map[string]string
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req reqdto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.authUseCase.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidToken):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid or expired token",
			})
		case errors.Is(err, errs.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Account not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}
	c.JSON(http.StatusOK, resdto.MessageResponse{Message: "Password updated"})
}

// @Summary Get current user
// @Description Get current authenticated user information
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} readmodel.AuthorizedUserRM
// @Failure 401 {object} map[string]string
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	user, err := h.authUseCase.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary User logout
// @Description Revoke the current session
// @Tags auth
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := middleware.GetAccessToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	if err := h.authUseCase.Logout(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.Status(http.StatusNoContent)
}
