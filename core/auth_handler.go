package core

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

// AuthHandler exposes AuthService over HTTP and owns the accessToken cookie.
type AuthHandler struct {
	auth     AuthService
	cookies  CookiePolicy
	sessions sessions.Store
}

func NewAuthHandler(auth AuthService, cookies CookiePolicy, store sessions.Store) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies, sessions: store}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type registerRequest struct {
	NamaDepan    string `json:"namaDepan" binding:"required,notblank"`
	NamaBelakang string `json:"namaBelakang" binding:"required,notblank"`
	NomorHp      string `json:"nomorHp" binding:"required,min=10"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8,max=72"`
}

type registerAdminRequest struct {
	NamaDepan    string `json:"namaDepan" binding:"required,notblank"`
	NamaBelakang string `json:"namaBelakang" binding:"required,notblank"`
	NomorHp      string `json:"nomorHp" binding:"required,min=10"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=12,max=72"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, opLogin, err)
		return
	}

	cred, user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, opLogin, err)
		return
	}

	http.SetCookie(c.Writer, h.cookies.Issue(cred.Token))
	if err := startSession(c, h.sessions, h.cookies, cred); err != nil {
		log.Printf("request_id=%s login: session marker not saved: %v", requestID(c), err)
	}
	log.Printf("request_id=%s login success user_id=%d role=%s", requestID(c), user.ID, user.Role)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user": gin.H{
			"id":           user.ID,
			"namaDepan":    user.NamaDepan,
			"namaBelakang": user.NamaBelakang,
			"email":        user.Email,
			"role":         user.Role,
		},
	})
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, opRegister, err)
		return
	}
	user, err := h.auth.Register(c.Request.Context(), RegisterInput(req))
	if err != nil {
		handleError(c, opRegister, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Registration successful", "userId": user.ID})
}

// RegisterAdmin handles POST /auth/register-admin.
func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	var req registerAdminRequest
	if err := bindJSON(c, &req); err != nil {
		handleError(c, opRegisterAdmin, err)
		return
	}
	user, err := h.auth.RegisterAdmin(c.Request.Context(), RegisterInput(req))
	if err != nil {
		handleError(c, opRegisterAdmin, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Admin registration successful",
		"userId":  user.ID,
		"role":    user.Role,
	})
}

// Logout handles POST /auth/logout. It always answers 200.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context()); err != nil {
		log.Printf("request_id=%s logout: %v", requestID(c), err)
	}
	http.SetCookie(c.Writer, h.cookies.Clear())
	if err := destroySession(c, h.sessions, h.cookies); err != nil {
		log.Printf("request_id=%s logout: destroy session: %v", requestID(c), err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// Me handles GET /auth/me behind RequireAuth.
func (h *AuthHandler) Me(c *gin.Context) {
	subject, ok := currentSubject(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}
	user, err := h.auth.CurrentUser(c.Request.Context(), subject)
	if err != nil {
		handleError(c, opCurrentUser, err)
		return
	}
	if user == nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}
	c.JSON(http.StatusOK, user)
}
