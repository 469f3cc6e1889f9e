package api

import (
	"net/http"

	"MedGuard/internal/api/response"
	"MedGuard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthHandler 登录注册
type AuthHandler struct {
	auth   *service.AuthService
	logger *logrus.Logger
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(auth *service.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login 登录
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		response.Abort(c, http.StatusBadRequest, "用户名和密码不能为空")
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "登录成功", res)
}

// Register 注册普通用户
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	id, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "注册成功", gin.H{"id": id})
}

// Logout 令牌无服务端状态，直接返回成功
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	response.OK(c, "退出成功", nil)
}

// Me 当前用户信息
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	profile, err := h.auth.Me(c.Request.Context(), cl.ID)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, profile)
}
