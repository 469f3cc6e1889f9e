package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"MedGuard/internal/api/response"
	"MedGuard/internal/middleware"
	"MedGuard/internal/repository"
	"MedGuard/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 10
	msgOK           = "获取成功"
)

// pageParams 读取 page / pageSize，缺省为第 1 页、每页 10 条
func pageParams(c *gin.Context) repository.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(defaultPageSize)))
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return repository.Page{Page: page, PageSize: pageSize}.Normalize()
}

// idParam 解析路径参数 :id，非法时直接返回 400
func idParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Abort(c, http.StatusBadRequest, "无效的ID")
		return 0, false
	}
	return id, true
}

// bindJSON 解析请求体，失败时直接返回 400
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Abort(c, http.StatusBadRequest, "请求参数格式错误")
		return false
	}
	return true
}

// caller 当前登录用户；未登录返回 nil
func caller(c *gin.Context) *service.Caller {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil
	}
	return &service.Caller{ID: claims.ID, Role: claims.Role}
}

// mustCaller 需登录的接口使用，JWTAuth 之后必然存在
func mustCaller(c *gin.Context) (service.Caller, bool) {
	cl := caller(c)
	if cl == nil {
		response.Abort(c, http.StatusUnauthorized, "未授权，请先登录")
		return service.Caller{}, false
	}
	return *cl, true
}

// intQuery 可选整数参数
func intQuery(c *gin.Context, key string) *int {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

// sendFile 以附件形式返回导出文件
func sendFile(c *gin.Context, file *service.ExportFile, contentType string) {
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(file.Filename))
	c.Data(http.StatusOK, contentType, file.Data)
}
