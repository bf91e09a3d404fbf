package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"attendance-now/internal/netutil"
)

// ConfigHandler 向客户端暴露服务器的网络配置，
// 供管理页面生成局域网内可达的加入二维码。
type ConfigHandler struct {
	port string
}

// NewConfigHandler 创建 ConfigHandler 实例
func NewConfigHandler(port string) *ConfigHandler {
	return &ConfigHandler{port: port}
}

// ConfigResponse 定义网络配置的响应结构体
type ConfigResponse struct {
	IP   string `json:"ip"`
	Port string `json:"port"`
}

// GetConfig 返回服务器的局域网地址和端口
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, ConfigResponse{
		IP:   netutil.LanAddress(),
		Port: h.port,
	})
}
