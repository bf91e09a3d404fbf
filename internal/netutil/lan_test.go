package netutil

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanAddress_ReturnsUsableHost(t *testing.T) {
	addr := LanAddress()

	assert.NotEmpty(t, addr, "应始终返回可用的主机地址")
	if addr != "localhost" {
		ip := net.ParseIP(addr)
		assert.NotNil(t, ip, "非 localhost 时应返回合法的 IP 地址")
		assert.NotNil(t, ip.To4(), "应优先返回 IPv4 地址")
		assert.False(t, ip.IsLoopback(), "不应返回回环地址")
	}
}
