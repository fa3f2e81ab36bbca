// ABOUTME: Tests for mDNS discovery
// ABOUTME: Tests service construction and manager lifecycle
package discovery

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager(t *testing.T) {
	mgr := NewManager(Config{ServiceName: "Living Room", Port: 8928})
	require.NotNil(t, mgr)
	assert.NotNil(t, mgr.log)
	mgr.Stop()
	assert.Error(t, mgr.ctx.Err())
}

func TestService(t *testing.T) {
	mgr := NewManager(Config{ServiceName: "Living Room", Port: 8928})
	defer mgr.Stop()

	service, err := mgr.Service([]net.IP{net.ParseIP("192.168.1.20")})
	require.NoError(t, err)
	assert.Equal(t, "Living Room", service.Instance)
	assert.Equal(t, ServiceType, service.Service)
	assert.Equal(t, 8928, service.Port)
	assert.Equal(t, []string{PathTXT}, service.TXT)
}

func TestGetLocalIPsSkipsLoopback(t *testing.T) {
	ips, err := getLocalIPs()
	require.NoError(t, err)
	for _, ip := range ips {
		assert.False(t, ip.IsLoopback())
		assert.NotNil(t, ip.To4())
	}
}
