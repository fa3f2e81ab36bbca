// ABOUTME: mDNS advertisement for the remote control endpoint
// ABOUTME: Lets companion apps on the home network find the player
package discovery

import (
	"context"
	"fmt"
	"net"

	"github.com/hashicorp/mdns"
	"go.uber.org/zap"
)

const (
	// ServiceType is the advertised DNS-SD service
	ServiceType = "_memorylane._tcp"

	// PathTXT tells clients where the websocket lives
	PathTXT = "path=/memorylane"
)

// Config holds discovery configuration
type Config struct {
	ServiceName string
	Port        int
	Logger      *zap.Logger
}

// Manager handles mDNS operations
type Manager struct {
	config Config
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	return &Manager{
		config: config,
		log:    config.Logger.Named("mdns"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Service builds the advertised zone for ips
func (m *Manager) Service(ips []net.IP) (*mdns.MDNSService, error) {
	service, err := mdns.NewMDNSService(
		m.config.ServiceName,
		ServiceType,
		"",
		"",
		m.config.Port,
		ips,
		[]string{PathTXT},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return service, nil
}

// Advertise announces the service until Stop
func (m *Manager) Advertise() error {
	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := m.Service(ips)
	if err != nil {
		return err
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	m.log.Info("advertising mDNS service",
		zap.String("name", m.config.ServiceName),
		zap.Int("port", m.config.Port),
		zap.String("type", ServiceType))

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Stop withdraws the advertisement
func (m *Manager) Stop() {
	m.cancel()
}

// getLocalIPs returns local IPv4 addresses
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
