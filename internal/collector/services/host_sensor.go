package services

import (
	"context"
	"fmt"
	"net"

	"github.com/shirou/gopsutil/v4/host"

	"fleetmon/internal/protocol"
)

// HostResult identifies the reporting host.
type HostResult struct {
	Host protocol.HostInfo
}

type HostSensor struct{}

func NewHostSensor() *HostSensor {
	return &HostSensor{}
}

func (s *HostSensor) Name() string {
	return "Host"
}

func (s *HostSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *HostSensor) Disconnect(ctx context.Context) error {
	return nil
}

func (s *HostSensor) Collect(ctx context.Context) (any, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get host info: %w", err)
	}
	return HostResult{
		Host: protocol.HostInfo{
			Hostname:  info.Hostname,
			IPAddress: outboundIP(),
		},
	}, nil
}

// outboundIP finds the local address a default route would use. No packet
// is sent; UDP dial only resolves the source address. Empty when the host
// has no route.
func outboundIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return firstUnicastIP()
	}
	defer conn.Close()
	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return firstUnicastIP()
}

func firstUnicastIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() || ipNet.IP.To4() == nil {
			continue
		}
		return ipNet.IP.String()
	}
	return ""
}
