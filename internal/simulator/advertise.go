package simulator

import (
	"fmt"

	"github.com/grandcat/zeroconf"

	"github.com/jmylchreest/switcherd/pkg/switcher"
)

// Advertise registers the simulator's gateway over mDNS so that
// switcher.Discover finds it. Call Shutdown on the returned server to stop.
func (s *Switcher) Advertise(instance string, port int) (*zeroconf.Server, error) {
	product := s.Snapshot().ProductName
	server, err := zeroconf.Register(instance, switcher.ServiceType, switcher.Domain, port,
		[]string{"product=" + product}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to advertise %s: %w", instance, err)
	}
	s.logger.Info("simulator: advertising", "instance", instance, "service", switcher.ServiceType, "port", port)
	return server, nil
}
