package switcher

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the DNS-SD service type advertised by switcher gateways.
	ServiceType = "_switcher._tcp"
	// Domain is the mDNS browse domain.
	Domain = "local."
)

// Discovered is a switcher gateway found on the network.
type Discovered struct {
	Instance    string `json:"instance"`
	Host        string `json:"host"`
	Port        int    `json:"port"`
	ProductName string `json:"product_name,omitempty"`
}

// Address returns the host:port address a Session can connect to.
func (d Discovered) Address() string {
	return net.JoinHostPort(d.Host, fmt.Sprint(d.Port))
}

// Discover browses for switcher gateways until timeout elapses or ctx ends.
// Results are sorted by instance name.
func Discover(ctx context.Context, timeout time.Duration, logger *slog.Logger) ([]Discovered, error) {
	if logger == nil {
		logger = slog.Default()
	}

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}

	browseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry, 16)
	found := make(map[string]Discovered)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for entry := range entries {
			d, ok := fromEntry(entry)
			if !ok {
				logger.Debug("discovery: skipping service entry", "instance", entry.Instance, "port", entry.Port)
				continue
			}
			logger.Debug("discovery: found switcher", "instance", d.Instance, "address", d.Address(), "product", d.ProductName)
			found[d.Instance] = d
		}
	}()

	if err := resolver.Browse(browseCtx, ServiceType, Domain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse: %w", err)
	}
	<-browseCtx.Done()
	// zeroconf closes entries once the browse context is done.
	<-done

	out := make([]Discovered, 0, len(found))
	for _, d := range found {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Instance < out[j].Instance })
	return out, nil
}

func fromEntry(entry *zeroconf.ServiceEntry) (Discovered, bool) {
	if entry == nil || entry.Port == 0 {
		return Discovered{}, false
	}
	var host string
	switch {
	case len(entry.AddrIPv4) > 0:
		host = entry.AddrIPv4[0].String()
	case len(entry.AddrIPv6) > 0:
		host = entry.AddrIPv6[0].String()
	default:
		return Discovered{}, false
	}
	return Discovered{
		Instance:    entry.Instance,
		Host:        host,
		Port:        entry.Port,
		ProductName: txtValue(entry.Text, "product"),
	}, true
}

func txtValue(txt []string, key string) string {
	for _, kv := range txt {
		if k, v, ok := strings.Cut(kv, "="); ok && k == key {
			return v
		}
	}
	return ""
}
