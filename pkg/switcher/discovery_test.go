package switcher

import (
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
	"github.com/stretchr/testify/assert"
)

func TestFromEntry(t *testing.T) {
	entry := zeroconf.NewServiceEntry("studio-a", ServiceType, Domain)
	entry.Port = 9910
	entry.AddrIPv4 = []net.IP{net.ParseIP("192.168.1.20")}
	entry.Text = []string{"version=1", "product=Test Switcher"}

	d, ok := fromEntry(entry)
	assert.True(t, ok)
	assert.Equal(t, "studio-a", d.Instance)
	assert.Equal(t, "192.168.1.20:9910", d.Address())
	assert.Equal(t, "Test Switcher", d.ProductName)
}

func TestFromEntryRejectsIncomplete(t *testing.T) {
	_, ok := fromEntry(nil)
	assert.False(t, ok)

	noPort := zeroconf.NewServiceEntry("a", ServiceType, Domain)
	noPort.AddrIPv4 = []net.IP{net.ParseIP("10.0.0.1")}
	_, ok = fromEntry(noPort)
	assert.False(t, ok)

	noAddr := zeroconf.NewServiceEntry("b", ServiceType, Domain)
	noAddr.Port = 9910
	_, ok = fromEntry(noAddr)
	assert.False(t, ok)
}

func TestFromEntryIPv6(t *testing.T) {
	entry := zeroconf.NewServiceEntry("c", ServiceType, Domain)
	entry.Port = 9910
	entry.AddrIPv6 = []net.IP{net.ParseIP("fe80::1")}

	d, ok := fromEntry(entry)
	assert.True(t, ok)
	assert.Equal(t, "[fe80::1]:9910", d.Address())
	assert.Empty(t, d.ProductName)
}
