package privnet

import (
	"net"

	"github.com/mycok/rfcFreq/fetcher"
)

// Static and compile-time check to ensure NetDetector implements
// fetcher.PrivateNetworkDetector interface.
var _ fetcher.PrivateNetworkDetector = (*NetDetector)(nil)

var defaultPrivateCIDRs = []string{
	// Loopback.
	"127.0.0.0/8",
	"::1/128",
	// RFC1918 private ranges.
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	// Link-local.
	"169.254.0.0/16",
	"fe80::/10",
	// "This" network, limited broadcast and IPv6 unique local addresses.
	"0.0.0.0/8",
	"255.255.255.255/32",
	"fc00::/7",
}

// Resolver resolves a host name to an IP address.
type Resolver func(network, address string) (*net.IPAddr, error)

// NetDetector checks whether a host name resolves to a private network address.
type NetDetector struct {
	privateNetBlocks []*net.IPNet
	resolve          Resolver
}

// NewDetector returns a NetDetector that treats the loopback, link-local and
// RFC1918 ranges as private.
func NewDetector() (*NetDetector, error) {
	return NewDetectorFromCIDRs(defaultPrivateCIDRs...)
}

// NewDetectorFromCIDRs returns a NetDetector that treats the given CIDR
// blocks as private.
func NewDetectorFromCIDRs(privateNetworkCIDRs ...string) (*NetDetector, error) {
	netBlocks, err := parseCIDRs(privateNetworkCIDRs...)
	if err != nil {
		return nil, err
	}

	return &NetDetector{privateNetBlocks: netBlocks, resolve: net.ResolveIPAddr}, nil
}

// WithResolver replaces the resolver used to look up host names.
func (d *NetDetector) WithResolver(resolve Resolver) *NetDetector {
	d.resolve = resolve

	return d
}

// IsNetworkPrivate reports whether address resolves into one of the private
// network blocks.
func (d *NetDetector) IsNetworkPrivate(address string) (bool, error) {
	ipAddr, err := d.resolve("ip", address)
	if err != nil {
		return false, err
	}

	for _, netBlock := range d.privateNetBlocks {
		if netBlock.Contains(ipAddr.IP) {
			return true, nil
		}
	}

	return false, nil
}

func parseCIDRs(cidrs ...string) ([]*net.IPNet, error) {
	var err error
	ipNets := make([]*net.IPNet, len(cidrs))

	for i, cidr := range cidrs {
		if _, ipNets[i], err = net.ParseCIDR(cidr); err != nil {
			return nil, err
		}
	}

	return ipNets, nil
}
