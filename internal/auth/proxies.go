package auth

import (
	"net/netip"
	"strings"

	"github.com/Commvault/commvault-mcp-server/pkg/logging"
)

// TrustedProxies is the immutable set of proxy addresses permitted to supply
// an X-Forwarded-For header on behalf of downstream clients.
//
// The set is computed once from configuration at construction and never
// re-parsed; changing the proxy list requires a process restart. An empty
// configuration yields an empty set, so no peer is ever trusted by default.
type TrustedProxies struct {
	addrs map[netip.Addr]struct{}
}

// NewTrustedProxies parses a comma-separated list of proxy IP addresses.
// Malformed entries are logged and skipped; they never make the set and
// never abort startup.
func NewTrustedProxies(configured string) *TrustedProxies {
	tp := &TrustedProxies{addrs: make(map[netip.Addr]struct{})}

	for _, entry := range strings.Split(configured, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			logging.Warn("AuthGate", "Invalid trusted proxy IP in configuration: %s", entry)
			continue
		}
		tp.addrs[addr.Unmap()] = struct{}{}
	}

	if len(tp.addrs) > 0 {
		logging.Info("AuthGate", "Trusting X-Forwarded-For from %d proxy address(es)", len(tp.addrs))
	}
	return tp
}

// IsTrusted reports whether ip is a configured trusted proxy. Unparseable
// input is never trusted.
func (tp *TrustedProxies) IsTrusted(ip string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return false
	}
	_, ok := tp.addrs[addr.Unmap()]
	return ok
}

// Size returns the number of configured proxies.
func (tp *TrustedProxies) Size() int {
	return len(tp.addrs)
}
