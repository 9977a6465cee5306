package auth

import (
	"errors"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/Commvault/commvault-mcp-server/pkg/logging"
)

// ErrNoClientIP is returned when the client's network identity cannot be
// determined from the connection. Requests without a resolvable client IP
// are always denied; failing open here would let a caller dodge rate
// limiting by omitting transport identity.
var ErrNoClientIP = errors.New("unable to determine client IP address")

// headerForwardedFor is the de facto standard header proxies use to convey
// the original client address.
const headerForwardedFor = "X-Forwarded-For"

// ClientIdentifier resolves the effective client IP for a request. The
// X-Forwarded-For header is only honored when the direct peer is a
// configured trusted proxy; otherwise any client could spoof its apparent
// address to evade or frame rate limiting.
type ClientIdentifier struct {
	proxies *TrustedProxies
}

// NewClientIdentifier returns a ClientIdentifier using the given proxy set.
func NewClientIdentifier(proxies *TrustedProxies) *ClientIdentifier {
	return &ClientIdentifier{proxies: proxies}
}

// Resolve determines the effective client IP from the transport peer address
// (http.Request.RemoteAddr form, "host:port" or bare host) and the request
// headers.
func (ci *ClientIdentifier) Resolve(remoteAddr string, header http.Header) (string, error) {
	directIP := directIPFromPeer(remoteAddr)
	if directIP == "" {
		return "", ErrNoClientIP
	}

	if ci.proxies.IsTrusted(directIP) {
		if forwarded := header.Get(headerForwardedFor); forwarded != "" {
			// Only the first entry is the original client; the rest is the
			// proxy chain.
			clientIP := strings.TrimSpace(strings.Split(forwarded, ",")[0])
			if isValidIP(clientIP) {
				logging.Debug("AuthGate", "Using X-Forwarded-For IP %s (trusted proxy: %s)", clientIP, directIP)
				return clientIP, nil
			}
			logging.Warn("AuthGate", "Invalid IP in X-Forwarded-For header: %s. Falling back to direct connection IP: %s", clientIP, directIP)
		}
	}

	return directIP, nil
}

// directIPFromPeer extracts the IP from a peer address. RemoteAddr normally
// carries a port, but test servers and exotic listeners may hand over a bare
// host.
func directIPFromPeer(remoteAddr string) string {
	remoteAddr = strings.TrimSpace(remoteAddr)
	if remoteAddr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil && host != "" {
		remoteAddr = host
	}
	if !isValidIP(remoteAddr) {
		return ""
	}
	return remoteAddr
}

func isValidIP(s string) bool {
	_, err := netip.ParseAddr(strings.TrimSpace(s))
	return err == nil
}
