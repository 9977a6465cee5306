package auth

import (
	"errors"
	"net/http"
	"testing"
)

func headerWith(forwardedFor string) http.Header {
	h := http.Header{}
	if forwardedFor != "" {
		h.Set("X-Forwarded-For", forwardedFor)
	}
	return h
}

func TestClientIdentifier_Resolve(t *testing.T) {
	tests := []struct {
		name         string
		proxies      string
		remoteAddr   string
		forwardedFor string
		wantIP       string
		wantErr      error
	}{
		{
			name:       "direct connection without header",
			remoteAddr: "203.0.113.5:51234",
			wantIP:     "203.0.113.5",
		},
		{
			name:       "bare host peer address",
			remoteAddr: "203.0.113.5",
			wantIP:     "203.0.113.5",
		},
		{
			name:         "forwarded header ignored from untrusted peer",
			proxies:      "10.0.0.1",
			remoteAddr:   "203.0.113.9:443",
			forwardedFor: "198.51.100.7",
			wantIP:       "203.0.113.9",
		},
		{
			name:         "forwarded header ignored when no proxies configured",
			remoteAddr:   "203.0.113.9:443",
			forwardedFor: "198.51.100.7",
			wantIP:       "203.0.113.9",
		},
		{
			name:         "forwarded header honored from trusted proxy",
			proxies:      "10.0.0.1",
			remoteAddr:   "10.0.0.1:8443",
			forwardedFor: "203.0.113.5",
			wantIP:       "203.0.113.5",
		},
		{
			name:         "first entry of proxy chain wins",
			proxies:      "10.0.0.1",
			remoteAddr:   "10.0.0.1:8443",
			forwardedFor: "203.0.113.5, 10.0.0.1",
			wantIP:       "203.0.113.5",
		},
		{
			name:         "malformed forwarded entry falls back to peer",
			proxies:      "10.0.0.1",
			remoteAddr:   "10.0.0.1:8443",
			forwardedFor: "evil-garbage, 203.0.113.5",
			wantIP:       "10.0.0.1",
		},
		{
			name:       "trusted proxy without header is its own client",
			proxies:    "10.0.0.1",
			remoteAddr: "10.0.0.1:8443",
			wantIP:     "10.0.0.1",
		},
		{
			name:         "ipv6 peer with port",
			proxies:      "2001:db8::1",
			remoteAddr:   "[2001:db8::1]:8443",
			forwardedFor: "203.0.113.5",
			wantIP:       "203.0.113.5",
		},
		{
			name:       "empty peer address",
			remoteAddr: "",
			wantErr:    ErrNoClientIP,
		},
		{
			name:       "unparseable peer address",
			remoteAddr: "pipe",
			wantErr:    ErrNoClientIP,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ci := NewClientIdentifier(NewTrustedProxies(tt.proxies))

			ip, err := ci.Resolve(tt.remoteAddr, headerWith(tt.forwardedFor))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() unexpected error: %v", err)
			}
			if ip != tt.wantIP {
				t.Errorf("Resolve() = %s, want %s", ip, tt.wantIP)
			}
		})
	}
}
