//go:build linux

package collect

import "testing"

func TestParseHexAddr(t *testing.T) {
	tests := []struct {
		raw      string
		ipv6     bool
		wantAddr string
		wantPort int
	}{
		{"0100007F:1388", false, "127.0.0.1", 5000},
		{"00000000:0050", false, "0.0.0.0", 80},
		{"0100007F:0000", false, "127.0.0.1", 0},
		{"00000000000000000000000001000000:1F90", true, "::1", 8080},
		{"00000000000000000000000000000000:0035", true, "::", 53},
		{"garbage", false, "", 0},
	}

	for _, tt := range tests {
		addr, port := parseHexAddr(tt.raw, tt.ipv6)
		if addr != tt.wantAddr || port != tt.wantPort {
			t.Errorf("parseHexAddr(%q, %v) = (%q, %d), want (%q, %d)",
				tt.raw, tt.ipv6, addr, port, tt.wantAddr, tt.wantPort)
		}
	}
}
