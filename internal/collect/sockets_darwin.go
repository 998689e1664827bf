//go:build darwin

package collect

import (
	"os/exec"
	"strconv"
	"strings"

	"github.com/pranshuparmar/portreap/internal/errs"
	"github.com/pranshuparmar/portreap/pkg/model"
)

// Sockets enumerates the host socket table via lsof, which is the only
// portable way to read socket ownership on macOS without entitlements.
func Sockets() ([]model.RawSocket, error) {
	out, err := exec.Command("lsof", "-i", "-P", "-n").Output()
	if err != nil {
		return nil, errs.Wrap(err, errs.KindCollectionFailed, "running lsof")
	}
	return parseLsof(string(out)), nil
}

func parseLsof(out string) []model.RawSocket {
	var sockets []model.RawSocket

	lines := strings.Split(out, "\n")
	start := 0
	if len(lines) > 0 && strings.HasPrefix(lines[0], "COMMAND") {
		start = 1
	}

	for _, line := range lines[start:] {
		fields := strings.Fields(line)
		if len(fields) < 9 {
			continue
		}

		pid, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}

		var proto model.Protocol
		switch {
		case strings.EqualFold(fields[7], "TCP"):
			proto = model.ProtoTCP
		case strings.EqualFold(fields[7], "UDP"):
			proto = model.ProtoUDP
		default:
			continue
		}

		rs := model.RawSocket{Protocol: proto, PID: pid}

		// NAME is "local" or "local->remote"; lsof appends "(STATE)"
		// as a trailing field for TCP.
		name := fields[8]
		local := name
		if idx := strings.Index(name, "->"); idx != -1 {
			local = name[:idx]
			rs.RemoteAddr, rs.RemotePort = parseLsofAddr(name[idx+2:])
		}
		rs.LocalAddr, rs.LocalPort = parseLsofAddr(local)
		if rs.LocalPort == 0 {
			continue
		}

		if proto == model.ProtoTCP {
			rs.State = model.StateUnknown
			if len(fields) > 9 {
				rs.State = model.TCPState(strings.Trim(fields[9], "()"))
			}
		}

		sockets = append(sockets, rs)
	}
	return sockets
}

// parseLsofAddr parses addresses like "*:8080", "127.0.0.1:8080" and
// "[::1]:8080".
func parseLsofAddr(addr string) (string, int) {
	if strings.HasPrefix(addr, "[") {
		end := strings.LastIndex(addr, "]")
		if end == -1 || end+2 > len(addr) {
			return "", 0
		}
		port, err := strconv.Atoi(addr[end+2:])
		if err != nil {
			return "", 0
		}
		ip := addr[1:end]
		if ip == "" {
			ip = "::"
		}
		return ip, port
	}

	idx := strings.LastIndex(addr, ":")
	if idx == -1 {
		return "", 0
	}
	port, err := strconv.Atoi(addr[idx+1:])
	if err != nil {
		return "", 0
	}
	ip := addr[:idx]
	if ip == "*" {
		ip = "0.0.0.0"
	}
	return ip, port
}
