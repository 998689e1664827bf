//go:build linux

package collect

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/pranshuparmar/portreap/internal/errs"
	"github.com/pranshuparmar/portreap/pkg/model"
)

var tcpStateMap = map[string]model.TCPState{
	"01": model.StateEstablished,
	"02": model.StateSynSent,
	"03": model.StateSynRecv,
	"04": model.StateFinWait1,
	"05": model.StateFinWait2,
	"06": model.StateTimeWait,
	"07": model.StateClose,
	"08": model.StateCloseWait,
	"09": model.StateLastAck,
	"0A": model.StateListen,
	"0B": model.StateClosing,
}

// Sockets enumerates the host socket table from /proc/net and joins
// owners via each process's fd links. Sockets whose owning fd is not
// readable at this privilege level are still returned, with PID 0.
func Sockets() ([]model.RawSocket, error) {
	byInode := make(map[uint64]model.RawSocket)

	parse := func(path string, proto model.Protocol, ipv6 bool) error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Scan() // header

		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) < 10 {
				continue
			}

			localAddr, localPort := parseHexAddr(fields[1], ipv6)
			remoteAddr, remotePort := parseHexAddr(fields[2], ipv6)
			inode, _ := strconv.ParseUint(fields[9], 10, 64)

			rs := model.RawSocket{
				Protocol:  proto,
				LocalAddr: localAddr,
				LocalPort: localPort,
				Inode:     inode,
			}
			if remotePort != 0 {
				rs.RemoteAddr = remoteAddr
				rs.RemotePort = remotePort
			}
			if proto == model.ProtoTCP {
				state, ok := tcpStateMap[fields[3]]
				if !ok {
					state = model.StateUnknown
				}
				rs.State = state
			}

			byInode[inode] = rs
		}
		return scanner.Err()
	}

	// IPv4 TCP is the one table that must be readable; the rest may be
	// absent (e.g. ipv6 disabled) without failing the collection.
	if err := parse("/proc/net/tcp", model.ProtoTCP, false); err != nil {
		return nil, errs.Wrap(err, errs.KindCollectionFailed, "reading /proc/net/tcp")
	}
	parse("/proc/net/tcp6", model.ProtoTCP, true) //nolint:errcheck
	parse("/proc/net/udp", model.ProtoUDP, false) //nolint:errcheck
	parse("/proc/net/udp6", model.ProtoUDP, true) //nolint:errcheck

	owners := socketOwners()

	sockets := make([]model.RawSocket, 0, len(byInode))
	for inode, rs := range byInode {
		rs.PID = owners[inode]
		sockets = append(sockets, rs)
	}
	return sockets, nil
}

// socketOwners maps socket inodes to owning PIDs by walking every
// readable /proc/<pid>/fd. Unreadable fd dirs (other users' processes
// without root) are skipped; their sockets stay ownerless.
func socketOwners() map[uint64]int {
	owners := make(map[uint64]int)

	procs, err := os.ReadDir("/proc")
	if err != nil {
		return owners
	}

	for _, p := range procs {
		if !p.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(p.Name())
		if err != nil {
			continue
		}

		fdPath := fmt.Sprintf("/proc/%d/fd", pid)
		fds, err := os.ReadDir(fdPath)
		if err != nil {
			continue
		}

		for _, fd := range fds {
			link, err := os.Readlink(fmt.Sprintf("%s/%s", fdPath, fd.Name()))
			if err != nil {
				continue
			}
			if !strings.HasPrefix(link, "socket:[") {
				continue
			}
			raw := strings.TrimSuffix(strings.TrimPrefix(link, "socket:["), "]")
			inode, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				continue
			}
			owners[inode] = pid
		}
	}
	return owners
}

// parseHexAddr decodes a /proc/net address of the form ADDR:PORT where
// both halves are hex and the address bytes are little-endian per
// 32-bit group.
func parseHexAddr(raw string, ipv6 bool) (string, int) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 {
		return "", 0
	}
	port, _ := strconv.ParseInt(parts[1], 16, 32)

	b, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", int(port)
	}

	if ipv6 {
		if len(b) != 16 {
			return "::", int(port)
		}
		ip := make(net.IP, 16)
		for i := 0; i < 4; i++ {
			ip[i*4+0] = b[i*4+3]
			ip[i*4+1] = b[i*4+2]
			ip[i*4+2] = b[i*4+1]
			ip[i*4+3] = b[i*4+0]
		}
		return ip.String(), int(port)
	}

	if len(b) < 4 {
		return "", int(port)
	}
	return fmt.Sprintf("%d.%d.%d.%d", b[3], b[2], b[1], b[0]), int(port)
}
