// Package probe implements the connection validator against a live DNS
// backend.
package probe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"time"

	"github.com/poyrazK/zonecontrol/internal/core/domain"
	"github.com/poyrazK/zonecontrol/internal/dns/packet"
	"github.com/poyrazK/zonecontrol/internal/infrastructure/metrics"
)

const DefaultTimeout = 5 * time.Second

// DNSProbe checks a zone's primary and transfer servers by asking each for
// the zone's SOA record over TCP.
type DNSProbe struct {
	timeout time.Duration
	logger  *slog.Logger
}

func NewDNSProbe(timeout time.Duration, logger *slog.Logger) *DNSProbe {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &DNSProbe{timeout: timeout, logger: logger}
}

// ValidateZoneConnections probes every connection the zone carries. Absent
// connections are skipped; the first failure aborts.
func (p *DNSProbe) ValidateZoneConnections(ctx context.Context, zone domain.Zone) error {
	for _, conn := range []*domain.ZoneConnection{zone.Connection, zone.TransferConnection} {
		if conn == nil {
			continue
		}
		if err := p.check(ctx, zone.Name, conn.PrimaryServer); err != nil {
			metrics.ConnectionProbes.WithLabelValues("failure").Inc()
			p.logger.Warn("zone connection probe failed",
				"zone", zone.Name, "server", conn.PrimaryServer, "error", err)
			return &domain.ConnectionFailedError{Zone: zone, Message: err.Error()}
		}
		metrics.ConnectionProbes.WithLabelValues("success").Inc()
	}
	return nil
}

func (p *DNSProbe) check(ctx context.Context, zoneName, server string) error {
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}

	dialer := net.Dialer{Timeout: p.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", server)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", server, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(p.timeout)); err != nil {
		return err
	}

	id := uint16(rand.Uint32())
	query, err := packet.BuildQuery(id, zoneName, packet.SOA)
	if err != nil {
		return fmt.Errorf("building SOA query for %q: %w", zoneName, err)
	}

	// TCP DNS messages carry a two-byte length prefix.
	framed := make([]byte, 2+len(query))
	framed[0] = byte(len(query) >> 8)
	framed[1] = byte(len(query))
	copy(framed[2:], query)
	if _, err := conn.Write(framed); err != nil {
		return fmt.Errorf("sending query to %s: %w", server, err)
	}

	prefix := make([]byte, 2)
	if _, err := io.ReadFull(conn, prefix); err != nil {
		return fmt.Errorf("reading response from %s: %w", server, err)
	}
	length := int(prefix[0])<<8 | int(prefix[1])
	raw := make([]byte, length)
	if _, err := io.ReadFull(conn, raw); err != nil {
		return fmt.Errorf("reading response from %s: %w", server, err)
	}

	header, err := packet.ParseHeader(raw)
	if err != nil {
		return fmt.Errorf("parsing response from %s: %w", server, err)
	}
	if header.ID != id {
		return fmt.Errorf("response id mismatch from %s", server)
	}
	if !header.Response {
		return fmt.Errorf("%s did not answer the query", server)
	}
	// NXDOMAIN still proves a reachable, answering server; the zone may not
	// exist on the backend yet at connect time.
	if header.ResCode != packet.RcodeNoError && header.ResCode != packet.RcodeNXDomain {
		return fmt.Errorf("%s answered SOA query for %q with rcode %d", server, zoneName, header.ResCode)
	}
	return nil
}
