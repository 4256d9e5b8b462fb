package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/tonhe/flocheck/internal/identity"
)

// SNMP OIDs read by the probe.
const (
	OIDifDescr       = "1.3.6.1.2.1.2.2.1.2"
	OIDifSpeed       = "1.3.6.1.2.1.2.2.1.5"
	OIDifOperStatus  = "1.3.6.1.2.1.2.2.1.8"
	OIDifInOctets    = "1.3.6.1.2.1.2.2.1.10"
	OIDifOutOctets   = "1.3.6.1.2.1.2.2.1.16"
	OIDifName        = "1.3.6.1.2.1.31.1.1.1.1"
	OIDifHCInOctets  = "1.3.6.1.2.1.31.1.1.1.6"
	OIDifHCOutOctets = "1.3.6.1.2.1.31.1.1.1.10"
	OIDifHighSpeed   = "1.3.6.1.2.1.31.1.1.1.15"

	// EtherLike-MIB dot3StatsTable.
	OIDdot3StatsIndex        = "1.3.6.1.2.1.10.7.2.1.1"
	OIDdot3StatsDuplexStatus = "1.3.6.1.2.1.10.7.2.1.19"

	OIDsysDescr = "1.3.6.1.2.1.1.1.0"
)

// Client is the read-only SNMP capability the probe consumes. Result maps are
// keyed by OID without a leading dot.
type Client interface {
	Get(oids ...string) (map[string]gosnmp.SnmpPDU, error)
	Walk(root string) (map[string]gosnmp.SnmpPDU, error)
}

// NewSNMPClient creates a gosnmp.GoSNMP client configured from an Identity.
// Retries are disabled: a failed read is reported, never repeated.
func NewSNMPClient(host string, port int, id *identity.Identity, timeout time.Duration) (*gosnmp.GoSNMP, error) {
	if port == 0 {
		port = 161
	}
	client := &gosnmp.GoSNMP{
		Target:             host,
		Port:               uint16(port),
		Timeout:            timeout,
		Retries:            0,
		MaxOids:            gosnmp.MaxOids,
		MaxRepetitions:     25,
		ExponentialTimeout: false,
	}

	switch id.Version {
	case identity.Version1:
		client.Version = gosnmp.Version1
		client.Community = id.Community
	case identity.Version2c:
		client.Version = gosnmp.Version2c
		client.Community = id.Community
	case identity.Version3:
		client.Version = gosnmp.Version3
		client.SecurityModel = gosnmp.UserSecurityModel
		client.MsgFlags = snmpv3MsgFlags(id)
		client.SecurityParameters = &gosnmp.UsmSecurityParameters{
			UserName:                 id.Username,
			AuthenticationProtocol:   snmpv3AuthProto(id.AuthProto),
			AuthenticationPassphrase: id.AuthPass,
			PrivacyProtocol:          snmpv3PrivProto(id.PrivProto),
			PrivacyPassphrase:        id.PrivPass,
		}
	default:
		return nil, fmt.Errorf("unsupported SNMP version: %s", id.Version)
	}
	return client, nil
}

func snmpv3MsgFlags(id *identity.Identity) gosnmp.SnmpV3MsgFlags {
	if id.PrivProto != "" && id.PrivPass != "" {
		return gosnmp.AuthPriv
	}
	if id.AuthProto != "" && id.AuthPass != "" {
		return gosnmp.AuthNoPriv
	}
	return gosnmp.NoAuthNoPriv
}

func snmpv3AuthProto(proto string) gosnmp.SnmpV3AuthProtocol {
	switch proto {
	case "MD5":
		return gosnmp.MD5
	case "SHA":
		return gosnmp.SHA
	case "SHA256":
		return gosnmp.SHA256
	case "SHA512":
		return gosnmp.SHA512
	default:
		return gosnmp.NoAuth
	}
}

func snmpv3PrivProto(proto string) gosnmp.SnmpV3PrivProtocol {
	switch proto {
	case "DES":
		return gosnmp.DES
	case "AES", "AES128":
		return gosnmp.AES
	case "AES192":
		return gosnmp.AES192
	case "AES256":
		return gosnmp.AES256
	default:
		return gosnmp.NoPriv
	}
}

// Session is a connected SNMP client. It must be closed by the caller on
// every exit path.
type Session struct {
	snmp *gosnmp.GoSNMP
}

// Open builds a client for host from id and connects it. Requests made through
// the session are bound to ctx.
func Open(ctx context.Context, host string, port int, id *identity.Identity, timeout time.Duration) (*Session, error) {
	client, err := NewSNMPClient(host, port, id, timeout)
	if err != nil {
		return nil, err
	}
	client.Context = ctx
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", host, err)
	}
	return &Session{snmp: client}, nil
}

// HighCapacity reports whether 64-bit counters can be read. SNMPv1 has no
// Counter64 type.
func (s *Session) HighCapacity() bool {
	return s.snmp.Version != gosnmp.Version1
}

// Get performs a single GET for all oids.
func (s *Session) Get(oids ...string) (map[string]gosnmp.SnmpPDU, error) {
	packet, err := s.snmp.Get(oids)
	if err != nil {
		return nil, fmt.Errorf("snmp get %s: %w", strings.Join(oids, ","), err)
	}
	if packet.Error != gosnmp.NoError {
		return nil, fmt.Errorf("snmp get %s: agent returned %s", strings.Join(oids, ","), packet.Error)
	}

	result := make(map[string]gosnmp.SnmpPDU, len(packet.Variables))
	for _, pdu := range packet.Variables {
		if err := checkPDU(pdu); err != nil {
			return nil, err
		}
		result[normalizeOID(pdu.Name)] = pdu
	}
	return result, nil
}

// Walk enumerates every value below root. SNMPv1 agents are walked with
// GETNEXT, everything else with GETBULK.
func (s *Session) Walk(root string) (map[string]gosnmp.SnmpPDU, error) {
	var (
		pdus []gosnmp.SnmpPDU
		err  error
	)
	if s.snmp.Version == gosnmp.Version1 {
		pdus, err = s.snmp.WalkAll(root)
	} else {
		pdus, err = s.snmp.BulkWalkAll(root)
	}
	if err != nil {
		return nil, fmt.Errorf("snmp walk %s: %w", root, err)
	}

	result := make(map[string]gosnmp.SnmpPDU, len(pdus))
	for _, pdu := range pdus {
		result[normalizeOID(pdu.Name)] = pdu
	}
	return result, nil
}

// SysDescr reads the device's system description.
func (s *Session) SysDescr() (string, error) {
	res, err := s.Get(OIDsysDescr)
	if err != nil {
		return "", err
	}
	return pduString(res[OIDsysDescr]), nil
}

// Close releases the underlying socket.
func (s *Session) Close() error {
	if s.snmp.Conn == nil {
		return nil
	}
	return s.snmp.Conn.Close()
}
