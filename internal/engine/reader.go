package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
)

// ErrInterfaceNotFound indicates no interface table entry matched the name.
var ErrInterfaceNotFound = errors.New("could not find interface in the device's interface table")

// Reader reads interface state from a device through a Client.
type Reader struct {
	client       Client
	highCapacity bool
}

// NewReader creates a Reader. When highCapacity is false the 32-bit
// ifIn/OutOctets counters are read instead of the IF-MIB HC counters.
func NewReader(client Client, highCapacity bool) *Reader {
	return &Reader{client: client, highCapacity: highCapacity}
}

// ResolveIndex finds the ifIndex whose ifDescr matches name case-insensitively,
// falling back to ifName. The lowest matching index wins.
func (r *Reader) ResolveIndex(name string) (InterfaceHandle, error) {
	for _, column := range []string{OIDifDescr, OIDifName} {
		walk, err := r.client.Walk(column)
		if err != nil {
			return InterfaceHandle{}, err
		}
		idx, _, ok := Lookup(IndexTable(walk, column), func(_ int, pdu gosnmp.SnmpPDU) bool {
			return strings.EqualFold(strings.TrimSpace(pduString(pdu)), name)
		})
		if ok {
			return InterfaceHandle{Name: name, Index: idx}, nil
		}
	}
	return InterfaceHandle{}, fmt.Errorf("%w: %q", ErrInterfaceNotFound, name)
}

// OperStatus reads ifOperStatus for the interface.
func (r *Reader) OperStatus(index int) (OperStatus, error) {
	v, err := r.getUint(instanceOID(OIDifOperStatus, index))
	if err != nil {
		return OperUnknown, err
	}
	return OperStatusFromCode(v), nil
}

// Duplex locates the dot3StatsTable row whose dot3StatsIndex equals the
// interface index and reads its duplex status. Devices without such a row
// report DuplexUnsupported.
func (r *Reader) Duplex(index int) (Duplex, error) {
	walk, err := r.client.Walk(OIDdot3StatsIndex)
	if err != nil {
		return DuplexUnknown, err
	}
	row, _, ok := Lookup(IndexTable(walk, OIDdot3StatsIndex), func(_ int, pdu gosnmp.SnmpPDU) bool {
		v, err := pduUint(pdu)
		return err == nil && v == uint64(index)
	})
	if !ok {
		return DuplexUnsupported, nil
	}

	code, err := r.getUint(instanceOID(OIDdot3StatsDuplexStatus, row))
	if err != nil {
		return DuplexUnknown, err
	}
	return DuplexFromCode(code), nil
}

// NominalSpeed returns the interface's advertised bit rate. ifSpeed saturates
// at 2^32-1, in which case ifHighSpeed (Mb/s) is used.
func (r *Reader) NominalSpeed(index int) (uint64, error) {
	bps, err := r.getUint(instanceOID(OIDifSpeed, index))
	if err != nil {
		return 0, err
	}
	if bps < math.MaxUint32 {
		return bps, nil
	}

	mbps, err := r.getUint(instanceOID(OIDifHighSpeed, index))
	if err != nil {
		return 0, err
	}
	return mbps * 1_000_000, nil
}

// Counters reads the inbound and outbound octet counters in one request.
func (r *Reader) Counters(index int) (CounterSample, error) {
	inCol, outCol := OIDifHCInOctets, OIDifHCOutOctets
	if !r.highCapacity {
		inCol, outCol = OIDifInOctets, OIDifOutOctets
	}
	inOID, outOID := instanceOID(inCol, index), instanceOID(outCol, index)

	result, err := r.client.Get(inOID, outOID)
	if err != nil {
		return CounterSample{}, err
	}

	cs := CounterSample{Timestamp: time.Now()}
	if cs.InOctets, err = uintFrom(result, inOID); err != nil {
		return CounterSample{}, err
	}
	if cs.OutOctets, err = uintFrom(result, outOID); err != nil {
		return CounterSample{}, err
	}
	return cs, nil
}

func (r *Reader) getUint(oid string) (uint64, error) {
	result, err := r.client.Get(oid)
	if err != nil {
		return 0, err
	}
	return uintFrom(result, oid)
}

func uintFrom(result map[string]gosnmp.SnmpPDU, oid string) (uint64, error) {
	pdu, ok := result[oid]
	if !ok {
		return 0, fmt.Errorf("%s: %w", oid, ErrNoValue)
	}
	return pduUint(pdu)
}
