// Package enginetest provides an in-memory SNMP agent for tests.
package enginetest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gosnmp/gosnmp"
)

// Device is a fake engine.Client. Each OID maps to a sequence of values:
// successive GETs advance through the sequence and the last value repeats.
// Walks return the current value of every OID below the root.
type Device struct {
	mu     sync.Mutex
	values map[string][]gosnmp.SnmpPDU
	reads  map[string]int
	errs   map[string]error

	Gets  []string
	Walks []string
}

// NewDevice returns an empty Device.
func NewDevice() *Device {
	return &Device{
		values: make(map[string][]gosnmp.SnmpPDU),
		reads:  make(map[string]int),
		errs:   make(map[string]error),
	}
}

// Set registers one or more successive values for oid.
func (d *Device) Set(oid string, pdus ...gosnmp.SnmpPDU) *Device {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range pdus {
		pdus[i].Name = "." + oid
	}
	d.values[oid] = pdus
	return d
}

// Fail makes every GET or walk touching oid return err.
func (d *Device) Fail(oid string, err error) *Device {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errs[oid] = err
	return d
}

// Get implements engine.Client.
func (d *Device) Get(oids ...string) (map[string]gosnmp.SnmpPDU, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	result := make(map[string]gosnmp.SnmpPDU, len(oids))
	for _, oid := range oids {
		d.Gets = append(d.Gets, oid)
		if err := d.errs[oid]; err != nil {
			return nil, err
		}
		seq, ok := d.values[oid]
		if !ok {
			return nil, fmt.Errorf("%s: no such object", oid)
		}
		n := d.reads[oid]
		if n >= len(seq) {
			n = len(seq) - 1
		}
		d.reads[oid]++
		result[oid] = seq[n]
	}
	return result, nil
}

// Walk implements engine.Client.
func (d *Device) Walk(root string) (map[string]gosnmp.SnmpPDU, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Walks = append(d.Walks, root)
	if err := d.errs[root]; err != nil {
		return nil, err
	}
	result := make(map[string]gosnmp.SnmpPDU)
	for oid, seq := range d.values {
		if strings.HasPrefix(oid, root+".") {
			result[oid] = seq[0]
		}
	}
	return result, nil
}

// Walked reports whether root was walked.
func (d *Device) Walked(root string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, w := range d.Walks {
		if w == root {
			return true
		}
	}
	return false
}

// Integer returns an INTEGER PDU.
func Integer(v int) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Type: gosnmp.Integer, Value: v}
}

// Gauge32 returns a Gauge32 PDU.
func Gauge32(v uint) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Type: gosnmp.Gauge32, Value: v}
}

// Counter32 returns a Counter32 PDU.
func Counter32(v uint) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Type: gosnmp.Counter32, Value: v}
}

// Counter64 returns a Counter64 PDU.
func Counter64(v uint64) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Type: gosnmp.Counter64, Value: v}
}

// OctetString returns an OCTET STRING PDU.
func OctetString(s string) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Type: gosnmp.OctetString, Value: []byte(s)}
}
