package engine

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gosnmp/gosnmp"
)

// ErrNoValue indicates the agent has no value for a requested instance.
var ErrNoValue = errors.New("no such object")

// Lookup scans table in ascending key order and returns the first entry for
// which match reports true.
func Lookup[V any](table map[int]V, match func(int, V) bool) (int, V, bool) {
	keys := make([]int, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	for _, k := range keys {
		if match(k, table[k]) {
			return k, table[k], true
		}
	}
	var zero V
	return 0, zero, false
}

// IndexTable converts a walk below root into a table keyed by the single
// trailing index component. Rows with compound or non-numeric indexes are
// skipped.
func IndexTable(walk map[string]gosnmp.SnmpPDU, root string) map[int]gosnmp.SnmpPDU {
	prefix := normalizeOID(root) + "."
	table := make(map[int]gosnmp.SnmpPDU, len(walk))
	for oid, pdu := range walk {
		suffix, ok := strings.CutPrefix(normalizeOID(oid), prefix)
		if !ok {
			continue
		}
		idx, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		table[idx] = pdu
	}
	return table
}

// instanceOID appends an instance index to a column OID.
func instanceOID(column string, index int) string {
	return column + "." + strconv.Itoa(index)
}

func normalizeOID(oid string) string {
	return strings.TrimPrefix(oid, ".")
}

func checkPDU(pdu gosnmp.SnmpPDU) error {
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
		return fmt.Errorf("%s: %w", normalizeOID(pdu.Name), ErrNoValue)
	}
	return nil
}

func pduString(pdu gosnmp.SnmpPDU) string {
	switch v := pdu.Value.(type) {
	case []byte:
		return strings.TrimRight(string(v), "\x00")
	case string:
		return v
	case nil:
		return ""
	default:
		return gosnmp.ToBigInt(v).String()
	}
}

func pduUint(pdu gosnmp.SnmpPDU) (uint64, error) {
	switch pdu.Type {
	case gosnmp.Integer, gosnmp.Counter32, gosnmp.Gauge32, gosnmp.Counter64,
		gosnmp.TimeTicks, gosnmp.Uinteger32:
	default:
		return 0, fmt.Errorf("%s: expected numeric value, got %s", normalizeOID(pdu.Name), pdu.Type)
	}
	n := gosnmp.ToBigInt(pdu.Value)
	if n.Sign() < 0 {
		return 0, fmt.Errorf("%s: negative value %s", normalizeOID(pdu.Name), n)
	}
	return n.Uint64(), nil
}
