// Package tenant defines tenant identity and the bit-packed primary-key
// scheme that embeds it. Every tenant-scoped row carries a Key whose top
// bits are the owning tenant's id, so ownership can be derived from the
// key alone without a join or an extra column.
package tenant

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"
)

const (
	// IDBits is the width of the tenant-id field inside a Key.
	IDBits = 17

	// MaxID is the largest valid tenant id (17 bits).
	MaxID = 1<<IDBits - 1

	// TenantShift is the right shift that recovers the tenant id from a Key.
	TenantShift = 47

	millisShift = 5
	randSpace   = 16 // 4 bits of the 5-bit low field
)

// epochMillis is 2022-02-02T00:00:00Z. The 42-bit millisecond field counts
// from here, which keeps it in range for well over a century.
const epochMillis int64 = 1_643_760_000_000

// now is a seam for tests.
var now = time.Now

// ID is a tenant identifier. Valid values fit in 17 bits.
type ID uint32

// Valid reports whether the id fits the Key layout.
func (t ID) Valid() bool { return t <= MaxID }

// Role returns the name of the database role representing this tenant,
// e.g. "tenant_42". The name is a deterministic function of the id so
// provisioning and session scoping always agree on it.
func (t ID) Role() string { return fmt.Sprintf("tenant_%d", t) }

func (t ID) String() string { return strconv.FormatUint(uint64(t), 10) }

// ParseID parses a decimal tenant id and validates its range.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil || v > MaxID {
		return 0, fmt.Errorf("invalid tenant id %q", s)
	}
	return ID(v), nil
}

// Key is a 64-bit row identifier:
//
//	bits 63..47  tenant id (17 bits)
//	bits 46..5   milliseconds since 2022-02-02T00:00:00Z (42 bits)
//	bits  4..0   random disambiguator (4 bits used)
//
// Keys are stored in BIGINT columns; Int64 reinterprets the bits for the
// driver, KeyFromInt64 reverses it on scan.
type Key uint64

// NewKey generates a fresh Key owned by the given tenant. It is safe to
// call concurrently without coordination: uniqueness within a tenant and
// millisecond rests on the random disambiguator, and the primary-key
// constraint is the backstop that turns the rare collision into an error
// instead of silent loss.
func NewKey(t ID) (Key, error) {
	if !t.Valid() {
		return 0, fmt.Errorf("tenant id %d out of range", t)
	}
	millis := uint64(now().UnixMilli() - epochMillis)
	return Key(uint64(t)<<TenantShift | millis<<millisShift | uint64(rand.IntN(randSpace))), nil
}

// Tenant returns the id of the tenant owning this key. Total, never fails.
func (k Key) Tenant() ID { return ID(k >> TenantShift) }

// Int64 returns the key as the signed value stored in a BIGINT column.
// Keys for tenants >= 65536 set bit 63 and come out negative; the bits
// are preserved either way.
func (k Key) Int64() int64 { return int64(k) }

// KeyFromInt64 reinterprets a BIGINT column value as a Key.
func KeyFromInt64(v int64) Key { return Key(uint64(v)) }

func (k Key) String() string { return strconv.FormatUint(uint64(k), 10) }
