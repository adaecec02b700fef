// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IDLen is the length of an ID in bytes: 8 bytes of big-endian unix nanos
// followed by a 16 byte random uuid.
const IDLen = 24

// ID is a time-ordered unique identifier. Byte-wise and hex ordering both
// follow creation time, so IDs double as store key suffixes.
type ID [IDLen]byte

// Empty is the zero ID
var Empty = ID{}

// New creates an ID stamped with t
func New(t time.Time) ID {
	var id ID
	binary.BigEndian.PutUint64(id[:8], uint64(t.UnixNano()))
	u := uuid.New()
	copy(id[8:], u[:])
	return id
}

// GenerateTestID creates an ID stamped with the current time
func GenerateTestID() ID {
	return New(time.Now())
}

// Time returns the creation time encoded in the ID
func (id ID) Time() time.Time {
	return time.Unix(0, int64(binary.BigEndian.Uint64(id[:8]))).UTC()
}

// String returns the hex representation of the ID
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns the byte representation of the ID
func (id ID) Bytes() []byte {
	return id[:]
}

// IsEmpty reports whether the ID is the zero value
func (id ID) IsEmpty() bool {
	return id == Empty
}

// FromString creates an ID from a hex string
func FromString(s string) (ID, error) {
	var id ID
	bytes, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(bytes) != IDLen {
		return id, fmt.Errorf("invalid ID length: expected %d, got %d", IDLen, len(bytes))
	}
	copy(id[:], bytes)
	return id, nil
}

// MarshalText encodes the ID as hex
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText decodes a hex ID
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := FromString(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
