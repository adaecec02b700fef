// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import "strings"

const sep = "/"

// Key joins parts into a store key
func Key(parts ...string) []byte {
	return []byte(strings.Join(parts, sep))
}

// Prefix returns the scan prefix for keys starting with parts
func Prefix(parts ...string) []byte {
	return []byte(strings.Join(parts, sep) + sep)
}
