package model

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// uidTag is appended to every derived UID so that identifiers cannot
// collide with those of unrelated calendar feeds.
const uidTag = "@coursecal"

// uidSep joins the UID source fields; it is not expected to appear
// inside any of them.
const uidSep = "||"

// DeriveUID produces the stable content-derived identifier for an
// event: a sha1 hex digest over (date, raw start time, title,
// location) plus a fixed domain tag. Identical inputs always yield an
// identical UID, which is what lets consuming calendar applications
// deduplicate events across publishes.
func DeriveUID(date, rawStart, title, location string) string {
	sum := sha1.Sum([]byte(strings.Join([]string{date, rawStart, title, location}, uidSep)))
	return hex.EncodeToString(sum[:]) + uidTag
}
