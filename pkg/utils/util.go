package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var zonePattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// NormalizeZone trims and uppercases a zone code. Zones compare case-insensitively.
func NormalizeZone(zone string) string {
	return strings.ToUpper(strings.TrimSpace(zone))
}

// IsValidZone checks an already normalized zone code
func IsValidZone(zone string) bool {
	return zone != "" && len(zone) <= MAX_ZONE_LENGTH && zonePattern.MatchString(zone)
}

// ParseID converts a path segment to a positive identifier
func ParseID(value string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
