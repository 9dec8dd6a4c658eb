package transport

import (
	"fmt"
	"strings"
)

// Target selects the tax authority environment
type Target string

const (
	TargetTest       Target = "test"
	TargetProduction Target = "production"
)

// ParseTarget parses a target name, case-insensitively.
func ParseTarget(s string) (Target, error) {
	switch Target(strings.ToLower(strings.TrimSpace(s))) {
	case TargetTest:
		return TargetTest, nil
	case TargetProduction:
		return TargetProduction, nil
	default:
		return "", fmt.Errorf("unknown target %q (want %s or %s)", s, TargetTest, TargetProduction)
	}
}

func (t Target) String() string {
	return string(t)
}
