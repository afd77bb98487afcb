package util

import (
	"sort"
	"strings"
)

// ShortName returns the final path segment of a fully-qualified
// resource name. The control plane hands back ARNs like
// "arn:aws:ecs:us-east-1:123456789012:service/my-cluster/web"; only
// the part after the last "/" is meaningful for display.
func ShortName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// SortedShortNames maps a slice of fully-qualified names to their
// short forms, lexically sorted. The input slice is not modified.
func SortedShortNames(names []string) []string {
	short := make([]string, 0, len(names))
	for _, n := range names {
		short = append(short, ShortName(n))
	}
	sort.Strings(short)
	return short
}
