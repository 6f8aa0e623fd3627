package partition

import (
	"fmt"
	"strings"
)

// Plan describes the group sizes a partition will produce before any names
// are shuffled.
type Plan struct {
	Groups int
	// Sizes holds one entry per group, largest first, matching the order in
	// which round-robin dealing fills them.
	Sizes []int
}

// Preview computes the plan for n people without touching randomness.
func Preview(n int, mode Mode, value int) Plan {
	count := GroupCount(n, mode, value)
	if count <= 0 {
		return Plan{}
	}
	base, extra := n/count, n%count
	sizes := make([]int, count)
	for i := range sizes {
		sizes[i] = base
		if i < extra {
			sizes[i]++
		}
	}
	return Plan{Groups: count, Sizes: sizes}
}

// Empty reports whether the plan creates no groups.
func (p Plan) Empty() bool {
	return p.Groups <= 0
}

// String renders the plan as e.g. "3 groups: 1 of 3, 2 of 2".
func (p Plan) String() string {
	if p.Empty() {
		return "No groups"
	}
	label := pluralize(p.Groups, "group", "groups")
	first, last := p.Sizes[0], p.Sizes[len(p.Sizes)-1]
	if first == last {
		return fmt.Sprintf("%d %s of %d", p.Groups, label, first)
	}
	larger := 0
	for _, size := range p.Sizes {
		if size == first {
			larger++
		}
	}
	parts := []string{
		fmt.Sprintf("%d of %d", larger, first),
		fmt.Sprintf("%d of %d", p.Groups-larger, last),
	}
	return fmt.Sprintf("%d %s: %s", p.Groups, label, strings.Join(parts, ", "))
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
