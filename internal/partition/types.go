package partition

import (
	"fmt"
	"strings"
)

// Mode selects how the numeric division value is interpreted.
type Mode int

const (
	// ByGroupCount treats the value as the number of groups to create.
	ByGroupCount Mode = iota
	// ByMemberCount treats the value as the desired size of each group.
	ByMemberCount
)

// String returns the identifier used in config files and CLI flags.
func (m Mode) String() string {
	switch m {
	case ByGroupCount:
		return "by-group-count"
	case ByMemberCount:
		return "by-member-count"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// FriendlyName returns the label shown on the settings screen.
func (m Mode) FriendlyName() string {
	switch m {
	case ByGroupCount:
		return "By number of groups"
	case ByMemberCount:
		return "By group size"
	default:
		return "Unknown"
	}
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m == ByGroupCount || m == ByMemberCount
}

// Person is one roster entry. Names are free text and may repeat.
type Person struct {
	ID   string
	Name string
}

// Role is a user-managed label handed out to group members.
type Role struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Member is a person placed in a group, optionally carrying a role.
type Member struct {
	Person
	Role *Role
}

// RoleName returns the assigned role name or "" when the member has none.
func (m Member) RoleName() string {
	if m.Role == nil {
		return ""
	}
	return m.Role.Name
}

// Group is one output bucket of a partition.
type Group struct {
	ID      string
	Name    string
	Members []Member
}

// Size returns the number of members in the group.
func (g Group) Size() int {
	return len(g.Members)
}

// MemberNames lists the member names in group order.
func (g Group) MemberNames() []string {
	names := make([]string, len(g.Members))
	for i, m := range g.Members {
		names[i] = m.Name
	}
	return names
}

// RoleNames returns the trimmed names of roles, skipping empty entries.
func RoleNames(roles []Role) []string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		if name := strings.TrimSpace(r.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
