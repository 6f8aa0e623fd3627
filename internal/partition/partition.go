package partition

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

// DefaultNameFormat names groups "Group 1", "Group 2", ...
const DefaultNameFormat = "Group %d"

// Partitioner assigns people to groups. It owns its random source and is not
// safe for concurrent use.
type Partitioner struct {
	rng        *rand.Rand
	nameFormat string
	newID      func() string
}

// Option customizes a Partitioner during construction.
type Option func(*Partitioner)

// WithRand overrides the random source, mainly so tests can seed it.
func WithRand(rng *rand.Rand) Option {
	return func(p *Partitioner) {
		if rng != nil {
			p.rng = rng
		}
	}
}

// WithNameFormat sets the fmt pattern used for group names. The pattern must
// contain a single %d verb; anything else is ignored.
func WithNameFormat(format string) Option {
	return func(p *Partitioner) {
		if ValidNameFormat(format) {
			p.nameFormat = format
		}
	}
}

// WithIDGenerator overrides how group and member identifiers are minted.
func WithIDGenerator(fn func() string) Option {
	return func(p *Partitioner) {
		if fn != nil {
			p.newID = fn
		}
	}
}

// New builds a Partitioner seeded from the runtime's random source.
func New(opts ...Option) *Partitioner {
	p := &Partitioner{
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		nameFormat: DefaultNameFormat,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// GroupCount returns how many groups a roster of n people produces for the
// given mode and value. A result <= 0 means no groups are produced.
func GroupCount(n int, mode Mode, value int) int {
	if n <= 0 || value <= 0 {
		return 0
	}
	switch mode {
	case ByGroupCount:
		return min(value, n)
	case ByMemberCount:
		return (n + value - 1) / value
	default:
		return 0
	}
}

// Partition shuffles names, deals them round-robin into groups and then
// rotates a shuffled copy of roles across each group's members. Callers are
// expected to validate the roster and value first; a non-positive group count
// yields an empty result.
func (p *Partitioner) Partition(names []string, mode Mode, value int, roles []Role) []Group {
	count := GroupCount(len(names), mode, value)
	if count <= 0 {
		return nil
	}

	shuffled := append([]string(nil), names...)
	p.shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	groups := make([]Group, count)
	for i := range groups {
		groups[i] = Group{
			ID:      p.newID(),
			Name:    fmt.Sprintf(p.nameFormat, i+1),
			Members: make([]Member, 0, len(shuffled)/count+1),
		}
	}
	for i, name := range shuffled {
		g := &groups[i%count]
		g.Members = append(g.Members, Member{Person: Person{ID: p.newID(), Name: name}})
	}

	for i := range groups {
		p.assignRoles(&groups[i], roles)
	}
	return groups
}

// assignRoles shuffles the group's members and, when roles are available,
// gives member i the role at i mod len(roles) of a freshly shuffled copy.
func (p *Partitioner) assignRoles(g *Group, roles []Role) {
	members := g.Members
	p.shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
	if len(roles) == 0 {
		return
	}
	rotation := append([]Role(nil), roles...)
	p.shuffle(len(rotation), func(i, j int) { rotation[i], rotation[j] = rotation[j], rotation[i] })
	for i := range members {
		role := rotation[i%len(rotation)]
		members[i].Role = &role
	}
}

// shuffle is a Fisher-Yates pass driven by the partitioner's source.
func (p *Partitioner) shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := p.rng.IntN(i + 1)
		swap(i, j)
	}
}

// ValidNameFormat reports whether format renders a group number exactly once.
func ValidNameFormat(format string) bool {
	verbs := 0
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		if i+1 >= len(format) {
			return false
		}
		switch format[i+1] {
		case '%':
		case 'd':
			verbs++
		default:
			return false
		}
		i++
	}
	return verbs == 1
}
