// Package partition splits a roster into evenly sized groups and hands out
// roles inside each group by rotating a shuffled role list. A Partitioner is
// intentionally non-deterministic: calling it twice with the same roster
// yields a new arrangement, which is how the "shuffle again" action works.
package partition
