package task

import "sync"

// JumpTable is immutable per-switch metadata built once per compiled task
// and cached: a mapping from case value to target step id, plus beyondID,
// the post-switch join step.
type JumpTable struct {
	stepIDs  map[any]int
	beyondID int
}

// NewJumpTable builds a JumpTable from case/stepID pairs.
func NewJumpTable(beyondID int, cases map[any]int) *JumpTable {
	stepIDs := make(map[any]int, len(cases))
	for k, v := range cases {
		stepIDs[k] = v
	}
	return &JumpTable{stepIDs: stepIDs, beyondID: beyondID}
}

// jumpTableCache memoizes JumpTables by step id, mirroring the teacher's
// BasicProvider read-mostly, double-checked-locking map.
type jumpTableCache struct {
	mu     sync.RWMutex
	tables map[int]*JumpTable
}

func newJumpTableCache() *jumpTableCache {
	return &jumpTableCache{tables: make(map[int]*JumpTable)}
}

// getOrBuild returns the cached table for id, building and storing it with
// build if absent.
func (c *jumpTableCache) getOrBuild(id int, build func() *JumpTable) *JumpTable {
	c.mu.RLock()
	jt, ok := c.tables[id]
	c.mu.RUnlock()
	if ok {
		return jt
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if jt, ok = c.tables[id]; ok {
		return jt
	}
	jt = build()
	c.tables[id] = jt
	return jt
}
