/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tapescope

import "chainguard.dev/evalview/trace"

// correlator matches asynchronous tool_result events back to the tool_call
// steps they answer.
//
// The protocol carries no mandatory call id, so correlation is keyed on the
// call id when present and the tool name otherwise. Results for a key with
// multiple outstanding calls resolve oldest-first; results with no matching
// key fall back to the most recently appended unresolved step, and finally
// to the last step outright. That fallback mirrors the protocol's own
// assumption of strict call/result interleaving and is a documented
// limitation, not an error.
type correlator struct {
	steps   []*trace.StepTrace
	byKey   map[string][]int
	pending []int
}

// count returns the number of steps recorded so far.
func (c *correlator) count() int {
	return len(c.steps)
}

// call records a new step awaiting its result.
func (c *correlator) call(key string, step *trace.StepTrace) {
	if c.byKey == nil {
		c.byKey = make(map[string][]int)
	}
	idx := len(c.steps)
	c.steps = append(c.steps, step)
	c.byKey[key] = append(c.byKey[key], idx)
	c.pending = append(c.pending, idx)
}

// resolve returns the step a result should be attributed to, removing it
// from the pending set. Returns nil only when no step exists at all.
func (c *correlator) resolve(key string) *trace.StepTrace {
	if key != "" {
		if queue := c.byKey[key]; len(queue) > 0 {
			idx := queue[0]
			c.byKey[key] = queue[1:]
			c.removePending(idx)
			return c.steps[idx]
		}
	}

	if len(c.pending) > 0 {
		idx := c.pending[len(c.pending)-1]
		c.pending = c.pending[:len(c.pending)-1]
		c.removeKeyed(idx)
		return c.steps[idx]
	}

	if len(c.steps) > 0 {
		return c.steps[len(c.steps)-1]
	}
	return nil
}

// finalized returns the ordered step list, never nil.
func (c *correlator) finalized() []*trace.StepTrace {
	if c.steps == nil {
		return []*trace.StepTrace{}
	}
	return c.steps
}

func (c *correlator) removePending(idx int) {
	for i, v := range c.pending {
		if v == idx {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

func (c *correlator) removeKeyed(idx int) {
	for key, queue := range c.byKey {
		for i, v := range queue {
			if v == idx {
				c.byKey[key] = append(queue[:i], queue[i+1:]...)
				return
			}
		}
	}
}
