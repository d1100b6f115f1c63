// Package flowlet provides a fluent Builder for assembling named stages
// into one bound pipeline, the Go-idiomatic narrowing of the teacher's
// GraphBuilder/PipelineGraph/ValidateGraph machinery (builder.go,
// graph.go, validation.go) down to the case this runtime actually needs:
// a strict linear chain rather than an arbitrary DAG.
package flowlet

import (
	"fmt"

	"github.com/PlumpMath/flowlet/core"
)

// Builder assembles a linear stage chain under named steps, so a caller
// can describe a pipeline declaratively and get back one bound Stage.
// Unlike the teacher's GraphBuilder it carries no Connect/AddFanOut/
// AddBarrier edge machinery — spec.md's pipeline composes purely through
// Then, so there is nothing for a general graph validator to check beyond
// "no name used twice" and "at least one stage was added".
type Builder struct {
	names  []string
	stages []*core.Stage
	seen   map[string]bool
	err    error
}

// NewBuilder starts an empty Builder.
func NewBuilder() *Builder {
	return &Builder{seen: make(map[string]bool)}
}

// Add appends stage as the next step of the chain, under name for
// diagnostics. A name reused within the same Builder is rejected — the
// linear-chain analogue of the teacher's "node %q already exists" check —
// deferred until Build() so calls can still be chained fluently.
func (b *Builder) Add(name string, stage *core.Stage) *Builder {
	if b.err != nil {
		return b
	}
	if b.seen[name] {
		b.err = fmt.Errorf("flowlet: stage %q already added to this builder", name)
		return b
	}
	b.seen[name] = true
	b.names = append(b.names, name)
	b.stages = append(b.stages, stage)
	return b
}

// Names returns the stage names added so far, in chain order.
func (b *Builder) Names() []string {
	return append([]string(nil), b.names...)
}

// Build folds every added stage left to right via Then into a single
// bound Stage. The teacher's Build() runs ValidateGraph (cycle detection,
// reachability, type compatibility) over an arbitrary DAG; none of those
// checks have a counterpart here because a Builder can only ever produce
// a straight line through its own stages in insertion order — there is no
// edge list in which a cycle or an unreachable node could be expressed.
func (b *Builder) Build() (*core.Stage, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.stages) == 0 {
		return nil, fmt.Errorf("flowlet: pipeline must have at least one stage")
	}
	out := b.stages[0]
	for _, s := range b.stages[1:] {
		out = out.Then(s)
	}
	return out, nil
}
