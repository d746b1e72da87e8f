package source

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// nodeOutput accumulates the materialized state of one schema node while a
// leaf column's value stream is walked. Container nodes collect a validity
// mask and per-slot child counts; leaf nodes collect typed values. Each
// output is written by exactly one leaf walk, so walks never share mutable
// state.
type nodeOutput struct {
	optional   bool
	hasLengths bool
	validity   []bool
	lengths    []int32

	kind     parquet.Kind
	nullable bool
	bools    []bool
	i32      []int32
	i64      []int64
	f32      []float32
	f64      []float64
	offsets  []int32
	data     []byte
}

func newContainerOutput(optional, hasLengths bool) *nodeOutput {
	return &nodeOutput{optional: optional, hasLengths: hasLengths}
}

func newLeafOutput(kind parquet.Kind, nullable bool) (*nodeOutput, error) {
	o := &nodeOutput{kind: kind, nullable: nullable}
	switch kind {
	case parquet.Boolean, parquet.Int32, parquet.Int64, parquet.Float, parquet.Double:
	case parquet.ByteArray, parquet.FixedLenByteArray:
		o.offsets = []int32{0}
	default:
		return nil, fmt.Errorf("unsupported physical type %s", kind)
	}
	return o, nil
}

// appendSlot records one container slot: present or null. Wrapper nodes of
// lists and maps also open a zero-length child range for the slot.
func (o *nodeOutput) appendSlot(present bool) {
	if o.optional {
		o.validity = append(o.validity, present)
	}
	if o.hasLengths {
		o.lengths = append(o.lengths, 0)
	}
}

// bumpLength counts one more child slot in the current container slot.
// It reports false when no slot is open, which only happens on a malformed
// level stream.
func (o *nodeOutput) bumpLength() bool {
	if len(o.lengths) == 0 {
		return false
	}
	o.lengths[len(o.lengths)-1]++
	return true
}

func (o *nodeOutput) appendLeaf(v parquet.Value) {
	switch o.kind {
	case parquet.Boolean:
		o.bools = append(o.bools, v.Boolean())
	case parquet.Int32:
		o.i32 = append(o.i32, v.Int32())
	case parquet.Int64:
		o.i64 = append(o.i64, v.Int64())
	case parquet.Float:
		o.f32 = append(o.f32, v.Float())
	case parquet.Double:
		o.f64 = append(o.f64, v.Double())
	case parquet.ByteArray, parquet.FixedLenByteArray:
		o.data = append(o.data, v.ByteArray()...)
		o.offsets = append(o.offsets, int32(len(o.data)))
	}
	if o.nullable {
		o.validity = append(o.validity, true)
	}
}

func (o *nodeOutput) appendLeafNull() {
	switch o.kind {
	case parquet.Boolean:
		o.bools = append(o.bools, false)
	case parquet.Int32:
		o.i32 = append(o.i32, 0)
	case parquet.Int64:
		o.i64 = append(o.i64, 0)
	case parquet.Float:
		o.f32 = append(o.f32, 0)
	case parquet.Double:
		o.f64 = append(o.f64, 0)
	case parquet.ByteArray, parquet.FixedLenByteArray:
		o.offsets = append(o.offsets, int32(len(o.data)))
	}
	if o.nullable {
		o.validity = append(o.validity, false)
	}
}

// walkNode is one step of a leaf column's ancestry with its level
// coordinates. defLevel is the definition level at which the node is
// present; repLevel is the repetition level the node introduces. out is nil
// when another leaf's walk owns the node's state.
type walkNode struct {
	name     string
	defLevel int
	repLevel int
	repeated bool
	optional bool
	leaf     bool
	out      *nodeOutput
}

// leafPlan describes one leaf column: its flattened path, the chunk index to
// read, and the ancestry chain its walk materializes.
type leafPlan struct {
	path        []string
	columnIndex int
	maxDef      int
	maxRep      int
	chain       []walkNode
	repIndex    []int
	leafOut     *nodeOutput
	rows        int64
}

func (p *leafPlan) column() string {
	return strings.Join(p.path, ".")
}

// fieldPlan groups the leaf columns under one projected top-level field with
// the container outputs they share. Every container node is assigned to the
// first leaf whose path passes through it.
type fieldPlan struct {
	field  parquet.Field
	name   string
	leaves []*leafPlan
	outs   map[string]*nodeOutput
}

func (fp *fieldPlan) leafByPath(path []string) *leafPlan {
	key := strings.Join(path, ".")
	for _, lp := range fp.leaves {
		if lp.column() == key {
			return lp
		}
	}
	return nil
}

// planField enumerates the leaf columns under the field and builds a walk
// plan for each.
func planField(schema *parquet.Schema, field parquet.Field) (*fieldPlan, error) {
	fp := &fieldPlan{
		field: field,
		name:  field.Name(),
		outs:  make(map[string]*nodeOutput),
	}
	for _, path := range schema.Columns() {
		if len(path) == 0 || path[0] != field.Name() {
			continue
		}
		lp, err := fp.planLeaf(schema, path)
		if err != nil {
			return nil, err
		}
		fp.leaves = append(fp.leaves, lp)
	}
	if len(fp.leaves) == 0 {
		return nil, fmt.Errorf("source: column %q has no leaf columns", field.Name())
	}
	return fp, nil
}

// planLeaf walks the schema down one leaf path, computing each node's level
// coordinates and assigning container state to this leaf where no earlier
// leaf claimed it.
func (fp *fieldPlan) planLeaf(schema *parquet.Schema, path []string) (*leafPlan, error) {
	leaf, ok := schema.Lookup(path...)
	if !ok {
		return nil, fmt.Errorf("source: column %s not found in schema", strings.Join(path, "."))
	}
	lp := &leafPlan{
		path:        path,
		columnIndex: leaf.ColumnIndex,
		maxDef:      leaf.MaxDefinitionLevel,
		maxRep:      leaf.MaxRepetitionLevel,
	}

	node := parquet.Node(schema)
	def, rep := 0, 0
	chain := make([]walkNode, 0, len(path))
	for _, name := range path {
		child := childByName(node, name)
		if child == nil {
			return nil, fmt.Errorf("source: column %s not found in schema", lp.column())
		}
		wn := walkNode{name: name}
		switch {
		case child.Repeated():
			rep++
			def++
			wn.repeated = true
		case child.Optional():
			def++
			wn.optional = true
		}
		wn.defLevel = def
		wn.repLevel = rep
		wn.leaf = child.Leaf()
		chain = append(chain, wn)
		node = child
	}
	if def != leaf.MaxDefinitionLevel || rep != leaf.MaxRepetitionLevel {
		return nil, fmt.Errorf("source: column %s: computed levels (%d,%d) disagree with schema (%d,%d)",
			lp.column(), def, rep, leaf.MaxDefinitionLevel, leaf.MaxRepetitionLevel)
	}

	for j := range chain {
		wn := &chain[j]
		key := strings.Join(path[:j+1], ".")
		isWrapper := j+1 < len(chain) && chain[j+1].repeated
		switch {
		case wn.repeated && wn.leaf:
			return nil, fmt.Errorf("source: column %s: repeated leaf layout is not supported", lp.column())
		case wn.repeated:
			if j == 0 {
				return nil, fmt.Errorf("source: column %s: repeated group without a wrapper is not supported", lp.column())
			}
			wn.out = chain[j-1].out
		case wn.leaf:
			out, err := newLeafOutput(leaf.Node.Type().Kind(), wn.defLevel > 0)
			if err != nil {
				return nil, fmt.Errorf("source: column %s: %v", lp.column(), err)
			}
			lp.leafOut = out
			wn.out = out
		case isWrapper:
			if _, seen := fp.outs[key]; !seen {
				out := newContainerOutput(wn.optional, true)
				fp.outs[key] = out
				wn.out = out
			}
		case wn.optional:
			if _, seen := fp.outs[key]; !seen {
				out := newContainerOutput(true, false)
				fp.outs[key] = out
				wn.out = out
			}
		}
	}

	lp.chain = chain
	lp.repIndex = make([]int, rep+1)
	for i := range lp.repIndex {
		lp.repIndex[i] = -1
	}
	for j := range chain {
		if chain[j].repeated {
			lp.repIndex[chain[j].repLevel] = j
		}
	}
	return lp, nil
}

func childByName(node parquet.Node, name string) parquet.Field {
	for _, f := range node.Fields() {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// levelWalker reconstructs one leaf column and the container nodes assigned
// to it from the leaf's flattened value stream. A value's repetition level
// says where the record tree is re-entered: zero starts a new row, r>0
// continues the row at the repeated node with that level. The definition
// level says how deep below the entry point the value is present.
type levelWalker struct {
	plan  *leafPlan
	chain []walkNode
	rows  int64
}

func newLevelWalker(plan *leafPlan) *levelWalker {
	return &levelWalker{plan: plan, chain: plan.chain}
}

func (w *levelWalker) feed(v parquet.Value) error {
	r := v.RepetitionLevel()
	d := v.DefinitionLevel()
	if d > w.plan.maxDef {
		return fmt.Errorf("source: column %s: definition level %d out of range", w.plan.column(), d)
	}

	start := 0
	if r == 0 {
		w.rows++
	} else {
		if w.rows == 0 {
			return fmt.Errorf("source: column %s: repetition level %d before first row", w.plan.column(), r)
		}
		if r >= len(w.plan.repIndex) || w.plan.repIndex[r] < 0 {
			return fmt.Errorf("source: column %s: repetition level %d out of range", w.plan.column(), r)
		}
		start = w.plan.repIndex[r]
	}

	for j := start; j < len(w.chain); j++ {
		n := &w.chain[j]
		if d < n.defLevel {
			w.padFrom(j)
			return nil
		}
		if n.out == nil {
			continue
		}
		switch {
		case n.leaf:
			n.out.appendLeaf(v)
		case n.repeated:
			if !n.out.bumpLength() {
				return fmt.Errorf("source: column %s: repeated value without an open slot", w.plan.column())
			}
		default:
			n.out.appendSlot(true)
		}
	}
	return nil
}

// padFrom records null entries for the chain suffix starting at the first
// absent node. Descendants reachable through groups get one null slot each;
// a repeated node ends the walk since an absent or empty collection has no
// element slots.
func (w *levelWalker) padFrom(j int) {
	for k := j; k < len(w.chain); k++ {
		n := &w.chain[k]
		if n.repeated {
			return
		}
		if n.out == nil {
			continue
		}
		if n.leaf {
			n.out.appendLeafNull()
		} else {
			n.out.appendSlot(false)
		}
	}
}
