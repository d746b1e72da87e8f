package source

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/iamkarasik/hardwood/internal/table"
)

// leafColumn builds the typed table column for a finished leaf walk.
func (o *nodeOutput) leafColumn(name string) (table.Column, error) {
	validity := o.validity
	switch o.kind {
	case parquet.Boolean:
		return table.NewBoolColumn(name, o.bools, validity)
	case parquet.Int32:
		return table.NewInt32Column(name, o.i32, validity)
	case parquet.Int64:
		return table.NewInt64Column(name, o.i64, validity)
	case parquet.Float:
		return table.NewFloat32Column(name, o.f32, validity)
	case parquet.Double:
		return table.NewFloat64Column(name, o.f64, validity)
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return table.NewStringColumn(name, o.offsets, o.data, validity)
	default:
		return nil, fmt.Errorf("source: unsupported physical type %s", o.kind)
	}
}

// assemble builds the table column for a projected top-level field from the
// finished leaf walks. Container constructors cross-check that sibling leaf
// walks agree on slot counts.
func (fp *fieldPlan) assemble(rows int64) (table.Column, error) {
	return fp.assembleNode(fp.field, []string{fp.name}, rows)
}

func (fp *fieldPlan) assembleNode(field parquet.Field, path []string, rows int64) (table.Column, error) {
	name := field.Name()
	if field.Leaf() {
		lp := fp.leafByPath(path)
		if lp == nil {
			return nil, fmt.Errorf("source: no walk output for column %s", strings.Join(path, "."))
		}
		return lp.leafOut.leafColumn(name)
	}

	children := field.Fields()
	if len(children) == 1 && children[0].Repeated() && !children[0].Leaf() {
		rep := children[0]
		out := fp.outs[strings.Join(path, ".")]
		if out == nil {
			return nil, fmt.Errorf("source: no container state for column %s", strings.Join(path, "."))
		}
		offsets := table.OffsetsFromLengths(out.lengths)
		switch rep.Name() {
		case "list":
			elems := rep.Fields()
			if len(elems) != 1 {
				return nil, fmt.Errorf("source: column %s: list group has %d children", strings.Join(path, "."), len(elems))
			}
			elem, err := fp.assembleNode(elems[0], extend(path, rep.Name(), elems[0].Name()), rows)
			if err != nil {
				return nil, err
			}
			return table.NewListColumn(name, offsets, out.validity, elem)
		case "key_value":
			keyField := childByName(rep, "key")
			valueField := childByName(rep, "value")
			if keyField == nil || valueField == nil {
				return nil, fmt.Errorf("source: column %s: map group is missing key or value", strings.Join(path, "."))
			}
			keys, err := fp.assembleNode(keyField, extend(path, rep.Name(), "key"), rows)
			if err != nil {
				return nil, err
			}
			values, err := fp.assembleNode(valueField, extend(path, rep.Name(), "value"), rows)
			if err != nil {
				return nil, err
			}
			return table.NewMapColumn(name, offsets, out.validity, keys, values)
		default:
			return nil, fmt.Errorf("source: column %s: unsupported repeated group %q", strings.Join(path, "."), rep.Name())
		}
	}

	cols := make([]table.Column, 0, len(children))
	for _, child := range children {
		col, err := fp.assembleNode(child, extend(path, child.Name()), rows)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	out := fp.outs[strings.Join(path, ".")]
	var validity []bool
	length := int(rows)
	if out != nil {
		validity = out.validity
		length = len(validity)
	} else if len(cols) > 0 {
		length = cols[0].Len()
	}
	return table.NewStructColumn(name, length, validity, cols...)
}

func extend(path []string, parts ...string) []string {
	next := make([]string, 0, len(path)+len(parts))
	next = append(next, path...)
	return append(next, parts...)
}
