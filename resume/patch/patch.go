package patch

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/model"
)

// OpKind names a patch operation.
type OpKind string

const (
	// OpSet replaces the value at path. Applying the same set twice yields the same document.
	OpSet OpKind = "set"
	// OpAppendUnique appends values to the array at path, skipping case-insensitive duplicates.
	OpAppendUnique OpKind = "append_unique"
	// OpRemove deletes the array element or object key at path.
	OpRemove OpKind = "remove"
)

// Op is a single field-path mutation.
type Op struct {
	Op    OpKind `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// Patch is an ordered list of operations describing a mutation that has not been applied yet.
type Patch []Op

// IsEmpty reports whether the patch carries no operations.
func (p Patch) IsEmpty() bool {
	return len(p) == 0
}

// Paths returns the paths touched by the patch in order.
func (p Patch) Paths() []string {
	out := make([]string, 0, len(p))
	for _, op := range p {
		out = append(out, op.Path)
	}
	return out
}

// Set builds a single set operation.
func Set(path string, value any) Op {
	return Op{Op: OpSet, Path: path, Value: value}
}

// AppendUnique builds a single append_unique operation.
func AppendUnique(path string, values ...string) Op {
	return Op{Op: OpAppendUnique, Path: path, Value: values}
}

// Remove builds a single remove operation.
func Remove(path string) Op {
	return Op{Op: OpRemove, Path: path}
}

// SetFieldValue returns a copy of doc with value written at path. doc itself is
// never modified, so the prior snapshot stays available for diffing and undo.
func SetFieldValue(doc model.Document, path string, value any) (model.Document, error) {
	return Apply(doc, Patch{Set(path, value)})
}

// Apply applies every operation of p, in order, to a deep copy of doc.
func Apply(doc model.Document, p Patch) (model.Document, error) {
	tree, err := doc.ToTree()
	if err != nil {
		return model.Document{}, err
	}
	for i, op := range p {
		if err := applyOp(tree, op); err != nil {
			return model.Document{}, fmt.Errorf("patch op %d (%s %s): %w", i, op.Op, op.Path, err)
		}
	}
	out, err := model.FromTree(tree)
	if err != nil {
		return model.Document{}, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	return out, nil
}

func applyOp(tree map[string]any, op Op) error {
	segs, err := parsePath(op.Path)
	if err != nil {
		return err
	}
	switch op.Op {
	case OpSet:
		value, err := normalize(op.Value)
		if err != nil {
			return err
		}
		return setAt(tree, segs, value)
	case OpAppendUnique:
		values, err := normalizeList(op.Value)
		if err != nil {
			return err
		}
		return appendUniqueAt(tree, segs, values)
	case OpRemove:
		return removeAt(tree, segs)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, op.Op)
	}
}

// setAt walks to the parent of the last segment, creating missing objects on the
// way, and writes value. Index == len(array) appends.
func setAt(root map[string]any, segs []segment, value any) error {
	parent, last, err := resolveParent(root, segs, true)
	if err != nil {
		return err
	}
	return assign(parent, last, value, segs)
}

func appendUniqueAt(root map[string]any, segs []segment, values []any) error {
	parent, last, err := resolveParent(root, segs, true)
	if err != nil {
		return err
	}
	current, _ := lookup(parent, last)
	var arr []any
	switch v := current.(type) {
	case nil:
		arr = []any{}
	case []any:
		arr = v
	default:
		return fmt.Errorf("%w: %s is not an array", ErrTypeMismatch, joinPath(segs))
	}
	for _, value := range values {
		if containsFold(arr, value) {
			continue
		}
		arr = append(arr, value)
	}
	return assign(parent, last, arr, segs)
}

func removeAt(root map[string]any, segs []segment) error {
	parent, last, err := resolveParent(root, segs, false)
	if err != nil {
		return err
	}
	if !last.isIndex {
		obj, ok := parent.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s", ErrTypeMismatch, joinPath(segs))
		}
		if _, ok := obj[last.key]; !ok {
			return fmt.Errorf("%w: %s", ErrPathNotFound, joinPath(segs))
		}
		delete(obj, last.key)
		return nil
	}
	holder, ok := parent.(*arrayRef)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTypeMismatch, joinPath(segs))
	}
	arr := holder.get()
	if last.index >= len(arr) {
		return fmt.Errorf("%w: %s", ErrIndexOutOfRange, joinPath(segs))
	}
	next := make([]any, 0, len(arr)-1)
	next = append(next, arr[:last.index]...)
	next = append(next, arr[last.index+1:]...)
	holder.set(next)
	return nil
}

// arrayRef lets callers replace an array stored inside its container.
type arrayRef struct {
	get func() []any
	set func([]any)
}

// resolveParent returns the container that holds the last segment. For index
// segments the container is an *arrayRef so the array can be grown or shrunk.
func resolveParent(root map[string]any, segs []segment, create bool) (any, segment, error) {
	var node any = root
	for i := 0; i < len(segs)-1; i++ {
		seg := segs[i]
		nextIsIndex := segs[i+1].isIndex
		child, err := descend(node, seg, segs[:i+1], create, nextIsIndex)
		if err != nil {
			return nil, segment{}, err
		}
		node = child
	}
	last := segs[len(segs)-1]
	if last.isIndex {
		ref, ok := node.(*arrayRef)
		if !ok {
			return nil, segment{}, fmt.Errorf("%w: %s is not an array", ErrTypeMismatch, joinPath(segs[:len(segs)-1]))
		}
		return ref, last, nil
	}
	obj, ok := unwrap(node).(map[string]any)
	if !ok {
		return nil, segment{}, fmt.Errorf("%w: %s is not an object", ErrTypeMismatch, joinPath(segs[:len(segs)-1]))
	}
	return obj, last, nil
}

// descend moves one segment down. When the following segment is an index the
// returned node is an *arrayRef bound to the child slot.
func descend(node any, seg segment, walked []segment, create, nextIsIndex bool) (any, error) {
	if seg.isIndex {
		ref, ok := node.(*arrayRef)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTypeMismatch, joinPath(walked))
		}
		arr := ref.get()
		if seg.index >= len(arr) {
			return nil, fmt.Errorf("%w: %s", ErrIndexOutOfRange, joinPath(walked))
		}
		idx := seg.index
		child := arr[idx]
		if nextIsIndex {
			inner, ok := child.([]any)
			if !ok {
				return nil, fmt.Errorf("%w: %s is not an array", ErrTypeMismatch, joinPath(walked))
			}
			return &arrayRef{
				get: func() []any { return inner },
				set: func(v []any) { inner = v; ref.get()[idx] = v },
			}, nil
		}
		if _, ok := child.(map[string]any); !ok {
			return nil, fmt.Errorf("%w: %s is not an object", ErrTypeMismatch, joinPath(walked))
		}
		return child, nil
	}

	obj, ok := unwrap(node).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTypeMismatch, joinPath(walked))
	}
	child, exists := obj[seg.key]
	if !exists || child == nil {
		if !create {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, joinPath(walked))
		}
		if nextIsIndex {
			child = []any{}
		} else {
			child = map[string]any{}
		}
		obj[seg.key] = child
	}
	if nextIsIndex {
		if _, ok := child.([]any); !ok {
			return nil, fmt.Errorf("%w: %s is not an array", ErrTypeMismatch, joinPath(walked))
		}
		key := seg.key
		return &arrayRef{
			get: func() []any { return obj[key].([]any) },
			set: func(v []any) { obj[key] = v },
		}, nil
	}
	if _, ok := child.(map[string]any); !ok {
		return nil, fmt.Errorf("%w: %s is not an object", ErrTypeMismatch, joinPath(walked))
	}
	return child, nil
}

func unwrap(node any) any {
	if ref, ok := node.(*arrayRef); ok {
		return ref.get()
	}
	return node
}

func lookup(parent any, last segment) (any, bool) {
	if last.isIndex {
		ref := parent.(*arrayRef)
		arr := ref.get()
		if last.index < len(arr) {
			return arr[last.index], true
		}
		return nil, false
	}
	obj := parent.(map[string]any)
	v, ok := obj[last.key]
	return v, ok
}

func assign(parent any, last segment, value any, segs []segment) error {
	if !last.isIndex {
		parent.(map[string]any)[last.key] = value
		return nil
	}
	ref := parent.(*arrayRef)
	arr := ref.get()
	switch {
	case last.index < len(arr):
		arr[last.index] = value
		ref.set(arr)
	case last.index == len(arr):
		ref.set(append(arr, value))
	default:
		return fmt.Errorf("%w: %s (len %d)", ErrIndexOutOfRange, joinPath(segs), len(arr))
	}
	return nil
}

// normalize converts typed Go values ([]string, structs) into the generic JSON
// shapes used by the tree so comparisons and decoding stay uniform.
func normalize(value any) (any, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: encode value: %v", ErrTypeMismatch, err)
	}
	var out any
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("%w: decode value: %v", ErrTypeMismatch, err)
	}
	return out, nil
}

func normalizeList(value any) ([]any, error) {
	norm, err := normalize(value)
	if err != nil {
		return nil, err
	}
	switch v := norm.(type) {
	case []any:
		return v, nil
	case nil:
		return nil, nil
	default:
		return []any{v}, nil
	}
}

func containsFold(arr []any, value any) bool {
	s, isString := value.(string)
	for _, existing := range arr {
		if isString {
			if es, ok := existing.(string); ok && strings.EqualFold(strings.TrimSpace(es), strings.TrimSpace(s)) {
				return true
			}
			continue
		}
		if reflect.DeepEqual(existing, value) {
			return true
		}
	}
	return false
}

// Get returns the value stored at path in its generic JSON form.
func Get(doc model.Document, path string) (any, error) {
	segs, err := parsePath(path)
	if err != nil {
		return nil, err
	}
	tree, err := doc.ToTree()
	if err != nil {
		return nil, err
	}
	var node any = tree
	for i, seg := range segs {
		switch v := node.(type) {
		case map[string]any:
			if seg.isIndex {
				return nil, fmt.Errorf("%w: %s is not an array", ErrTypeMismatch, joinPath(segs[:i]))
			}
			child, ok := v[seg.key]
			if !ok || child == nil {
				return nil, fmt.Errorf("%w: %s", ErrPathNotFound, joinPath(segs[:i+1]))
			}
			node = child
		case []any:
			if !seg.isIndex {
				return nil, fmt.Errorf("%w: %s is not an object", ErrTypeMismatch, joinPath(segs[:i]))
			}
			if seg.index >= len(v) {
				return nil, fmt.Errorf("%w: %s", ErrIndexOutOfRange, joinPath(segs[:i+1]))
			}
			node = v[seg.index]
		default:
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, joinPath(segs[:i+1]))
		}
	}
	return node, nil
}

// ValidatePath reports whether path is syntactically valid.
func ValidatePath(path string) error {
	_, err := parsePath(path)
	return err
}
