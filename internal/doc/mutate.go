package doc

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// updateFunc receives the value currently stored at the addressed position
// (ok is false when the record has no such key) and returns its replacement.
type updateFunc func(cur any, ok bool) (any, error)

// Get returns the value at p.
func Get(root Map, p Path) (any, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var cur any = root
	segs := p.Segments()
	for depth, seg := range segs {
		switch c := cur.(type) {
		case Map:
			v, ok := c[seg]
			if !ok {
				return nil, &PathError{Path: p.prefix(depth + 1), Err: ErrPathNotFound}
			}
			cur = v
		case List:
			i, err := listIndex(c, seg, p.prefix(depth+1))
			if err != nil {
				return nil, err
			}
			cur = c[i]
		case nil:
			return nil, &PathError{Path: p.prefix(depth), Err: ErrPathNotFound}
		default:
			return nil, &PathError{Path: p.prefix(depth), Err: ErrNotContainer}
		}
	}
	return cur, nil
}

// Len returns the length of the collection at p. An absent or null
// collection has length zero.
func Len(root Map, p Path) (int, error) {
	v, err := Get(root, p)
	if err != nil {
		return 0, err
	}
	switch l := v.(type) {
	case nil:
		return 0, nil
	case List:
		return len(l), nil
	}
	return 0, &PathError{Path: p, Err: ErrNotList}
}

// Set returns a copy of root with the value at p replaced by value.
func Set(root Map, p Path, value any) (Map, error) {
	v := Normalize(value)
	if p == "" {
		m, ok := v.(Map)
		if !ok {
			return nil, &PathError{Path: p, Err: ErrNotRecord}
		}
		return m, nil
	}
	return update(root, p, func(any, bool) (any, error) {
		return v, nil
	})
}

// AppendItem returns a copy of root with item appended to the collection at p.
func AppendItem(root Map, p Path, item any) (Map, error) {
	v := Normalize(item)
	return update(root, p, func(cur any, _ bool) (any, error) {
		l, err := asList(cur, p)
		if err != nil {
			return nil, err
		}
		out := make(List, len(l), len(l)+1)
		copy(out, l)
		return append(out, v), nil
	})
}

// RemoveItem returns a copy of root without the element at index of the
// collection at p.
func RemoveItem(root Map, p Path, index int) (Map, error) {
	return update(root, p, func(cur any, _ bool) (any, error) {
		l, err := asList(cur, p)
		if err != nil {
			return nil, err
		}
		if index < 0 || index >= len(l) {
			return nil, &IndexError{Path: p, Index: index, Len: len(l)}
		}
		return slices.Delete(slices.Clone(l), index, index+1), nil
	})
}

// UpdateItemField returns a copy of root where {field: value} is merged into
// the record at index of the collection at p.
func UpdateItemField(root Map, p Path, index int, field string, value any) (Map, error) {
	if field == "" {
		return nil, &PathError{Path: p.Index(index), Err: ErrEmptyField}
	}
	v := Normalize(value)
	return updateItem(root, p, index, func(item any) (any, error) {
		rec, ok := item.(Map)
		if !ok {
			return nil, &PathError{Path: p.Index(index), Err: ErrNotRecord}
		}
		merged := maps.Clone(rec)
		if merged == nil {
			merged = Map{}
		}
		merged[field] = v
		return merged, nil
	})
}

// ReplaceItem returns a copy of root where the element at index of the
// collection at p is replaced by value.
func ReplaceItem(root Map, p Path, index int, value any) (Map, error) {
	v := Normalize(value)
	return updateItem(root, p, index, func(any) (any, error) {
		return v, nil
	})
}

func updateItem(root Map, p Path, index int, fn func(item any) (any, error)) (Map, error) {
	return update(root, p, func(cur any, _ bool) (any, error) {
		l, err := asList(cur, p)
		if err != nil {
			return nil, err
		}
		if index < 0 || index >= len(l) {
			return nil, &IndexError{Path: p, Index: index, Len: len(l)}
		}
		next, err := fn(l[index])
		if err != nil {
			return nil, err
		}
		out := slices.Clone(l)
		out[index] = next
		return out, nil
	})
}

func update(root Map, p Path, fn updateFunc) (Map, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p == "" {
		return nil, &PathError{Path: p, Err: ErrNotList}
	}
	if root == nil {
		root = Map{}
	}
	out, err := updateIn(root, p, p.Segments(), 0, fn)
	if err != nil {
		return nil, err
	}
	return out.(Map), nil
}

// updateIn copies the container at depth and rebuilds it with the updated
// child. Containers off the path are shared, not copied.
func updateIn(container any, p Path, segs []string, depth int, fn updateFunc) (any, error) {
	seg := segs[depth]
	last := depth == len(segs)-1
	here := p.prefix(depth + 1)

	switch c := container.(type) {
	case Map:
		cur, ok := c[seg]
		var next any
		var err error
		if last {
			next, err = fn(cur, ok)
		} else {
			if cur == nil {
				return nil, &PathError{Path: here, Err: ErrPathNotFound}
			}
			next, err = updateIn(cur, p, segs, depth+1, fn)
		}
		if err != nil {
			return nil, err
		}
		out := make(Map, len(c)+1)
		maps.Copy(out, c)
		out[seg] = next
		return out, nil
	case List:
		i, err := listIndex(c, seg, here)
		if err != nil {
			return nil, err
		}
		var next any
		if last {
			next, err = fn(c[i], true)
		} else {
			if c[i] == nil {
				return nil, &PathError{Path: here, Err: ErrPathNotFound}
			}
			next, err = updateIn(c[i], p, segs, depth+1, fn)
		}
		if err != nil {
			return nil, err
		}
		out := slices.Clone(c)
		out[i] = next
		return out, nil
	}
	return nil, &PathError{Path: p.prefix(depth), Err: ErrNotContainer}
}

func listIndex(l List, seg string, p Path) (int, error) {
	if !isIndex(seg) {
		return 0, &PathError{Path: p, Err: fmt.Errorf("%w: %q is not a list index", ErrPathNotFound, seg)}
	}
	i, err := strconv.Atoi(seg)
	if err != nil || i >= len(l) {
		return 0, &IndexError{Path: p, Index: i, Len: len(l)}
	}
	return i, nil
}

func asList(v any, p Path) (List, error) {
	switch l := v.(type) {
	case nil:
		return nil, nil
	case List:
		return l, nil
	}
	return nil, &PathError{Path: p, Err: ErrNotList}
}
