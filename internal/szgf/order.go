package szgf

import (
	"reflect"
	"sort"
	"strings"

	"github.com/meur/guideforge/internal/doc"
	"github.com/meur/guideforge/internal/models"
)

// fieldOrder ranks record keys by their position in the typed model, per
// path pattern, so output follows the order authors see in the editor.
var fieldOrder = buildFieldOrder(reflect.TypeOf(models.Guide{}))

func buildFieldOrder(t reflect.Type) map[doc.Path]map[string]int {
	out := make(map[doc.Path]map[string]int)
	var walk func(t reflect.Type, at doc.Path)
	walk = func(t reflect.Type, at doc.Path) {
		switch t.Kind() {
		case reflect.Pointer:
			walk(t.Elem(), at)
		case reflect.Slice:
			walk(t.Elem(), at.Child("*"))
		case reflect.Struct:
			rank := make(map[string]int, t.NumField())
			for i := 0; i < t.NumField(); i++ {
				f := t.Field(i)
				name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
				if name == "" || name == "-" {
					continue
				}
				rank[name] = len(rank)
				walk(f.Type, at.Child(name))
			}
			out[at] = rank
		}
	}
	walk(t, "")
	return out
}

// orderedKeys returns the keys of m: known fields in model order, then the
// rest sorted.
func orderedKeys(m doc.Map, pattern doc.Path) []string {
	rank := fieldOrder[pattern]
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, iok := rank[keys[i]]
		rj, jok := rank[keys[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		}
		return keys[i] < keys[j]
	})
	return keys
}
