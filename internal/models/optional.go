package models

import (
	"reflect"
	"strings"

	"github.com/meur/guideforge/internal/doc"
)

// optionalStrings holds the patterns of the nullable string fields of Guide
// (banner, title, icon, demo, team description).
var optionalStrings = buildOptionalStrings(reflect.TypeOf(Guide{}))

func buildOptionalStrings(t reflect.Type) map[doc.Path]bool {
	out := make(map[doc.Path]bool)
	var walk func(t reflect.Type, at doc.Path)
	walk = func(t reflect.Type, at doc.Path) {
		switch t.Kind() {
		case reflect.Pointer:
			if t.Elem().Kind() == reflect.String {
				out[at] = true
				return
			}
			walk(t.Elem(), at)
		case reflect.Slice:
			walk(t.Elem(), at.Child("*"))
		case reflect.Struct:
			for i := 0; i < t.NumField(); i++ {
				f := t.Field(i)
				name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
				if name == "" || name == "-" {
					continue
				}
				walk(f.Type, at.Child(name))
			}
		}
	}
	walk(t, "")
	return out
}

// IsOptionalString reports whether p addresses a nullable string field.
func IsOptionalString(p doc.Path) bool {
	return optionalStrings[p.Pattern()]
}

// NullifyOptional returns v as it should be stored at p: empty strings in
// nullable string fields become nil, at p itself or anywhere below it.
// Inputs are not modified.
func NullifyOptional(p doc.Path, v any) any {
	switch t := v.(type) {
	case string:
		if t == "" && IsOptionalString(p) {
			return nil
		}
	case doc.Map:
		out := make(doc.Map, len(t))
		for k, x := range t {
			out[k] = NullifyOptional(p.Child(k), x)
		}
		return out
	case doc.List:
		out := make(doc.List, len(t))
		for i, x := range t {
			out[i] = NullifyOptional(p.Child("*"), x)
		}
		return out
	}
	return v
}
