package doc

// Clean returns the document without null values, empty strings and empty
// lists. Children are cleaned first, so a list whose elements all clean away
// is itself dropped and Clean(Clean(d)) equals Clean(d). Zero numbers, false
// and empty records are kept. d is not modified.
func Clean(d Map) Map {
	if d == nil {
		return Map{}
	}
	out, _ := cleanValue(d)
	return out.(Map)
}

func cleanValue(v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case string:
		return t, t != ""
	case Map:
		out := make(Map, len(t))
		for k, x := range t {
			if c, keep := cleanValue(x); keep {
				out[k] = c
			}
		}
		return out, true
	case List:
		out := make(List, 0, len(t))
		for _, x := range t {
			if c, keep := cleanValue(x); keep {
				out = append(out, c)
			}
		}
		return out, len(out) > 0
	}
	return v, true
}
