package domain

// CoalesceStr returns the first non-empty string from vals.
func CoalesceStr(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// StrPtr returns nil for an empty string, otherwise a pointer to s.
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StrFromPtr dereferences p, treating nil as "".
func StrFromPtr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
