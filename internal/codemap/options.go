package codemap

// Options controls extraction.
type Options struct {
	// IncludeDocs attaches doc comments and docstrings.
	IncludeDocs bool
	// IncludePrivate keeps non-public declarations, fields and members.
	IncludePrivate bool
}

// keep reports whether a declaration with visibility v survives filtering.
func (o Options) keep(v Visibility) bool {
	return o.IncludePrivate || v == Public
}
