package codemap

// methodBlock is a group of methods declared apart from their owning type,
// such as a Rust impl block.
type methodBlock struct {
	typeName string
	methods  []Declaration
}

// mergeMethods appends each block's methods to the Struct of the same name.
// Blocks with no matching struct become top-level declarations.
func mergeMethods(decls []Declaration, blocks []methodBlock) []Declaration {
	if len(blocks) == 0 {
		return decls
	}

	structs := make(map[string]*Struct)
	for _, d := range decls {
		if s, ok := d.(*Struct); ok {
			if _, seen := structs[s.Name]; !seen {
				structs[s.Name] = s
			}
		}
	}

	for _, b := range blocks {
		if s, ok := structs[b.typeName]; ok {
			s.Methods = append(s.Methods, b.methods...)
			continue
		}
		decls = append(decls, b.methods...)
	}
	return decls
}
