package printer

// Configuration recognizes the four printer rendering options.
type Configuration struct {
	// EmitOffsetComments prefixes each declaration with its file offset
	// as a "// 0x..." comment, mirroring the reference tool's Verbose().
	EmitOffsetComments bool

	// PrintTypeLayout appends a "// offset 0x..." comment to each field,
	// holding the owning type record's address; every field of a type gets
	// the same value, and no per-field byte offset is read.
	PrintTypeLayout bool

	// PrintEnumLayout appends the same comment as PrintTypeLayout, but only
	// to the cases of enum types; no per-case payload offset is read.
	PrintEnumLayout bool

	// PrintStrippedSymbolicItem controls whether a function member with no
	// resolvable symbol is printed with a "/* <stripped> */" marker (true)
	// or omitted (false). It also turns on the address or stripped marker
	// after protocol requirements and the stripped lines for extension
	// witnesses with no symbol.
	PrintStrippedSymbolicItem bool
}
