package symtab

// GlobalKindTag distinguishes the two root-global payload shapes.
type GlobalKindTag string

const (
	GlobalFunction GlobalKindTag = "function"
	GlobalVariable GlobalKindTag = "variable"
)

// GlobalKind classifies a module-scope symbol. IsStorage is meaningful only when Tag is
// GlobalVariable.
type GlobalKind struct {
	Tag       GlobalKindTag
	IsStorage bool
}

// MemberKindTag distinguishes the member-payload shapes a type, protocol, or
// extension can own.
type MemberKindTag string

const (
	MemberAllocator   MemberKindTag = "allocator"
	MemberDeallocator MemberKindTag = "deallocator"
	MemberConstructor MemberKindTag = "constructor"
	MemberDestructor  MemberKindTag = "destructor"
	MemberSubscript   MemberKindTag = "subscript"
	MemberVariable    MemberKindTag = "variable"
	MemberFunction    MemberKindTag = "function"
)

// MemberKind is the full classification axis for a non-global symbol:
// {kind × static × extension × storage}. InExtension and IsStatic are always
// meaningful; IsStorage only distinguishes stored vs. computed variables and
// is ignored for every other tag.
type MemberKind struct {
	Tag         MemberKindTag
	InExtension bool
	IsStatic    bool
	IsStorage   bool
}

// key renders a MemberKind as a comparable map key component. MemberKind
// itself is already comparable (all fields are), so this is used only where
// a string key is more convenient than a struct key (e.g. ordered-map keys).
func (k MemberKind) key() string {
	b := string(k.Tag)
	if k.InExtension {
		b += "+ext"
	}
	if k.IsStatic {
		b += "+static"
	}
	if k.IsStorage {
		b += "+storage"
	}
	return b
}

// TypeKind is the nominal kind a member's owning type may report.
type TypeKind string

const (
	TypeKindEnum      TypeKind = "enum"
	TypeKindStruct    TypeKind = "struct"
	TypeKindClass     TypeKind = "class"
	TypeKindProtocol  TypeKind = "protocol"
	TypeKindTypeAlias TypeKind = "typeAlias"
)

// TypeInfo is the minimal shape recorded per distinct owning type name.
type TypeInfo struct {
	Name string
	Kind TypeKind
}
