package printer

import (
	"fmt"
	"strings"

	"github.com/coreglyph/swiftsection/internal/swiftdemangle"
	"github.com/coreglyph/swiftsection/pkg/swiftinterface/indexer"
	"github.com/coreglyph/swiftsection/pkg/swiftinterface/symtab"
	"github.com/coreglyph/swiftsection/types/swift"
)

// Printer renders a Definition graph into a (text, semanticType) chunk
// stream. It holds no state about a particular binary beyond the Symbol
// Index needed to drive on-demand indexing; one Printer can render many
// definitions.
type Printer struct {
	symbols *symtab.Storage
	config  Configuration
	cache   *nodeTextCache
}

// New creates a Printer. symbols may be nil if the caller has already fully
// indexed every definition it intends to print (on-demand indexing becomes
// a no-op in that case).
func New(symbols *symtab.Storage, config Configuration) *Printer {
	return &Printer{symbols: symbols, config: config, cache: newNodeTextCache()}
}

func (p *Printer) format(n *swiftdemangle.Node) string {
	return p.cache.format(n)
}

func keywordForKind(kind swift.ContextDescriptorKind) string {
	switch kind {
	case swift.CDKindClass:
		return "class"
	case swift.CDKindStruct:
		return "struct"
	case swift.CDKindEnum:
		return "enum"
	case swift.CDKindProtocol:
		return "protocol"
	case swift.CDKindExtension:
		return "extension"
	case swift.CDKindAnonymous:
		return "anonymous"
	case swift.CDKindOpaqueType:
		return "opaque_type"
	case swift.CDKindModule:
		return "module"
	default:
		return "type"
	}
}

// qualifiedTypeName walks a TypeDefinition's parent chain to build its
// dotted name, the way Type.dump() joins Parent.Name and Name for
// a top-level type (types/swift/types.go).
func qualifiedTypeName(def *indexer.TypeDefinition) string {
	var parts []string
	for d := def; d != nil; d = d.Parent {
		parts = append([]string{d.TypeName}, parts...)
	}
	if def.Parent == nil && def.Type.Parent != nil && def.Type.Parent.Name != "" {
		parts = append([]string{def.Type.Parent.Name}, parts...)
	}
	return strings.Join(parts, ".")
}

// PrintType renders one class/struct/enum declaration, its stored fields,
// and its member functions/variables/subscripts/allocators/constructors.
func (p *Printer) PrintType(def *indexer.TypeDefinition) []Chunk {
	if p.symbols != nil {
		_ = def.Index(p.symbols)
	}
	var s stream
	kw := keywordForKind(def.Type.Kind)
	name := qualifiedTypeName(def)

	if p.config.EmitOffsetComments {
		s.emit(fmt.Sprintf("// %#x", def.Type.Address), standard())
		s.nl()
	}
	s.emit(kw, keyword())
	s.emit(" ", standard())
	s.emit(name, typeRef(kw, name))
	if def.Type.SuperClass != "" {
		s.emit(": ", standard())
		s.emit(def.Type.SuperClass, typeOther(kw))
	}
	var body stream
	wroteBody := p.printFields(&body, def)
	wroteBody = p.printMemberSet(&body, def.MemberSet, "    ") || wroteBody

	if !wroteBody {
		// Matches Type.dump()'s empty-body rendering (types/swift/types.go):
		// "Kind Parent.Name {}" with no interior newline.
		s.emit(" {}", standard())
		return s.take()
	}
	s.emit(" {", standard())
	s.nl()
	for _, c := range body.take() {
		s.emit(c.Text, c.Type)
	}
	s.emit("}", standard())
	return s.take()
}

func (p *Printer) printFields(s *stream, def *indexer.TypeDefinition) bool {
	if len(def.Fields) == 0 {
		return false
	}
	for _, f := range def.Fields {
		prefix := "    "
		if f.IsIndirectCase {
			s.emit(prefix+"indirect case ", keyword())
		} else if def.Type.Kind == swift.CDKindEnum {
			s.emit(prefix+"case ", keyword())
		} else if f.IsLazy {
			s.emit(prefix+"lazy var ", keyword())
		} else if f.IsVariable {
			s.emit(prefix+"var ", keyword())
		} else {
			s.emit(prefix+"let ", keyword())
		}
		s.emit(f.Name, variable())
		if f.MangledType != "" {
			if strings.HasPrefix(f.MangledType, "symbolic ") {
				s.emit(" = ", standard())
				s.emit(f.MangledType[len("symbolic "):]+"()", typeOther(""))
			} else {
				s.emit(": ", standard())
				s.emit(f.MangledType, typeOther(""))
			}
		}
		if f.IsWeak {
			s.emit(" /* weak */", other())
		}
		if p.config.PrintTypeLayout || (p.config.PrintEnumLayout && def.Type.Kind == swift.CDKindEnum) {
			s.emit(fmt.Sprintf("  // offset %#x", def.Type.Address), standard())
		}
		s.nl()
	}
	return true
}

// printMemberSet renders variables, subscripts, functions, allocators and
// constructors shared by types, protocols, and extensions. Returns whether
// it wrote anything.
func (p *Printer) printMemberSet(s *stream, ms indexer.MemberSet, indent string) bool {
	wrote := false
	for _, v := range ms.Variables {
		p.printVariable(s, v, indent, false)
		wrote = true
	}
	for _, v := range ms.StaticVariables {
		p.printVariable(s, v, indent, true)
		wrote = true
	}
	for _, sub := range ms.Subscripts {
		p.printSubscript(s, sub, indent, false)
		wrote = true
	}
	for _, sub := range ms.StaticSubscripts {
		p.printSubscript(s, sub, indent, true)
		wrote = true
	}
	for _, f := range ms.Allocators {
		if p.printFunction(s, f, indent, "init", true) {
			wrote = true
		}
	}
	for _, f := range ms.Constructors {
		if p.printFunction(s, f, indent, "init", f.IsStatic) {
			wrote = true
		}
	}
	for _, f := range ms.Functions {
		if p.printFunction(s, f, indent, "func", false) {
			wrote = true
		}
	}
	for _, f := range ms.StaticFunctions {
		if p.printFunction(s, f, indent, "func", true) {
			wrote = true
		}
	}
	if ms.HasDeallocator {
		s.emit(indent+"deinit", keyword())
		s.emit(" /* deallocator */", other())
		s.nl()
		wrote = true
	}
	if ms.HasDestructor {
		s.emit(indent+"deinit", keyword())
		s.nl()
		wrote = true
	}
	return wrote
}

func (p *Printer) printVariable(s *stream, v indexer.VariableDefinition, indent string, static bool) {
	if static {
		s.emit(indent+"static ", keyword())
		s.emit("var ", keyword())
	} else {
		s.emit(indent+"var ", keyword())
	}
	name := v.Name
	if name == "" && v.Node != nil {
		name = p.format(v.Node)
	}
	s.emit(name, variable())
	s.emit(" { ", standard())
	s.emit(strings.Join(accessorKeywords(v.Accessors), " "), keyword())
	s.emit(" }", standard())
	s.nl()
}

func (p *Printer) printSubscript(s *stream, sub indexer.SubscriptDefinition, indent string, static bool) {
	if static {
		s.emit(indent+"static ", keyword())
	} else {
		s.emit(indent, standard())
	}
	s.emit("subscript", keyword())
	s.emit(" { ", standard())
	s.emit(strings.Join(accessorKeywords(sub.Accessors), " "), keyword())
	s.emit(" }", standard())
	s.nl()
}

func accessorKeywords(accessors []indexer.Accessor) []string {
	seen := map[swiftdemangle.NodeKind]bool{}
	var out []string
	for _, a := range accessors {
		var word string
		switch a.Kind {
		case swiftdemangle.KindGetter:
			word = "get"
		case swiftdemangle.KindSetter:
			word = "set"
		case swiftdemangle.KindModifyAccessor:
			word = "_modify"
		case swiftdemangle.KindReadAccessor:
			word = "_read"
		default:
			word = "get"
		}
		if !seen[a.Kind] {
			seen[a.Kind] = true
			out = append(out, word)
		}
	}
	if len(out) == 0 {
		out = []string{"get"}
	}
	return out
}

// printFunction renders one method/initializer/deinitializer line. When the
// member has no resolvable symbol and placeholders are turned off, the whole
// member is left out rather than just its trailing annotation. Reports
// whether it wrote anything so callers can track an empty body correctly.
func (p *Printer) printFunction(s *stream, f indexer.FunctionDefinition, indent, keywordText string, static bool) bool {
	if f.Symbol == "" && !p.config.PrintStrippedSymbolicItem {
		return false
	}

	if p.config.EmitOffsetComments {
		s.emit(indent+fmt.Sprintf("// %#x", f.Offset), standard())
		s.nl()
	}
	if static {
		s.emit(indent+"static ", keyword())
		s.emit(keywordText, keyword())
	} else {
		s.emit(indent+keywordText, keyword())
	}
	if f.Name != "" {
		s.emit(" ", standard())
		s.emit(f.Name, funcDecl())
	}
	s.emit("()", standard())

	if f.Symbol != "" {
		s.emit(fmt.Sprintf(" // %s", f.Symbol), standard())
	} else {
		s.emit(" /* <stripped> */", other())
	}
	s.nl()
	return true
}

// PrintProtocol renders a protocol declaration and its requirements,
// reusing Protocol.dump()'s requirement-rendering rules (types/swift/protocols.go):
// a method requirement prints as "func", everything else as
// "var", both prefixed with "static" when the requirement is non-instance.
func (p *Printer) PrintProtocol(def *indexer.ProtocolDefinition) []Chunk {
	var s stream
	name := def.Name
	if p.config.EmitOffsetComments {
		s.emit(fmt.Sprintf("// %#x", def.Protocol.Address), standard())
		s.nl()
	}
	var body stream
	wrote := false
	for _, req := range def.Protocol.Requirements {
		kindWord := "var"
		if req.Flags.Kind() == swift.PRKindMethodc {
			kindWord = "func"
		}
		if !req.Flags.IsInstance() {
			body.emit("    static ", keyword())
		} else {
			body.emit("    ", standard())
		}
		body.emit(kindWord, keyword())
		body.emit(fmt.Sprintf(" %s", req.Flags.Kind()), standard())
		if p.config.PrintStrippedSymbolicItem {
			if req.DefaultImplementation.IsSet() {
				body.emit(fmt.Sprintf(" // %#x", req.DefaultImplementation.GetAddress()), standard())
			} else {
				body.emit(" /* <stripped> */", other())
			}
		}
		body.nl()
		wrote = true
	}
	wrote = p.printMemberSet(&body, def.MemberSet, "    ") || wrote

	if !wrote {
		s.emit("protocol ", keyword())
		s.emit(name, typeRef("protocol", name))
		s.emit(" {}", standard())
		return s.take()
	}
	s.emit("protocol ", keyword())
	s.emit(name, typeRef("protocol", name))
	s.emit(" {", standard())
	s.nl()
	for _, c := range body.take() {
		s.emit(c.Text, c.Type)
	}
	s.emit("}", standard())
	return s.take()
}

// PrintExtension renders a synthesized "extension X { ... }" block.
func (p *Printer) PrintExtension(def *indexer.ExtensionDefinition) []Chunk {
	if p.symbols != nil {
		_ = def.Index(p.symbols)
	}
	var s stream
	name := ""
	switch {
	case def.ExtensionName.Node != nil:
		name = p.format(def.ExtensionName.Node)
	case len(def.Types) > 0:
		name = qualifiedTypeName(def.Types[0])
	case len(def.Protocols) > 0:
		name = def.Protocols[0].Name
	}

	var body stream
	wrote := p.printMemberSet(&body, def.MemberSet, "    ")
	if def.AssociatedType != nil {
		for _, rec := range def.AssociatedType.TypeRecords {
			body.emit(fmt.Sprintf("    typealias %s = ", rec.Name), keyword())
			body.emit(rec.SubstitutedTypeName, typeOther(""))
			body.nl()
			wrote = true
		}
	}
	if p.config.PrintStrippedSymbolicItem {
		for _, missing := range def.MissingSymbolWitnesses {
			body.emit(fmt.Sprintf("    /* <stripped> %s */", missing), other())
			body.nl()
			wrote = true
		}
	}

	s.emit("extension ", keyword())
	s.emit(name, typeRef("extension", name))
	if def.ProtocolConformance != nil {
		s.emit(": ", standard())
		s.emit(def.ProtocolConformance.Protocol, typeOther("protocol"))
	}
	if !wrote {
		s.emit(" {}", standard())
		return s.take()
	}
	s.emit(" {", standard())
	s.nl()
	for _, c := range body.take() {
		s.emit(c.Text, c.Type)
	}
	s.emit("}", standard())
	return s.take()
}

// PrintGlobalFunction renders one top-level function declaration.
func (p *Printer) PrintGlobalFunction(f indexer.FunctionDefinition) []Chunk {
	var s stream
	p.printFunction(&s, f, "", "func", false)
	return s.take()
}

// PrintGlobalVariable renders one top-level stored/computed variable.
func (p *Printer) PrintGlobalVariable(v indexer.VariableDefinition) []Chunk {
	var s stream
	p.printVariable(&s, v, "", false)
	return s.take()
}

// PrintInterface renders the whole indexed graph in a fixed, deterministic
// order: root types depth-first, root protocols, type/protocol/conformance
// extensions, then global functions and variables.
func (p *Printer) PrintInterface(ix *indexer.Indexer) []Chunk {
	var out []Chunk
	for _, def := range ix.RootTypeDefinitions() {
		out = append(out, p.PrintType(def)...)
		out = append(out, Chunk{Text: "\n\n", Type: standard()})
	}
	for _, def := range ix.RootProtocolDefinitions() {
		out = append(out, p.PrintProtocol(def)...)
		out = append(out, Chunk{Text: "\n\n", Type: standard()})
	}
	for _, ext := range ix.TypeExtensionDefinitions() {
		out = append(out, p.PrintExtension(ext)...)
		out = append(out, Chunk{Text: "\n\n", Type: standard()})
	}
	for _, ext := range ix.ConformanceExtensionDefinitions() {
		out = append(out, p.PrintExtension(ext)...)
		out = append(out, Chunk{Text: "\n\n", Type: standard()})
	}
	for _, f := range ix.GlobalFunctionDefinitions() {
		out = append(out, p.PrintGlobalFunction(f)...)
	}
	for _, v := range ix.GlobalVariableDefinitions() {
		out = append(out, p.PrintGlobalVariable(v)...)
	}
	return out
}
