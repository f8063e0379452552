package swiftdemangle

import (
	"fmt"
)

// DemangleSymbol parses a mangled top-level symbol name into its
// classification tree: a root `global` node whose shape matches one of the
// patterns the Symbol Index pattern-matches against (global function/
// variable, accessor, static member, extension member, allocator/
// constructor/destructor/deallocator, subscript, method-descriptor member,
// protocol-witness member, merged function, or opaque-type descriptor).
//
// The grammar accepted here ("$S" symbols) is a compact, self-contained
// notation for exactly the tree shapes the classification rules distinguish
// — it is not the real Swift mangling grammar. Nothing downstream of the
// Symbol Index depends on byte-for-byte ABI fidelity, only on structurally
// consistent, reproducible trees for equal input strings (see Node.Equal).
//
// Grammar:
//
//	symbol      := '$S' ( wrapper context+ leaf | opaque )
//	wrapper     := 'W' | 'U' | 'J' | ''            // protocolWitness | methodDescriptor | mergedFunction | none
//	context     := ctxKind name ';' | extContext
//	ctxKind     := 'M' | 'C' | 'V' | 'O' | 'P'       // module | class | struct | enum | protocol
//	extContext  := 'X' name ';' ctxKind name ';'     // extendingModule ';' extendedTypeKind extendedTypeName ';'
//	leaf        := 'Z'? payload
//	payload     := 'f' name | 'v' name | 'g' name | 's' name | 'm' name | 'r' name
//	             | 'i' | 'ig' | 'is' | 'a' | 'c' | 'd' | 'D'
//	opaque      := 'K' name ';'
//	name        := any run of bytes excluding ';'
func DemangleSymbol(symbol string) (*Node, error) {
	if len(symbol) < 2 || symbol[0] != '$' || symbol[1] != 'S' {
		return nil, fmt.Errorf("not a language symbol: %q", symbol)
	}
	p := &symbolParser{data: symbol, pos: 2}
	return p.parseRoot()
}

type symbolParser struct {
	data string
	pos  int
}

func (p *symbolParser) eof() bool { return p.pos >= len(p.data) }

func (p *symbolParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.data[p.pos]
}

func (p *symbolParser) consume() byte {
	b := p.data[p.pos]
	p.pos++
	return b
}

func (p *symbolParser) readName() (string, error) {
	start := p.pos
	for !p.eof() && p.data[p.pos] != ';' {
		p.pos++
	}
	if p.eof() {
		return "", fmt.Errorf("unterminated name starting at %d", start)
	}
	name := p.data[start:p.pos]
	p.pos++ // consume ';'
	return name, nil
}

func (p *symbolParser) parseRoot() (*Node, error) {
	if p.peek() == 'K' {
		p.consume()
		name, err := p.readName()
		if err != nil {
			return nil, err
		}
		x := NewNode(KindType, "")
		x.Append(NewNode(KindIdentifier, name))
		root := NewNode(KindGlobal, "")
		opaque := NewNode(KindOpaqueTypeDescriptor, "")
		ret := NewNode(KindOpaqueReturnTypeOf, "")
		ret.Append(x)
		opaque.Append(ret)
		root.Append(opaque)
		return root, nil
	}

	var wrapper byte
	switch p.peek() {
	case 'W', 'U', 'J':
		wrapper = p.consume()
	}

	member, err := p.parseMember()
	if err != nil {
		return nil, err
	}

	root := NewNode(KindGlobal, "")
	switch wrapper {
	case 'W':
		pw := NewNode(KindProtocolWitness, "")
		pw.Append(member)
		root.Append(pw)
	case 'U':
		md := NewNode(KindMethodDescriptor, "")
		md.Append(member)
		root.Append(md)
	case 'J':
		root.Append(NewNode(KindMergedFunction, ""))
		root.Append(member)
	default:
		root.Append(member)
	}
	return root, nil
}

func (p *symbolParser) parseMember() (*Node, error) {
	context, err := p.parseContextChain()
	if err != nil {
		return nil, err
	}

	isStatic := false
	if p.peek() == 'Z' {
		p.consume()
		isStatic = true
	}

	if p.eof() {
		return nil, fmt.Errorf("unexpected end of symbol after context chain")
	}

	var member *Node
	switch p.consume() {
	case 'f':
		name, err := p.readName()
		if err != nil {
			return nil, err
		}
		member = NewNode(KindFunction, "")
		member.Append(context, NewNode(KindIdentifier, name))
	case 'v':
		name, err := p.readName()
		if err != nil {
			return nil, err
		}
		member = NewNode(KindVariable, "")
		member.Append(context, NewNode(KindIdentifier, name))
	case 'g':
		variable, name, err := p.parseAccessorTarget(context)
		if err != nil {
			return nil, err
		}
		_ = name
		member = NewNode(KindGetter, "")
		member.Append(variable)
	case 's':
		variable, name, err := p.parseAccessorTarget(context)
		if err != nil {
			return nil, err
		}
		_ = name
		member = NewNode(KindSetter, "")
		member.Append(variable)
	case 'm':
		variable, name, err := p.parseAccessorTarget(context)
		if err != nil {
			return nil, err
		}
		_ = name
		member = NewNode(KindModifyAccessor, "")
		member.Append(variable)
	case 'r':
		variable, name, err := p.parseAccessorTarget(context)
		if err != nil {
			return nil, err
		}
		_ = name
		member = NewNode(KindReadAccessor, "")
		member.Append(variable)
	case 'i':
		sub := NewNode(KindSubscript, "")
		sub.Append(context)
		switch p.peek() {
		case 'g':
			p.consume()
			member = NewNode(KindGetter, "")
			member.Append(sub)
		case 's':
			p.consume()
			member = NewNode(KindSetter, "")
			member.Append(sub)
		default:
			member = sub
		}
	case 'a':
		member = NewNode(KindAllocator, "")
		member.Append(context)
	case 'c':
		member = NewNode(KindConstructor, "")
		member.Append(context)
	case 'd':
		member = NewNode(KindDestructor, "")
		member.Append(context)
	case 'D':
		member = NewNode(KindDeallocator, "")
		member.Append(context)
	default:
		return nil, fmt.Errorf("unrecognized payload token at %d in %q", p.pos-1, p.data)
	}

	if isStatic {
		static := NewNode(KindStatic, "")
		static.Append(member)
		return static, nil
	}
	return member, nil
}

func (p *symbolParser) parseAccessorTarget(context *Node) (variable *Node, name string, err error) {
	name, err = p.readName()
	if err != nil {
		return nil, "", err
	}
	v := NewNode(KindVariable, "")
	v.Append(context, NewNode(KindIdentifier, name))
	return v, name, nil
}

func (p *symbolParser) parseContextChain() (*Node, error) {
	var current *Node
	for {
		switch p.peek() {
		case 'M', 'C', 'V', 'O', 'P':
			kindByte := p.consume()
			name, err := p.readName()
			if err != nil {
				return nil, err
			}
			kind := contextKind(kindByte)
			node := NewNode(kind, "")
			if current == nil {
				// Root module context: no enclosing context to link.
				node.Append(NewNode(KindIdentifier, name))
			} else {
				node.Append(current, NewNode(KindIdentifier, name))
			}
			current = node
		case 'X':
			p.consume()
			extendingModule, err := p.readName()
			if err != nil {
				return nil, err
			}
			if p.eof() {
				return nil, fmt.Errorf("unexpected end of symbol in extension context at %d", p.pos)
			}
			extendedKindByte := p.consume()
			extendedName, err := p.readName()
			if err != nil {
				return nil, err
			}
			nominal := NewNode(contextKind(extendedKindByte), "")
			nominal.Append(NewNode(KindIdentifier, extendedName))
			ext := NewNode(KindExtension, "")
			mod := NewNode(KindModule, extendingModule)
			ext.Append(mod, nominal)
			current = ext
		default:
			if current == nil {
				return nil, fmt.Errorf("empty context chain at %d in %q", p.pos, p.data)
			}
			return current, nil
		}
	}
}

func contextKind(b byte) NodeKind {
	switch b {
	case 'M':
		return KindModule
	case 'C':
		return KindClass
	case 'V':
		return KindStructure
	case 'O':
		return KindEnum
	case 'P':
		return KindProtocol
	default:
		return KindUnknown
	}
}
