package macho

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/coreglyph/swiftsection/types/swift"
)

const sizeOfRelOffset = 4

// swiftSectionOffsets returns the file offset of each relative-offset entry
// found in __TEXT*.<name>, i.e. the resolved absolute offset each 32-bit
// signed relative integer in that section points at.
func (f *File) swiftSectionOffsets(name string) ([]int64, error) {
	for _, s := range f.Segments() {
		if !strings.HasPrefix(s.Name, "__TEXT") {
			continue
		}
		sec := f.Section(s.Name, name)
		if sec == nil {
			continue
		}
		dat, err := sec.Data()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %v", name, err)
		}
		relOffsets := make([]int32, len(dat)/sizeOfRelOffset)
		if err := binary.Read(bytes.NewReader(dat), f.ByteOrder, &relOffsets); err != nil {
			return nil, fmt.Errorf("failed to read relative offsets in %s: %v", name, err)
		}
		offsets := make([]int64, len(relOffsets))
		for idx, relOff := range relOffsets {
			offsets[idx] = int64(sec.Offset+uint32(idx*sizeOfRelOffset)) + int64(relOff)
		}
		return offsets, nil
	}
	return nil, fmt.Errorf("file does not contain a %s section", name)
}

func (f *File) cstringOrEmpty(off int64) string {
	s, err := f.GetCStringAtOffset(off)
	if err != nil {
		return ""
	}
	return s
}

// readModuleContext decodes the module context descriptor at offset and
// returns its name. This is the only parent-context shape the indexed type
// model resolves directly; non-module parents (a type nested inside another
// type or an extension) are recorded by the Interface Indexer as a separate
// hop rather than being flattened here.
func (f *File) readModuleContext(offset int64) (*swift.TargetModuleContext, error) {
	if _, err := f.sr.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	var tmcd swift.TargetModuleContextDescriptor
	if err := tmcd.Read(f.sr, uint64(offset)); err != nil {
		return nil, fmt.Errorf("failed to read module context descriptor at %#x: %v", offset, err)
	}
	return &swift.TargetModuleContext{
		TargetModuleContextDescriptor: tmcd,
		Name:                          f.cstringOrEmpty(tmcd.NameOffset.GetAddress()),
	}, nil
}

// peekContextDescriptorFlags reads the flags word of the context descriptor
// at offset without otherwise consuming it, so the caller can dispatch to
// the right concrete decoder.
func (f *File) peekContextDescriptorFlags(offset int64) (swift.ContextDescriptorFlags, error) {
	if _, err := f.sr.Seek(offset, io.SeekStart); err != nil {
		return 0, err
	}
	var flags swift.ContextDescriptorFlags
	if err := binary.Read(f.sr, binary.LittleEndian, &flags); err != nil {
		return 0, err
	}
	return flags, nil
}

func (f *File) readParentContext(offset int64, parentOffset swift.RelativeDirectPointer) *swift.TargetModuleContext {
	if !parentOffset.IsSet() {
		return nil
	}
	parentAddr := int64(parentOffset.GetAddress())
	flags, err := f.peekContextDescriptorFlags(parentAddr)
	if err != nil || flags.Kind() != swift.CDKindModule {
		// Nested (non-module) parent: the indexer re-derives this hop from
		// its own working set by address; record nothing further here.
		return nil
	}
	mod, err := f.readModuleContext(parentAddr)
	if err != nil {
		return nil
	}
	return mod
}

// readSwiftType decodes one nominal type context descriptor (class, struct,
// enum, protocol, extension, anonymous context or module) at the given file
// offset.
func (f *File) readSwiftType(offset int64) (*swift.Type, error) {
	flags, err := f.peekContextDescriptorFlags(offset)
	if err != nil {
		return nil, fmt.Errorf("failed to read context descriptor flags at %#x: %v", offset, err)
	}

	typ := &swift.Type{Address: uint64(offset), Kind: flags.Kind()}

	if _, err := f.sr.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}

	switch flags.Kind() {
	case swift.CDKindClass:
		var cd swift.TargetClassDescriptor
		if err := cd.Read(f.sr, uint64(offset)); err != nil {
			return nil, fmt.Errorf("failed to read class descriptor at %#x: %v", offset, err)
		}
		typ.Name = f.cstringOrEmpty(cd.NameOffset.GetAddress())
		typ.AccessFunction = cd.AccessFunctionPtr.GetAddress()
		typ.Parent = f.readParentContext(offset, cd.ParentOffset)
		typ.Generic = f.readGenericHeader(&cd.TargetTypeContextDescriptor, cd.Flags.IsGeneric())
		if cd.SuperclassType.IsSet() {
			typ.SuperClass = f.cstringOrEmpty(cd.SuperclassType.GetAddress())
		}
		if fields, err := f.readFields(cd.FieldsOffset.GetAddress()); err == nil {
			typ.Fields = fields
		}
		if cd.Flags.KindSpecific().HasVTable() {
			typ.VTable = f.readVTable(cd)
		}
		typ.Type = cd
	case swift.CDKindStruct:
		var sd swift.TargetStructDescriptor
		if err := sd.Read(f.sr, uint64(offset)); err != nil {
			return nil, fmt.Errorf("failed to read struct descriptor at %#x: %v", offset, err)
		}
		typ.Name = f.cstringOrEmpty(sd.NameOffset.GetAddress())
		typ.AccessFunction = sd.AccessFunctionPtr.GetAddress()
		typ.Parent = f.readParentContext(offset, sd.ParentOffset)
		typ.Generic = f.readGenericHeader(&sd.TargetTypeContextDescriptor, sd.Flags.IsGeneric())
		if fields, err := f.readFields(sd.FieldsOffset.GetAddress()); err == nil {
			typ.Fields = fields
		}
		typ.Type = sd
	case swift.CDKindEnum:
		var ed swift.TargetEnumDescriptor
		if err := ed.Read(f.sr, uint64(offset)); err != nil {
			return nil, fmt.Errorf("failed to read enum descriptor at %#x: %v", offset, err)
		}
		typ.Name = f.cstringOrEmpty(ed.NameOffset.GetAddress())
		typ.AccessFunction = ed.AccessFunctionPtr.GetAddress()
		typ.Parent = f.readParentContext(offset, ed.ParentOffset)
		typ.Generic = f.readGenericHeader(&ed.TargetTypeContextDescriptor, ed.Flags.IsGeneric())
		if fields, err := f.readFields(ed.FieldsOffset.GetAddress()); err == nil {
			typ.Fields = fields
		}
		typ.Type = ed
	case swift.CDKindExtension:
		var extd swift.TargetExtensionContextDescriptor
		if err := extd.Read(f.sr, uint64(offset)); err != nil {
			return nil, fmt.Errorf("failed to read extension descriptor at %#x: %v", offset, err)
		}
		typ.Name = f.cstringOrEmpty(extd.ExtendedContext.GetAddress())
		typ.Parent = f.readParentContext(offset, extd.ParentOffset)
		typ.Type = extd
	case swift.CDKindAnonymous:
		var and swift.TargetAnonymousContextDescriptor
		if err := and.Read(f.sr, uint64(offset)); err != nil {
			return nil, fmt.Errorf("failed to read anonymous descriptor at %#x: %v", offset, err)
		}
		typ.Parent = f.readParentContext(offset, and.ParentOffset)
		typ.Type = and
	case swift.CDKindModule:
		mod, err := f.readModuleContext(offset)
		if err != nil {
			return nil, err
		}
		typ.Name = mod.Name
		typ.Type = mod.TargetModuleContextDescriptor
	default:
		var tcd swift.TargetTypeContextDescriptor
		if err := tcd.Read(f.sr, uint64(offset)); err != nil {
			return nil, fmt.Errorf("failed to read type context descriptor at %#x: %v", offset, err)
		}
		typ.Name = f.cstringOrEmpty(tcd.NameOffset.GetAddress())
		typ.Parent = f.readParentContext(offset, tcd.ParentOffset)
		typ.Type = tcd
	}

	return typ, nil
}

func (f *File) readGenericHeader(tcd *swift.TargetTypeContextDescriptor, isGeneric bool) *swift.TargetTypeGenericContextDescriptorHeader {
	if !isGeneric {
		return nil
	}
	// The generic context header immediately trails the fixed-size type
	// context descriptor fields.
	off := int64(tcd.FieldsOffset.Address) + sizeOfRelOffset
	if _, err := f.sr.Seek(off, io.SeekStart); err != nil {
		return nil
	}
	var hdr swift.TargetTypeGenericContextDescriptorHeader
	if err := binary.Read(f.sr, binary.LittleEndian, &hdr); err != nil {
		return nil
	}
	return &hdr
}

func (f *File) readVTable(cd swift.TargetClassDescriptor) *swift.VTable {
	off := int64(cd.FieldsOffset.Address) + sizeOfRelOffset
	if cd.Flags.IsGeneric() {
		off += int64(binary.Size(swift.TargetTypeGenericContextDescriptorHeader{}))
		if hdr := f.readGenericHeader(&cd.TargetTypeContextDescriptor, true); hdr != nil {
			off += int64(hdr.Base.NumParams) // best-effort: generic argument packing varies by word size
		}
	}
	if _, err := f.sr.Seek(off, io.SeekStart); err != nil {
		return nil
	}
	var hdr swift.TargetVTableDescriptorHeader
	if err := binary.Read(f.sr, binary.LittleEndian, &hdr); err != nil {
		return nil
	}
	if hdr.VTableSize == 0 || hdr.VTableSize > 4096 {
		return nil
	}
	vt := &swift.VTable{TargetVTableDescriptorHeader: hdr, MethodListAddr: off + 8}
	for i := uint32(0); i < hdr.VTableSize; i++ {
		var md swift.TargetMethodDescriptor
		if err := binary.Read(f.sr, binary.LittleEndian, &md); err != nil {
			break
		}
		m := swift.Method{TargetMethodDescriptor: md}
		if md.Impl != 0 {
			implOff := off + 8 + int64(i)*8 + 4 + int64(md.Impl)
			m.Address = uint64(implOff)
			if sym := f.symbolNameAtOffset(uint64(implOff)); sym != "" {
				m.Symbol = sym
			}
		}
		vt.Methods = append(vt.Methods, m)
	}
	return vt
}

// symbolNameAtOffset performs a best-effort lookup of a defined symbol whose
// address matches a file offset converted back to a virtual address. The
// Symbol Index (pkg/swiftinterface/symtab) is the primary, authoritative
// consumer of symbol-to-address mapping; this helper only fills in vtable
// slot names inline for the benefit of String()/Verbose() dumps.
func (f *File) symbolNameAtOffset(fileOff uint64) string {
	vmAddr, err := f.GetVMAddress(fileOff)
	if err != nil {
		return ""
	}
	for _, sym := range f.Symtab.Syms {
		if sym.Value == vmAddr && sym.Name != "" {
			return sym.Name
		}
	}
	return ""
}

func (f *File) readFields(fieldsAddr uint64) ([]swift.Field, error) {
	if fieldsAddr == 0 {
		return nil, nil
	}
	off := int64(fieldsAddr)
	if _, err := f.sr.Seek(off, io.SeekStart); err != nil {
		return nil, err
	}
	var fd swift.FieldDescriptor
	if err := fd.Read(f.sr, uint64(off)); err != nil {
		return nil, err
	}
	field := swift.Field{
		FieldDescriptor: fd,
		Address:         uint64(off),
	}
	if fd.MangledTypeNameOffset.IsSet() {
		field.Type = f.cstringOrEmpty(fd.MangledTypeNameOffset.GetAddress())
	}
	if fd.SuperclassOffset.IsSet() {
		field.SuperClass = f.cstringOrEmpty(fd.SuperclassOffset.GetAddress())
	}
	recOff := off + int64(fd.Size())
	for i := uint32(0); i < fd.NumFields; i++ {
		if _, err := f.sr.Seek(recOff, io.SeekStart); err != nil {
			break
		}
		var frd swift.FieldRecordDescriptor
		if err := frd.Read(f.sr, uint64(recOff)); err != nil {
			break
		}
		rec := swift.FieldRecord{FieldRecordDescriptor: frd}
		if frd.FieldNameOffset.IsSet() {
			rec.Name = f.cstringOrEmpty(frd.FieldNameOffset.GetAddress())
		}
		if frd.MangledTypeNameOffset.IsSet() {
			rec.MangledType = f.cstringOrEmpty(frd.MangledTypeNameOffset.GetAddress())
		}
		field.Records = append(field.Records, rec)
		recOff += int64(fd.FieldRecordSize)
	}
	return []swift.Field{field}, nil
}

// GetSwiftTypes walks __swift5_types and decodes every nominal type context
// descriptor it references.
func (f *File) GetSwiftTypes() ([]swift.Type, error) {
	offsets, err := f.swiftSectionOffsets("__swift5_types")
	if err != nil {
		return nil, err
	}
	types := make([]swift.Type, 0, len(offsets))
	for _, off := range offsets {
		typ, err := f.readSwiftType(off)
		if err != nil {
			return nil, err
		}
		types = append(types, *typ)
	}
	return types, nil
}

func (f *File) readProtocolAt(offset int64) (*swift.Protocol, error) {
	if _, err := f.sr.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	var pd swift.TargetProtocolDescriptor
	if err := pd.Read(f.sr, uint64(offset)); err != nil {
		return nil, fmt.Errorf("failed to read protocol descriptor at %#x: %v", offset, err)
	}
	proto := &swift.Protocol{
		TargetProtocolDescriptor: pd,
		Address:                  uint64(offset),
		Name:                     f.cstringOrEmpty(pd.NameOffset.GetAddress()),
		Parent:                   f.readParentContext(offset, pd.ParentOffset),
	}
	return proto, nil
}

// GetSwiftProtocols walks __swift5_protos and decodes every protocol
// descriptor it references.
func (f *File) GetSwiftProtocols() ([]swift.Protocol, error) {
	offsets, err := f.swiftSectionOffsets("__swift5_protos")
	if err != nil {
		return nil, err
	}
	protos := make([]swift.Protocol, 0, len(offsets))
	for _, off := range offsets {
		proto, err := f.readProtocolAt(off)
		if err != nil {
			return nil, err
		}
		protos = append(protos, *proto)
	}
	return protos, nil
}

// resolveConformingType resolves the TypeReferenceKind-tagged type reference
// embedded in a protocol conformance descriptor into a *swift.Type.
func (f *File) resolveConformingType(refKind swift.TypeReferenceKind, ptr swift.RelativeDirectPointer) (*swift.Type, string) {
	switch refKind {
	case swift.DirectTypeDescriptor:
		typ, err := f.readSwiftType(int64(ptr.GetAddress()))
		if err != nil {
			return &swift.Type{}, ""
		}
		return typ, ""
	case swift.IndirectTypeDescriptor:
		if _, err := f.sr.Seek(int64(ptr.GetAddress()), io.SeekStart); err != nil {
			return &swift.Type{}, ""
		}
		var indirectOff int32
		if err := binary.Read(f.sr, binary.LittleEndian, &indirectOff); err != nil {
			return &swift.Type{}, ""
		}
		typ, err := f.readSwiftType(int64(ptr.GetAddress()) + int64(indirectOff))
		if err != nil {
			return &swift.Type{}, ""
		}
		return typ, ""
	case swift.DirectObjCClassName, swift.IndirectObjCClass:
		name := f.cstringOrEmpty(int64(ptr.GetAddress()))
		return &swift.Type{Name: name, Kind: swift.CDKindClass}, name
	default:
		return &swift.Type{}, ""
	}
}

func (f *File) readConformanceAt(offset int64) (*swift.ConformanceDescriptor, error) {
	if _, err := f.sr.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	var pcd swift.TargetProtocolConformanceDescriptor
	if err := pcd.Read(f.sr, uint64(offset)); err != nil {
		return nil, fmt.Errorf("failed to read protocol conformance descriptor at %#x: %v", offset, err)
	}
	conf := &swift.ConformanceDescriptor{
		TargetProtocolConformanceDescriptor: pcd,
		Address:                             uint64(offset),
	}
	if protoOff := pcd.ProtocolOffsest.GetAddress(); protoOff != 0 {
		if proto, err := f.readProtocolAt(int64(protoOff)); err == nil {
			conf.Protocol = proto.Name
		}
	}
	typeRef, objcName := f.resolveConformingType(pcd.Flags.GetTypeReferenceKind(), pcd.TypeRefOffsest)
	conf.TypeRef = typeRef
	// The trailing retroactive-conformance context (present only when
	// Flags.IsRetroactive()) sits after the conditional requirements/pack
	// shapes/resilient witnesses, whose variable-length layout the Symbol
	// Index does not need; conformances report it unresolved (empty name)
	// rather than mis-parse it.
	conf.Retroactive = &swift.TargetModuleContext{}
	if objcName != "" && conf.TypeRef.Name == "" {
		conf.TypeRef.Name = objcName
	}
	return conf, nil
}

// GetSwiftProtocolConformances walks __swift5_proto and decodes every
// protocol conformance descriptor it references, resolving the protocol and
// the conforming type eagerly so the Interface Indexer's
// Conformances & Associated Types phase never has to re-enter the Mach-O
// layer.
func (f *File) GetSwiftProtocolConformances() ([]swift.ConformanceDescriptor, error) {
	offsets, err := f.swiftSectionOffsets("__swift5_proto")
	if err != nil {
		return nil, err
	}
	out := make([]swift.ConformanceDescriptor, 0, len(offsets))
	for _, off := range offsets {
		conf, err := f.readConformanceAt(off)
		if err != nil {
			return nil, err
		}
		out = append(out, *conf)
	}
	return out, nil
}

// GetSwiftAssociatedTypes walks __swift5_assocty and decodes every
// associated type descriptor it references.
func (f *File) GetSwiftAssociatedTypes() ([]swift.AssociatedType, error) {
	offsets, err := f.swiftSectionOffsets("__swift5_assocty")
	if err != nil {
		return nil, err
	}
	out := make([]swift.AssociatedType, 0, len(offsets))
	for _, off := range offsets {
		if _, err := f.sr.Seek(off, io.SeekStart); err != nil {
			return nil, err
		}
		var desc swift.AssociatedTypeDescriptor
		if err := desc.Read(f.sr, uint64(off)); err != nil {
			return nil, fmt.Errorf("failed to read associated type descriptor at %#x: %v", off, err)
		}
		at := swift.AssociatedType{
			AssociatedTypeDescriptor: desc,
			Address:                  uint64(off),
			ConformingTypeName:       f.cstringOrEmpty(desc.ConformingTypeNameOffset.GetAddress()),
			ProtocolTypeName:         f.cstringOrEmpty(desc.ProtocolTypeNameOffset.GetAddress()),
		}
		recOff := off + desc.Size()
		for i := uint32(0); i < desc.NumAssociatedTypes; i++ {
			if _, err := f.sr.Seek(recOff, io.SeekStart); err != nil {
				break
			}
			var rec swift.AssociatedTypeRecord
			if err := rec.Read(f.sr, uint64(recOff)); err != nil {
				break
			}
			at.TypeRecords = append(at.TypeRecords, swift.ATRecordType{
				AssociatedTypeRecord: rec,
				Name:                 f.cstringOrEmpty(rec.NameOffset.GetAddress()),
				SubstitutedTypeName:  f.cstringOrEmpty(rec.SubstitutedTypeNameOffset.GetAddress()),
			})
			recOff += int64(desc.AssociatedTypeRecordSize)
		}
		out = append(out, at)
	}
	return out, nil
}
