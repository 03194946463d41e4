package bindgen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"slices"
	"strconv"
	"strings"

	"modernc.org/cc/v4"
)

type declKind int

const (
	declRecord declKind = iota
	declEnum
	declTypedef
	declFunc
)

// decl is a file scope declaration, kept in source order.
type decl struct {
	kind declKind
	// name is the tag, typedef or function name. Anonymous enums have none.
	name string
	typ  cc.Type
	// self is the typedef declarator itself. Its name is carried by typ and
	// must not be followed when emitting the typedef.
	self *cc.Declarator
	user bool
	// claimed marks an anonymous enum whose constants are emitted with the
	// typedef declared alongside it.
	claimed bool
}

type emitter struct {
	spec   Spec
	opaque map[string]bool

	decls        []*decl
	typedefDecls map[string]*decl
	funcs        []*decl

	// Reachable declarations, by C name.
	records  map[string]cc.Type
	enums    map[string]*cc.EnumType
	typedefs map[string]bool

	constsDone map[*cc.Enumerator]bool
	usesUnsafe bool
	declared   map[string]bool
	buf        bytes.Buffer
}

// Emit renders the Go bindings for a translated header. Declarations in
// files for which user reports true are always emitted; declarations from
// system headers only when a user declaration refers to them.
func Emit(ast *cc.AST, spec Spec, user func(file string) bool) (*Output, error) {
	e := &emitter{
		spec:         spec,
		opaque:       make(map[string]bool),
		typedefDecls: make(map[string]*decl),
		records:      make(map[string]cc.Type),
		enums:        make(map[string]*cc.EnumType),
		typedefs:     make(map[string]bool),
		constsDone:   make(map[*cc.Enumerator]bool),
		declared:     make(map[string]bool),
	}
	for _, name := range spec.OpaqueTypes {
		e.opaque[name] = true
	}

	e.collect(ast, user)
	if err := e.markRoots(); err != nil {
		return nil, err
	}

	if err := e.emitTypes(); err != nil {
		return nil, err
	}
	out, err := e.emitFuncs()
	if err != nil {
		return nil, err
	}

	var file bytes.Buffer
	fmt.Fprintf(&file, "// Code generated by uisys from %s. DO NOT EDIT.\n\n", spec.Header)
	fmt.Fprintf(&file, "package %s\n\n", spec.Package)
	var imports []string
	if e.usesUnsafe {
		imports = append(imports, `"unsafe"`)
	}
	if len(out.Functions) > 0 {
		if len(imports) > 0 {
			imports = append(imports, "")
		}
		imports = append(imports, `"github.com/ebitengine/purego"`)
	}
	if len(imports) > 0 {
		fmt.Fprintf(&file, "import (\n%s\n)\n\n", strings.Join(imports, "\n"))
	}
	file.Write(e.buf.Bytes())

	src, err := format.Source(file.Bytes())
	if err != nil {
		return nil, fmt.Errorf("generated code does not format: %w", err)
	}
	out.Source = src
	return out, nil
}

// collect walks the file scope declarations in order.
func (e *emitter) collect(ast *cc.AST, user func(string) bool) {
	seenTags := make(map[string]bool)
	for tu := ast.TranslationUnit; tu != nil; tu = tu.TranslationUnit {
		ed := tu.ExternalDeclaration
		if ed == nil || ed.Case != cc.ExternalDeclarationDecl || ed.Declaration.Case != cc.DeclarationDecl {
			continue
		}
		d := ed.Declaration

		var anonEnum *decl
		for s := d.DeclarationSpecifiers; s != nil; s = s.DeclarationSpecifiers {
			ts := s.TypeSpecifier
			switch {
			case ts == nil:
			case ts.StructOrUnionSpecifier != nil:
				t := ts.StructOrUnionSpecifier.Type()
				if tag := tagOf(t); tag != "" && !seenTags[tag] {
					seenTags[tag] = true
					fromUser := user(ts.StructOrUnionSpecifier.Position().Filename)
					e.decls = append(e.decls, &decl{kind: declRecord, name: tag, typ: t, user: fromUser})
				}
			case ts.EnumSpecifier != nil && ts.EnumSpecifier.Case == cc.EnumSpecifierDef:
				et, ok := ts.EnumSpecifier.Type().(*cc.EnumType)
				if !ok {
					continue
				}
				fromUser := user(ts.EnumSpecifier.Position().Filename)
				en := &decl{kind: declEnum, name: tagOf(et), typ: et, user: fromUser}
				e.decls = append(e.decls, en)
				if en.name == "" {
					anonEnum = en
				}
			}
		}

		for l := d.InitDeclaratorList; l != nil; l = l.InitDeclaratorList {
			dr := l.InitDeclarator.Declarator
			if dr == nil {
				continue
			}
			fromUser := user(dr.Position().Filename)
			switch {
			case dr.IsTypename():
				typ := dr.Type()
				if dr.Pointer == nil && dr.DirectDeclarator != nil && dr.DirectDeclarator.Case == cc.DirectDeclaratorIdent {
					typ = d.DeclarationSpecifiers.Type()
				}
				if anonEnum != nil {
					anonEnum.claimed = true
				}
				if _, dup := e.typedefDecls[dr.Name()]; dup {
					continue
				}
				td := &decl{kind: declTypedef, name: dr.Name(), typ: typ, self: dr, user: fromUser}
				e.typedefDecls[td.name] = td
				e.decls = append(e.decls, td)
			case dr.Type().Kind() == cc.Function && !dr.IsStatic() && !dr.IsInline():
				e.addFunc(&decl{kind: declFunc, name: dr.Name(), typ: dr.Type(), user: fromUser})
			}
		}
	}
}

// addFunc keeps the first position of a redeclared function and the last
// prototype.
func (e *emitter) addFunc(f *decl) {
	for i, old := range e.funcs {
		if old.name == f.name {
			f.user = f.user || old.user
			e.funcs[i] = f
			return
		}
	}
	e.funcs = append(e.funcs, f)
}

func tagOf(t cc.Type) string {
	var tok cc.Token
	switch x := t.(type) {
	case *cc.StructType:
		tok = x.Tag()
	case *cc.UnionType:
		tok = x.Tag()
	case *cc.EnumType:
		tok = x.Tag()
	default:
		return ""
	}
	return tok.SrcStr()
}

// typedefName returns the typedef t is spelled with, ignoring self.
func typedefName(t cc.Type, self *cc.Declarator) string {
	if td := t.Typedef(); td != nil && td != self {
		return td.Name()
	}
	return ""
}

func fields(t cc.Type) []*cc.Field {
	var n int
	var at func(int) *cc.Field
	switch x := t.(type) {
	case *cc.StructType:
		n, at = x.NumFields(), x.FieldByIndex
	case *cc.UnionType:
		n, at = x.NumFields(), x.FieldByIndex
	}
	out := make([]*cc.Field, 0, n)
	for i := range n {
		if f := at(i); f != nil {
			out = append(out, f)
		}
	}
	return out
}

// natural reports whether Go's own struct layout reproduces st: no bit
// fields, every field at the offset its alignment implies, and no trailing
// padding beyond the struct alignment.
func natural(st *cc.StructType) bool {
	var next int64
	for _, f := range fields(st) {
		if f.IsBitfield() {
			return false
		}
		ft := f.Type()
		if f.Offset() != alignUp(next, int64(ft.FieldAlign())) {
			return false
		}
		next = f.Offset() + max(ft.Size(), 0)
	}
	return st.Size() == alignUp(next, int64(st.Align()))
}

func (e *emitter) markRoots() error {
	for _, d := range e.decls {
		if !d.user {
			continue
		}
		switch d.kind {
		case declRecord:
			if err := e.mark(d.typ); err != nil {
				return err
			}
		case declEnum:
			if et := d.typ.(*cc.EnumType); d.name != "" {
				e.enums[d.name] = et
			}
		case declTypedef:
			if err := e.markTypedef(d.name); err != nil {
				return err
			}
		}
	}
	for _, f := range e.funcs {
		if !f.user || f.typ.(*cc.FunctionType).IsVariadic() {
			continue
		}
		if err := e.mark(f.typ); err != nil {
			return fmt.Errorf("function %s: %w", f.name, err)
		}
	}
	return nil
}

func (e *emitter) mark(t cc.Type) error {
	return e.markType(t, nil)
}

// markType records t and everything it refers to as reachable.
func (e *emitter) markType(t cc.Type, self *cc.Declarator) error {
	if name := typedefName(t, self); name != "" {
		return e.markTypedef(name)
	}
	switch x := t.(type) {
	case *cc.PointerType:
		return e.mark(x.Elem())
	case *cc.ArrayType:
		return e.mark(x.Elem())
	case *cc.FunctionType:
		if err := e.mark(x.Result()); err != nil {
			return err
		}
		for _, p := range x.Parameters() {
			if err := e.mark(p.Type()); err != nil {
				return err
			}
		}
	case *cc.StructType, *cc.UnionType:
		return e.markRecord(t)
	case *cc.EnumType:
		if tag := tagOf(x); tag != "" {
			e.enums[tag] = x
		}
	}
	return nil
}

func (e *emitter) markRecord(t cc.Type) error {
	tag := tagOf(t)
	if tag != "" {
		if old, ok := e.records[tag]; ok && !(old.IsIncomplete() && !t.IsIncomplete()) {
			return nil
		}
		e.records[tag] = t
		if e.opaque[tag] {
			return nil
		}
	}
	st, ok := t.(*cc.StructType)
	if !ok || t.IsIncomplete() || !natural(st) {
		return nil
	}
	for _, f := range fields(st) {
		if err := e.mark(f.Type()); err != nil {
			return fmt.Errorf("%s.%s: %w", tag, f.Name(), err)
		}
	}
	return nil
}

func (e *emitter) markTypedef(name string) error {
	if _, ok := wellKnown[name]; ok || e.typedefs[name] {
		return nil
	}
	td, ok := e.typedefDecls[name]
	if !ok {
		return fmt.Errorf("unknown type %s", name)
	}
	e.typedefs[name] = true
	if e.opaque[name] {
		return nil
	}
	return e.markType(td.typ, td.self)
}

func (e *emitter) goType(t cc.Type) (string, error) {
	return e.typeOf(t, nil)
}

// typeOf spells t in Go. Named types refer to their emitted declaration;
// self is followed structurally instead.
func (e *emitter) typeOf(t cc.Type, self *cc.Declarator) (string, error) {
	if name := typedefName(t, self); name != "" {
		if g, ok := wellKnown[name]; ok {
			return g, nil
		}
		return exported(name), nil
	}
	switch x := t.(type) {
	case *cc.PointerType:
		elem := x.Elem()
		switch elem.Kind() {
		case cc.Function:
			return "uintptr", nil
		case cc.Void:
			e.usesUnsafe = true
			return "unsafe.Pointer", nil
		}
		s, err := e.goType(elem)
		if err != nil {
			return "", err
		}
		return "*" + s, nil
	case *cc.ArrayType:
		s, err := e.goType(x.Elem())
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[%d]%s", max(x.Len(), 0), s), nil
	case *cc.FunctionType:
		return "uintptr", nil
	case *cc.StructType, *cc.UnionType:
		if tag := tagOf(t); tag != "" {
			return exported(tag), nil
		}
		return e.recordBody(t)
	case *cc.EnumType:
		if tag := tagOf(x); tag != "" {
			return exported(tag), nil
		}
		return enumBase(x)
	}
	return scalar(t)
}

// scalar maps a C arithmetic type by its size under the target ABI.
func scalar(t cc.Type) (string, error) {
	size := t.Size()
	switch k := t.Kind(); {
	case k == cc.Void:
		return "", errors.New("void used as a value type")
	case k == cc.Bool:
		return "bool", nil
	case k == cc.Char:
		return "byte", nil
	case cc.IsIntegerType(t):
		bits := size * 8
		switch bits {
		case 8, 16, 32, 64:
		default:
			return "", fmt.Errorf("unsupported C type %s", t)
		}
		if cc.IsSignedInteger(t) {
			return fmt.Sprintf("int%d", bits), nil
		}
		return fmt.Sprintf("uint%d", bits), nil
	case cc.IsFloatingPointType(t) && size == 4:
		return "float32", nil
	case cc.IsFloatingPointType(t) && size == 8:
		return "float64", nil
	}
	return "", fmt.Errorf("unsupported C type %s", t)
}

func enumBase(et *cc.EnumType) (string, error) {
	if u := et.UnderlyingType(); u != nil {
		return scalar(u)
	}
	return "int32", nil
}

// recordBody spells a struct or union as a Go struct type. Unions and
// structs whose layout Go cannot reproduce become raw storage of the same
// size and alignment.
func (e *emitter) recordBody(t cc.Type) (string, error) {
	st, ok := t.(*cc.StructType)
	if !ok || !natural(st) {
		return rawLayout(t), nil
	}
	var b strings.Builder
	b.WriteString("struct {\n")
	for i, f := range fields(st) {
		typ, err := e.goType(f.Type())
		if err != nil {
			return "", fmt.Errorf("field %s: %w", f.Name(), err)
		}
		name := exported(f.Name())
		if name == "" {
			name = fmt.Sprintf("Anon%d", i)
		}
		fmt.Fprintf(&b, "%s %s\n", name, typ)
	}
	b.WriteString("}")
	return b.String(), nil
}

func rawLayout(t cc.Type) string {
	var b strings.Builder
	b.WriteString("struct {\n")
	switch align := t.Align(); align {
	case 2, 4, 8:
		fmt.Fprintf(&b, "_ [0]uint%d\n", align*8)
	}
	fmt.Fprintf(&b, "Raw [%d]byte\n}", max(t.Size(), 0))
	return b.String()
}

func (e *emitter) declare(name string) error {
	if e.declared[name] {
		return fmt.Errorf("Go identifier %s is declared twice", name)
	}
	e.declared[name] = true
	return nil
}

func (e *emitter) printf(format string, args ...any) {
	fmt.Fprintf(&e.buf, format, args...)
}

func (e *emitter) emitTypes() error {
	emittedRecords := make(map[string]bool)
	emittedEnums := make(map[string]bool)

	for _, d := range e.decls {
		switch d.kind {
		case declRecord:
			t, ok := e.records[d.name]
			if !ok || emittedRecords[d.name] {
				continue
			}
			emittedRecords[d.name] = true
			if err := e.emitRecord(d.name, t); err != nil {
				return err
			}
		case declEnum:
			et := d.typ.(*cc.EnumType)
			switch {
			case d.name == "" && d.user && !d.claimed:
				if err := e.emitConsts(et, ""); err != nil {
					return err
				}
			case d.name != "" && e.enums[d.name] != nil && !emittedEnums[d.name]:
				emittedEnums[d.name] = true
				if err := e.emitEnum(d.name, et); err != nil {
					return err
				}
			}
		case declTypedef:
			if !e.typedefs[d.name] {
				continue
			}
			if err := e.emitTypedef(d); err != nil {
				return err
			}
		}
	}

	// Tags that were referenced but never declared at file scope.
	var missing []string
	for tag := range e.records {
		if !emittedRecords[tag] {
			missing = append(missing, tag)
		}
	}
	slices.Sort(missing)
	for _, tag := range missing {
		if err := e.emitRecord(tag, e.records[tag]); err != nil {
			return err
		}
	}

	missing = missing[:0]
	for tag := range e.enums {
		if !emittedEnums[tag] {
			missing = append(missing, tag)
		}
	}
	slices.Sort(missing)
	for _, tag := range missing {
		if err := e.emitEnum(tag, e.enums[tag]); err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) emitOpaque(name string) error {
	goName := exported(name)
	if err := e.declare(goName); err != nil {
		return err
	}
	e.printf("type %s struct{}\n\n", goName)
	return nil
}

func (e *emitter) emitRecord(tag string, t cc.Type) error {
	if e.opaque[tag] || t.IsIncomplete() {
		return e.emitOpaque(tag)
	}
	goName := exported(tag)
	if err := e.declare(goName); err != nil {
		return err
	}
	body, err := e.recordBody(t)
	if err != nil {
		return fmt.Errorf("%s %s: %w", kindName(t), tag, err)
	}
	e.printf("type %s %s\n\n", goName, body)
	return nil
}

func kindName(t cc.Type) string {
	if t.Kind() == cc.Union {
		return "union"
	}
	return "struct"
}

func (e *emitter) emitEnum(tag string, et *cc.EnumType) error {
	goName := exported(tag)
	if err := e.declare(goName); err != nil {
		return err
	}
	base, err := enumBase(et)
	if err != nil {
		return fmt.Errorf("enum %s: %w", tag, err)
	}
	e.printf("type %s %s\n\n", goName, base)
	return e.emitConsts(et, goName)
}

func (e *emitter) emitConsts(et *cc.EnumType, typeName string) error {
	list := et.Enumerators()
	if len(list) == 0 || e.constsDone[list[0]] {
		return nil
	}
	e.constsDone[list[0]] = true

	e.printf("const (\n")
	for _, en := range list {
		name := exported(en.Token.SrcStr())
		if err := e.declare(name); err != nil {
			return err
		}
		var value string
		switch v := en.Value().(type) {
		case cc.Int64Value:
			value = strconv.FormatInt(int64(v), 10)
		case cc.UInt64Value:
			value = strconv.FormatUint(uint64(v), 10)
		default:
			return fmt.Errorf("enumerator %s has no constant value", name)
		}
		if typeName != "" {
			e.printf("%s %s = %s\n", name, typeName, value)
		} else {
			e.printf("%s = %s\n", name, value)
		}
	}
	e.printf(")\n\n")
	return nil
}

func (e *emitter) emitTypedef(td *decl) error {
	goName := exported(td.name)
	if e.opaque[td.name] {
		return e.emitOpaque(td.name)
	}

	alias := func(target string) error {
		if target == goName {
			return nil
		}
		if err := e.declare(goName); err != nil {
			return err
		}
		e.printf("type %s = %s\n\n", goName, target)
		return nil
	}

	t := td.typ
	if other := typedefName(t, td.self); other != "" {
		if g, ok := wellKnown[other]; ok {
			if err := e.declare(goName); err != nil {
				return err
			}
			e.printf("type %s %s\n\n", goName, g)
			return nil
		}
		return alias(exported(other))
	}

	switch x := t.(type) {
	case *cc.StructType, *cc.UnionType:
		if tag := tagOf(t); tag != "" {
			return alias(exported(tag))
		}
		if t.IsIncomplete() {
			return e.emitOpaque(td.name)
		}
		if err := e.declare(goName); err != nil {
			return err
		}
		body, err := e.recordBody(t)
		if err != nil {
			return fmt.Errorf("typedef %s: %w", td.name, err)
		}
		e.printf("type %s %s\n\n", goName, body)
		return nil
	case *cc.EnumType:
		if tag := tagOf(x); tag != "" {
			return alias(exported(tag))
		}
		if err := e.declare(goName); err != nil {
			return err
		}
		base, err := enumBase(x)
		if err != nil {
			return fmt.Errorf("typedef %s: %w", td.name, err)
		}
		e.printf("type %s %s\n\n", goName, base)
		return e.emitConsts(x, goName)
	}

	target, err := e.typeOf(t, td.self)
	if err != nil {
		return fmt.Errorf("typedef %s: %w", td.name, err)
	}
	if err := e.declare(goName); err != nil {
		return err
	}
	e.printf("type %s %s\n\n", goName, target)
	return nil
}

func (e *emitter) emitFuncs() (*Output, error) {
	out := &Output{}
	type binding struct {
		cName, goName, sig string
	}
	var bound []binding

	for _, f := range e.funcs {
		if !f.user {
			continue
		}
		fn := f.typ.(*cc.FunctionType)
		if fn.IsVariadic() {
			out.Skipped = append(out.Skipped, f.name)
			continue
		}
		sig, err := e.signature(fn)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", f.name, err)
		}
		goName := exported(f.name)
		if e.declared[goName] {
			goName += "Func"
		}
		if err := e.declare(goName); err != nil {
			return nil, err
		}
		bound = append(bound, binding{cName: f.name, goName: goName, sig: sig})
		out.Functions = append(out.Functions, f.name)
	}

	if len(bound) > 0 {
		e.printf("var (\n")
		for _, b := range bound {
			e.printf("%s %s\n", b.goName, b.sig)
		}
		e.printf(")\n\n")
	}

	for _, name := range out.Skipped {
		e.printf("// %s is variadic and has no binding.\n", name)
	}
	if len(out.Skipped) > 0 {
		e.printf("\n")
	}

	e.printf("// Register binds the function variables to the symbols of lib, a handle\n")
	e.printf("// returned by purego.Dlopen. It panics when a symbol is missing.\n")
	e.printf("func Register(lib uintptr) {\n")
	for _, b := range bound {
		e.printf("purego.RegisterLibFunc(&%s, lib, %q)\n", b.goName, b.cName)
	}
	e.printf("}\n")
	return out, nil
}

// signature spells fn as a Go func type. C strings stay *byte in both
// directions, since the callee may keep or free them.
func (e *emitter) signature(fn *cc.FunctionType) (string, error) {
	params := make([]string, 0, len(fn.Parameters()))
	for i, p := range fn.Parameters() {
		if p.Type().Kind() == cc.Void {
			continue
		}
		typ, err := e.goType(p.Type())
		if err != nil {
			return "", fmt.Errorf("parameter %s: %w", paramName(p.Name(), i), err)
		}
		params = append(params, paramName(p.Name(), i)+" "+typ)
	}
	sig := "func(" + strings.Join(params, ", ") + ")"
	if fn.Result().Kind() == cc.Void {
		return sig, nil
	}
	result, err := e.goType(fn.Result())
	if err != nil {
		return "", fmt.Errorf("result: %w", err)
	}
	return sig + " " + result, nil
}
