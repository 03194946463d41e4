package bindgen

import (
	"fmt"
	gotoken "go/token"
	"unicode"
	"unicode/utf8"
)

// wellKnown are standard typedefs mapped straight to Go types, so the
// system headers that declare them are never emitted.
var wellKnown = map[string]string{
	"size_t":    "uintptr",
	"uintptr_t": "uintptr",
	"ssize_t":   "int",
	"ptrdiff_t": "int",
	"intptr_t":  "int",
	"int8_t":    "int8",
	"int16_t":   "int16",
	"int32_t":   "int32",
	"int64_t":   "int64",
	"uint8_t":   "uint8",
	"uint16_t":  "uint16",
	"uint32_t":  "uint32",
	"uint64_t":  "uint64",
}

// exported turns a C identifier into an exported Go identifier by
// upper-casing its first letter.
func exported(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	switch {
	case name == "", unicode.IsUpper(r):
		return name
	case unicode.IsLower(r):
		return string(unicode.ToUpper(r)) + name[size:]
	default:
		return "X" + name
	}
}

// paramName keeps C parameter names usable in a Go signature.
func paramName(name string, i int) string {
	switch {
	case name == "":
		return fmt.Sprintf("arg%d", i)
	case gotoken.IsKeyword(name):
		return name + "_"
	default:
		return name
	}
}

func alignUp(n, align int64) int64 {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}
