// Package highlight classifies a window of document text into syntax spans
// and finds the bracket pair enclosing the caret. The tokenizer is a single
// forward pass; the only state it needs from outside the window is whether
// the window starts inside a block comment, which it discovers itself by
// scanning backward from the window start.
package highlight

import (
	"path/filepath"
	"strings"
)

// Category is a syntax classification for a span of text.
type Category uint8

const (
	CategoryNone Category = iota
	CategoryVariable
	CategoryFunction
	CategoryMethod
	CategoryClass
	CategoryEnum
	CategoryComment
	CategoryKeyword
	CategoryLiteral
	CategoryMacro
	CategoryPreprocessor
	CategoryPrimitive
)

// String returns a human-readable category name.
func (c Category) String() string {
	switch c {
	case CategoryVariable:
		return "variable"
	case CategoryFunction:
		return "function"
	case CategoryMethod:
		return "method"
	case CategoryClass:
		return "class"
	case CategoryEnum:
		return "enum"
	case CategoryComment:
		return "comment"
	case CategoryKeyword:
		return "keyword"
	case CategoryLiteral:
		return "literal"
	case CategoryMacro:
		return "macro"
	case CategoryPreprocessor:
		return "preprocessor"
	case CategoryPrimitive:
		return "primitive"
	default:
		return "none"
	}
}

// Profile is a language's static lexing table: keyword set, comment
// delimiters, and string syntax. Selected once at document-open time from
// the file extension.
type Profile struct {
	// LanguageID is the identifier used on the wire (didOpen) and for
	// language-specific lexing rules.
	LanguageID string

	// ServerCommand is the language server binary for this language.
	ServerCommand string

	// LineComment starts a comment running to the end of the line.
	LineComment string

	// BlockCommentOpen and BlockCommentClose delimit multi-line comments.
	BlockCommentOpen  string
	BlockCommentClose string

	// StringQuote delimits string literals; StringEscape is the sequence
	// that does not terminate one.
	StringQuote  byte
	StringEscape string

	// Preprocessor marks #-prefixed identifiers as preprocessor directives.
	Preprocessor bool

	keywords map[string]struct{}
}

// IsKeyword reports whether word is reserved in this language.
func (p *Profile) IsKeyword(word string) bool {
	_, ok := p.keywords[word]
	return ok
}

func newProfile(languageID, server string, preprocessor bool, keywords []string) *Profile {
	p := &Profile{
		LanguageID:        languageID,
		ServerCommand:     server,
		LineComment:       "//",
		BlockCommentOpen:  "/*",
		BlockCommentClose: "*/",
		StringQuote:       '"',
		StringEscape:      `\"`,
		Preprocessor:      preprocessor,
		keywords:          make(map[string]struct{}, len(keywords)),
	}
	for _, kw := range keywords {
		p.keywords[kw] = struct{}{}
	}
	return p
}

// Language identifiers.
const (
	LanguageCPP  = "cpp"
	LanguageRust = "rust"
)

var cppProfile = newProfile(LanguageCPP, "clangd", true, []string{
	"alignas", "alignof", "and", "and_eq", "asm", "auto", "bitand", "bitor",
	"bool", "break", "case", "catch", "char", "char8_t", "char16_t",
	"char32_t", "class", "compl", "concept", "const", "consteval",
	"constexpr", "constinit", "const_cast", "continue", "co_await",
	"co_return", "co_yield", "decltype", "default", "delete", "do",
	"double", "dynamic_cast", "else", "enum", "explicit", "export",
	"extern", "false", "float", "for", "friend", "goto", "if", "inline",
	"int", "long", "mutable", "namespace", "new", "noexcept", "not",
	"not_eq", "nullptr", "operator", "or", "or_eq", "private", "protected",
	"public", "register", "reinterpret_cast", "requires", "return",
	"short", "signed", "sizeof", "static", "static_assert", "static_cast",
	"struct", "switch", "template", "this", "thread_local", "throw",
	"true", "try", "typedef", "typeid", "typename", "union", "unsigned",
	"using", "virtual", "void", "volatile", "wchar_t", "while", "xor",
	"xor_eq",
})

var rustProfile = newProfile(LanguageRust, "rust-analyzer", false, []string{
	"as", "break", "const", "continue", "crate", "else", "enum", "extern",
	"false", "fn", "for", "if", "impl", "in", "let", "loop", "match",
	"mod", "move", "mut", "pub", "ref", "return", "self", "Self", "static",
	"struct", "super", "trait", "true", "type", "unsafe", "use", "where",
	"while", "async", "await", "dyn",
})

var profilesByExtension = map[string]*Profile{
	".c":   cppProfile,
	".h":   cppProfile,
	".cpp": cppProfile,
	".hpp": cppProfile,
	".cxx": cppProfile,
	".rs":  rustProfile,
}

// ProfileForPath returns the language profile for a file path, or nil when
// the extension is not recognized.
func ProfileForPath(path string) *Profile {
	return profilesByExtension[strings.ToLower(filepath.Ext(path))]
}

// ProfileForLanguage returns the profile registered under a language
// identifier, or nil.
func ProfileForLanguage(id string) *Profile {
	switch id {
	case LanguageCPP:
		return cppProfile
	case LanguageRust:
		return rustProfile
	default:
		return nil
	}
}
