package token

var keywords = map[string]Kind{
	"struct":  KwStruct,
	"typedef": KwTypedef,
}

// LookupKeyword reports the keyword kind for ident, if any.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
