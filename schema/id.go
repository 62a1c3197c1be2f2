package schema

import (
	"net/url"
	"strings"
)

// ID is the canonical identity of a schema node: an absolute document
// identifier (URI or file path) plus a JSON-pointer fragment locating the
// node inside the document.
//
// Two IDs are equal iff their canonical absolute strings are equal; identity
// is never structural. The canonical form always contains a single '#'
// separating the document part from the pointer part, and a non-empty pointer
// always begins with '/'.
type ID struct {
	abs string
}

// EmptyID is the zero identity. Schemas without any declared or derivable id
// carry it; such schemas can be inlined but never referenced.
var EmptyID = ID{}

// ParseID canonicalizes a lone reference string with no enclosing documents.
func ParseID(ref string) ID {
	return ResolveID(ref, nil)
}

// ResolveID canonicalizes a reference string against a chain of enclosing
// document ids, outermost first.
//
// A relative reference resolves against the nearest enclosing id in the chain
// that carries a document part, not against the root document. This keeps
// sub-schema pointers correct even when an intermediate level redefines an
// explicit id.
func ResolveID(ref string, parents []ID) ID {
	if ref == "" {
		return EmptyID
	}

	base, frag := splitFragment(ref)
	frag = canonicalPointer(frag)

	if base == "" {
		// Pure fragment: inherit the nearest enclosing document part.
		return ID{abs: nearestBase(parents) + "#" + frag}
	}

	if u, err := url.Parse(base); err == nil && !u.IsAbs() {
		if pb := nearestBase(parents); pb != "" {
			if pu, perr := url.Parse(pb); perr == nil {
				base = pu.ResolveReference(u).String()
			}
		}
	}

	return ID{abs: base + "#" + frag}
}

// nearestBase returns the document part of the innermost parent id that has one.
func nearestBase(parents []ID) string {
	for i := len(parents) - 1; i >= 0; i-- {
		if b := parents[i].Base(); b != "" {
			return b
		}
	}
	return ""
}

// IsEmpty reports whether the id carries no identity at all.
func (id ID) IsEmpty() bool {
	return id.abs == "" || id.abs == "#"
}

// String returns the canonical absolute id.
func (id ID) String() string {
	return id.abs
}

// Base returns the document part of the id (everything before '#').
func (id ID) Base() string {
	base, _ := splitFragment(id.abs)
	return base
}

// Pointer returns the JSON-pointer fragment of the id, including its leading
// slash, or "" when the id addresses a whole document.
func (id ID) Pointer() string {
	_, frag := splitFragment(id.abs)
	return frag
}

// Equal reports whether two ids share the same canonical absolute string.
func (id ID) Equal(other ID) bool {
	return id.abs == other.abs
}

// Child derives the id of a sub-schema one pointer token below this id.
func (id ID) Child(token string) ID {
	base, frag := splitFragment(id.abs)
	return ID{abs: base + "#" + frag + "/" + EscapePointerToken(token)}
}

// Segments decomposes the id into hierarchical path segments used for
// namespace-tree placement and declaration naming. Document path components
// come first (scheme and empty components dropped, a trailing file extension
// stripped), followed by the unescaped pointer tokens.
func (id ID) Segments() []string {
	if id.IsEmpty() {
		return nil
	}
	base, frag := splitFragment(id.abs)

	var segs []string
	if base != "" {
		trimmed := base
		if i := strings.Index(trimmed, "://"); i >= 0 {
			trimmed = trimmed[i+3:]
		}
		for _, part := range strings.Split(trimmed, "/") {
			if part != "" {
				segs = append(segs, part)
			}
		}
		if n := len(segs); n > 0 {
			segs[n-1] = stripExtension(segs[n-1])
			if segs[n-1] == "" {
				segs = segs[:n-1]
			}
		}
	}
	for _, part := range strings.Split(frag, "/") {
		if part == "" {
			continue
		}
		segs = append(segs, UnescapePointerToken(part))
	}
	return segs
}

// splitFragment splits a reference into its document and pointer parts.
func splitFragment(ref string) (base, frag string) {
	if i := strings.Index(ref, "#"); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return ref, ""
}

// canonicalPointer ensures a non-empty pointer starts with a single '/' and
// normalizes URI percent-escapes. Reference fragments arrive URI-encoded, so
// each token is decoded once; a literal '%' re-encodes as %25, which keeps
// canonical id strings stable under re-parsing.
func canonicalPointer(frag string) string {
	frag = strings.TrimRight(frag, "/")
	if frag == "" {
		return ""
	}
	parts := strings.Split(strings.TrimPrefix(frag, "/"), "/")
	for i, part := range parts {
		if decoded, err := url.PathUnescape(part); err == nil {
			part = decoded
		}
		parts[i] = strings.ReplaceAll(part, "%", "%25")
	}
	return "/" + strings.Join(parts, "/")
}

// stripExtension removes a trailing schema file extension from a path segment.
func stripExtension(seg string) string {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		if strings.HasSuffix(seg, ext) {
			return strings.TrimSuffix(seg, ext)
		}
	}
	return seg
}

// EscapePointerToken escapes a raw token for use in a canonical pointer:
// ~ becomes ~0 and / becomes ~1 per RFC 6901, and a literal % becomes %25
// so property names containing percent signs survive the round trip
// through canonicalization.
func EscapePointerToken(token string) string {
	token = strings.ReplaceAll(token, "%", "%25")
	token = strings.ReplaceAll(token, "~", "~0")
	token = strings.ReplaceAll(token, "/", "~1")
	return token
}

// UnescapePointerToken recovers the raw token from its canonical form:
// percent-escapes first (canonical tokens only carry %25), then the
// RFC 6901 tilde escapes.
func UnescapePointerToken(token string) string {
	if decoded, err := url.PathUnescape(token); err == nil {
		token = decoded
	}
	token = strings.ReplaceAll(token, "~1", "/")
	token = strings.ReplaceAll(token, "~0", "~")
	return token
}
