package fs

import "strings"

const (
	stringOpen  = "<String"
	stringClose = "</String>"
	sourceOpen  = "<Source>"
	sourceClose = "</Source>"
)

// Entry is a <String> block located in raw XML text.
type Entry struct {
	// Start and End delimit the block, from "<String" through "</String>".
	Start int
	End   int

	// Attributes is everything between "<String" and the first ">",
	// including the leading space.
	Attributes string

	// Source is the raw, still escaped text of the first <Source> child.
	Source string

	// HasSource is false for blocks without a <Source> child.
	HasSource bool
}

// FindEntry locates the first <String> block in content. The block ends at
// the first "</String>" after its opening tag, so the shortest span wins.
// A self-closing tag yields a block without a Source covering just the tag.
func FindEntry(content string) (Entry, bool) {
	start := indexOpenTag(content, 0)
	if start < 0 {
		return Entry{}, false
	}

	attrStart := start + len(stringOpen)
	gt := strings.IndexByte(content[attrStart:], '>')
	if gt < 0 {
		return Entry{}, false
	}
	tagEnd := attrStart + gt
	attrs := content[attrStart:tagEnd]

	if strings.HasSuffix(attrs, "/") {
		return Entry{Start: start, End: tagEnd + 1, Attributes: attrs}, true
	}

	bodyStart := tagEnd + 1
	closeAt := strings.Index(content[bodyStart:], stringClose)
	if closeAt < 0 {
		return Entry{}, false
	}
	body := content[bodyStart : bodyStart+closeAt]

	e := Entry{
		Start:      start,
		End:        bodyStart + closeAt + len(stringClose),
		Attributes: attrs,
	}
	e.Source, e.HasSource = between(body, sourceOpen, sourceClose)
	return e, true
}

// CountEntries counts <String> opening tags in content.
func CountEntries(content string) int {
	n := 0
	for i := indexOpenTag(content, 0); i >= 0; i = indexOpenTag(content, i+len(stringOpen)) {
		n++
	}
	return n
}

// indexOpenTag returns the offset of the next "<String" tag at or after from,
// skipping longer names such as "<Strings>". Returns -1 if there is none.
func indexOpenTag(content string, from int) int {
	for from < len(content) {
		i := strings.Index(content[from:], stringOpen)
		if i < 0 {
			return -1
		}
		at := from + i
		next := at + len(stringOpen)
		if next < len(content) && isTagBoundary(content[next]) {
			return at
		}
		from = next
	}
	return -1
}

func isTagBoundary(c byte) bool {
	switch c {
	case '>', '/', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

// between returns the text between the first open marker and the next close
// marker after it.
func between(s, open, close string) (string, bool) {
	i := strings.Index(s, open)
	if i < 0 {
		return "", false
	}
	rest := s[i+len(open):]
	j := strings.Index(rest, close)
	if j < 0 {
		return "", false
	}
	return rest[:j], true
}

var (
	xmlEscaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	xmlUnescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'", "&amp;", "&")
)

// EscapeText escapes text content for the sink. Quotes are left alone since
// they never appear inside attributes here.
func EscapeText(s string) string { return xmlEscaper.Replace(s) }

// UnescapeText resolves the predefined XML entities.
func UnescapeText(s string) string { return xmlUnescaper.Replace(s) }
