package wire

import (
	_ "golang.org/x/text/encoding/simplifiedchinese" // registers GB2312/GBK/HZ-GB2312 with ianaindex
	"golang.org/x/text/encoding/ianaindex"
)

// Charset is a SEARCH command CHARSET parameter or BADCHARSET response
// code entry: an atom naming a MIME charset, e.g. "UTF-8", "ISO-8859-1".
type Charset Atom

// parseCharset lexes a charset atom. The grammar treats it as a plain
// atom; Recognize below is the semantic check applied by the SEARCH
// command handler (outside the codec) to decide whether to honor it or
// reply with a BADCHARSET code.
func parseCharset(p []byte, offset int) (value Charset, n int, err error) {
	a, an, err := atom(p, offset)
	if err != nil {
		return nil, 0, err
	}
	return Charset(a), an, nil
}

// Recognize reports whether c names a charset this codec's runtime can
// decode, resolving the IANA MIME label through
// golang.org/x/text/encoding/ianaindex.MIME. UTF-8 and US-ASCII are
// always recognized even without a registered x/text decoder, since raw
// astring/literal bytes already are those encodings.
func (c Charset) Recognize() bool {
	name := string(asciiUpper(c))
	if name == "UTF-8" || name == "US-ASCII" || name == "ASCII" {
		return true
	}
	_, err := ianaindex.MIME.Encoding(string(c))
	return err == nil
}

// EncodeCharset uppercases the charset label on the wire, matching the
// encoder's convention of uppercasing status codes and flag names.
func EncodeCharset(c Charset) []byte {
	return asciiUpper(c)
}
