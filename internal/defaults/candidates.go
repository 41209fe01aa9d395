package defaults

import (
	"fmt"
	"strings"

	"rsc.io/binaryregexp"
)

// candidatePattern matches a tag slot followed by the magic constant. The
// byte after the tag is normally NUL but is not checked.
var candidatePattern = binaryregexp.MustCompile(candidateExpr())

// candidateExpr builds the pattern source. The magic holds bytes above
// 0x7f, which must be written as \x escapes since the pattern text itself
// is parsed as UTF-8.
func candidateExpr() string {
	var b strings.Builder
	b.WriteString(binaryregexp.QuoteMeta(Tag))
	b.WriteString(`[\x00-\xff]`)
	for _, c := range Magic {
		fmt.Fprintf(&b, `\x%02x`, c)
	}
	return b.String()
}

// Candidates returns the offset of every tag that is followed by the magic
// constant, whether or not its length fields are valid. Locate uses the
// first valid one; more than one usually means the image was built or
// concatenated wrongly.
func Candidates(image []byte) []int {
	matches := candidatePattern.FindAllIndex(image, -1)
	offsets := make([]int, len(matches))
	for i, m := range matches {
		offsets[i] = m[0]
	}
	return offsets
}
