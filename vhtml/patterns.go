package vhtml

import (
	"regexp"
	"strings"
	"sync"
)

// unicodeLetters lists the characters, besides ASCII letters, allowed in custom element
// names (https://html.spec.whatwg.org/#valid-custom-element-name). Supplementary
// planes are left out.
const unicodeLetters = `a-zA-Z\x{00B7}\x{00C0}-\x{00D6}\x{00D8}-\x{00F6}\x{00F8}-\x{037D}` +
	`\x{037F}-\x{1FFF}\x{200C}-\x{200D}\x{203F}-\x{2040}\x{2070}-\x{218F}\x{2C00}-\x{2FEF}` +
	`\x{3001}-\x{D7FF}\x{F900}-\x{FDCF}\x{FDF0}-\x{FFFD}`

const (
	ncname       = `[a-zA-Z_][\-\.0-9_` + unicodeLetters + `]*`
	qnameCapture = `((?:` + ncname + `:)?` + ncname + `)`

	// attrValue captures the value of an attribute: group 2 is "=", groups 3, 4 and 5
	// are the double-quoted, single-quoted and unquoted forms, in that priority order.
	attrValue = `(?:\s*(=)\s*(?:"([^"]*)"+|'([^']*)'+|([^\s"'=<>` + "`" + `]+)))?`
)

// Lexical patterns of the tokenizer. All of them are anchored at the current cursor.
var (
	attribute           = regexp.MustCompile(`^\s*([^\s"'<>/=]+)` + attrValue)
	dynamicArgAttribute = regexp.MustCompile(`^\s*((?:v-[\w-]+:|@|:|#)\[[^=]+?\][^\s"'<>/=]*)` + attrValue)
	startTagOpen        = regexp.MustCompile(`^<` + qnameCapture)
	startTagClose       = regexp.MustCompile(`^\s*(/?)>`)
	endTag              = regexp.MustCompile(`^</` + qnameCapture + `[^>]*>`)
	doctype             = regexp.MustCompile(`(?i)^<!DOCTYPE [^>]+>`)
	leadingSpace        = regexp.MustCompile(`^\s*`)

	rawComment = regexp.MustCompile(`<!--((?s:.)*?)-->`)
	rawCDATA   = regexp.MustCompile(`<!\[CDATA\[((?s:.)*?)]]>`)
)

const (
	commentOpen            = "<!--"
	commentClose           = "-->"
	conditionalCommentOpen = "<!["
	conditionalCommentEnd  = "]>"
)

// rawTextTags holds the elements whose content is never tokenized as markup.
var rawTextTags = map[string]bool{"script": true, "style": true, "textarea": true}

// IsRawTextTag reports whether tag is one of script, style or textarea, in any case.
func IsRawTextTag(tag string) bool {
	return rawTextTags[strings.ToLower(tag)]
}

// ignoreNewlineTags lists the elements that drop a newline directly following their
// start tag.
var ignoreNewlineTags = map[string]bool{"pre": true, "textarea": true}

func shouldIgnoreFirstNewline(tag, s string) bool {
	return tag != "" && ignoreNewlineTags[strings.ToLower(tag)] && strings.HasPrefix(s, "\n")
}

// rawTextEnd caches the end tag patterns of raw-text elements, keyed by the lower-cased
// tag name. The set of keys is small and entries are never replaced.
var rawTextEnd sync.Map // map[string]*regexp.Regexp

func rawTextEndPattern(tag string) *regexp.Regexp {
	if re, ok := rawTextEnd.Load(tag); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?i)^((?s:.)*?)(</` + regexp.QuoteMeta(tag) + `[^>]*>)`)
	actual, _ := rawTextEnd.LoadOrStore(tag, re)
	return actual.(*regexp.Regexp)
}

// stripRawTextMarkers unwraps comment and CDATA sections found inside the text of a
// raw-text element, keeping their content.
func stripRawTextMarkers(text string) string {
	text = rawComment.ReplaceAllString(text, "$1")
	return rawCDATA.ReplaceAllString(text, "$1")
}

// isTagStart reports whether s begins with something the tokenizer would consider
// markup: an end tag, a start tag, a comment or a conditional comment.
func isTagStart(s string) bool {
	return endTag.MatchString(s) ||
		startTagOpen.MatchString(s) ||
		strings.HasPrefix(s, commentOpen) ||
		strings.HasPrefix(s, conditionalCommentOpen)
}
