package vhtml

import "strings"

// attrDecoder and attrDecoderNL decode the small set of character references that
// browsers normalize inside attribute values. Anything else, including the full named
// entity table, is left as written.
var (
	attrDecoder = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&amp;", "&",
		"&#39;", "'",
	)
	attrDecoderNL = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&amp;", "&",
		"&#39;", "'",
		"&#10;", "\n",
		"&#9;", "\t",
	)
)

// DecodeAttr replaces the supported character references in an attribute value in a
// single left-to-right pass. The newline and tab references are decoded only when
// decodeNewlines is set.
func DecodeAttr(value string, decodeNewlines bool) string {
	if strings.IndexByte(value, '&') < 0 {
		return value
	}
	if decodeNewlines {
		return attrDecoderNL.Replace(value)
	}
	return attrDecoder.Replace(value)
}
