package vhtml

// Options configures the tokenizer and the tree builder. The zero value tokenizes
// without any HTML-specific recovery; see HTMLOptions for browser-like defaults.
type Options struct {
	// ExpectHTML enables implied closing of <p> and of elements that can be left open.
	ExpectHTML bool

	// IsUnaryTag marks elements that never take an end tag.
	IsUnaryTag func(tag string) bool

	// CanBeLeftOpenTag marks elements that close when another element of the same
	// name starts.
	CanBeLeftOpenTag func(tag string) bool

	// IsNonPhrasingTag marks elements that close an open <p>.
	IsNonPhrasingTag func(tag string) bool

	// ShouldKeepComment reports comments to the Comment callback instead of skipping
	// them.
	ShouldKeepComment bool

	// ShouldDecodeNewlines decodes &#10; and &#9; in attribute values.
	ShouldDecodeNewlines bool

	// ShouldDecodeNewlinesForHref does the same for the href attribute of <a> only.
	// Some browsers encode newlines inside href values, so the two are configured
	// separately.
	ShouldDecodeNewlinesForHref bool

	// OutputSourceRange attaches source ranges to attributes.
	OutputSourceRange bool

	// Delimiters bounds interpolated expressions. The zero value means {{ and }}.
	Delimiters Delimiters

	// Filters rewrites a binding expression before it is emitted. Defaults to
	// ParseFilters.
	Filters FilterFunc

	// Whitespace controls how the tree builder treats whitespace-only text.
	Whitespace WhitespaceMode

	// CheckExpressions reports bindings that do not parse as expressions.
	CheckExpressions bool
}

// WhitespaceMode is the whitespace policy of the tree builder.
type WhitespaceMode int

const (
	// WhitespacePreserve keeps text nodes as written.
	WhitespacePreserve WhitespaceMode = iota
	// WhitespaceCondense drops whitespace-only text between tags and collapses runs of
	// whitespace into a single space.
	WhitespaceCondense
)

// HTMLOptions returns options with browser-like recovery rules for HTML elements.
func HTMLOptions() *Options {
	return &Options{
		ExpectHTML:       true,
		IsUnaryTag:       IsUnaryTag,
		CanBeLeftOpenTag: CanBeLeftOpenTag,
		IsNonPhrasingTag: IsNonPhrasingTag,
	}
}

func (o *Options) isUnaryTag(tag string) bool {
	return o.IsUnaryTag != nil && o.IsUnaryTag(tag)
}

func (o *Options) canBeLeftOpenTag(tag string) bool {
	return o.CanBeLeftOpenTag != nil && o.CanBeLeftOpenTag(tag)
}

func (o *Options) isNonPhrasingTag(tag string) bool {
	return o.IsNonPhrasingTag != nil && o.IsNonPhrasingTag(tag)
}

func (o *Options) filters() FilterFunc {
	if o.Filters != nil {
		return o.Filters
	}
	return ParseFilters
}
