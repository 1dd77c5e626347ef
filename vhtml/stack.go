package vhtml

// element is an open element on the tokenizer's stack.
type element struct {
	tag      string
	lowerTag string
	attrs    []Attr
	start    int
	end      int
}

// elementStack is a stack of open elements.
type elementStack []*element

// push adds an element to the top of the stack.
func (s *elementStack) push(e *element) {
	*s = append(*s, e)
}

// top returns the most recently pushed element, or nil if s is empty.
func (s *elementStack) top() *element {
	if i := len(*s); i > 0 {
		return (*s)[i-1]
	}
	return nil
}

// lastIndex returns the index of the top-most element whose lower-cased tag is
// lowerTag, or -1 if there is none.
func (s *elementStack) lastIndex(lowerTag string) int {
	for i := len(*s) - 1; i >= 0; i-- {
		if (*s)[i].lowerTag == lowerTag {
			return i
		}
	}
	return -1
}

// truncate drops every element at index i and above.
func (s *elementStack) truncate(i int) {
	for j := i; j < len(*s); j++ {
		(*s)[j] = nil
	}
	*s = (*s)[:i]
}
