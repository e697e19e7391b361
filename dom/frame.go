package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Frame owns one live document, its constraint side document, and the
// constraint mode string. A frame is single-threaded by construction: the
// host invokes every mutation hook on the frame's thread.
type Frame struct {
	doc        *Document
	constraint *Document
	mode       string

	sink *ProbeSink
}

// NewFrame attaches a live document to a new frame with an empty constraint
// document and record mode.
func NewFrame(doc *Document) (f *Frame) {
	f = &Frame{
		doc:        doc,
		constraint: NewDocument(),
		mode:       "r",
		sink:       &ProbeSink{probes: map[any]struct{}{}},
	}
	f.constraint.hasWindow = false
	doc.frame = f

	return f
}

// Document returns the frame's live document.
func (f *Frame) Document() *Document {
	return f.doc
}

// DOMConstraint returns the constraint side document. Its element children
// are the permitted top-level structural variants.
func (f *Frame) DOMConstraint() *Document {
	return f.constraint
}

// DOMConstraintMode returns the constraint mode string. The first character
// selects record ('r') or enforce ('e'); the remainder, split on spaces, is
// the id-prefix whitelist.
func (f *Frame) DOMConstraintMode() string {
	return f.mode
}

// SetDOMConstraintMode sets the constraint mode string.
func (f *Frame) SetDOMConstraintMode(mode string) {
	f.mode = mode
}

// SetDOMConstraintHTML replaces the constraint document's content with the
// given serialized HTML. The markup is parsed with document semantics, so
// the constraint tree always carries the html/head/body spine the locate
// walk expects. An empty string clears the constraint tree.
func (f *Frame) SetDOMConstraintHTML(markup string) (err error) {
	for f.constraint.Node.FirstChild != nil {
		f.constraint.Node.RemoveChild(f.constraint.Node.FirstChild)
	}

	if markup == "" {
		return nil
	}

	parsed, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return ErrBadMarkup
	}

	for parsed.FirstChild != nil {
		n := parsed.FirstChild
		parsed.RemoveChild(n)
		f.constraint.Node.AppendChild(n)
	}

	return nil
}

// ProbeSink returns the frame's probe sink.
func (f *Frame) ProbeSink() *ProbeSink {
	return f.sink
}

// ProbeSink keeps the probes registered with a frame. It exists so that an
// engine's lifetime is observable: construction registers, Shutdown
// deregisters.
type ProbeSink struct {
	probes map[any]struct{}
}

// Add registers a probe.
func (s *ProbeSink) Add(probe any) {
	s.probes[probe] = struct{}{}
}

// Remove deregisters a probe.
func (s *ProbeSink) Remove(probe any) {
	delete(s.probes, probe)
}

// Has reports whether the probe is registered.
func (s *ProbeSink) Has(probe any) bool {
	_, ok := s.probes[probe]

	return ok
}
