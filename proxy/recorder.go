package proxy

import (
	"strings"
	"sync"

	"github.com/AdguardTeam/golibs/errors"
	"golang.org/x/exp/slices"
	"golang.org/x/net/html"

	"github.com/AdguardTeam/domguard"
	"github.com/AdguardTeam/domguard/dom"
)

// ErrNoDocumentBody is returned when recorded markup has no body to replay.
const ErrNoDocumentBody errors.Error = "document has no body"

// Recorder accumulates one record-mode DOMGuard frame per origin host and
// replays observed documents into it. The proxy handlers run on connection
// goroutines, so the recorder serializes access to the frames; each frame
// itself keeps the engine's single-threaded invariant.
type Recorder struct {
	mu     sync.Mutex
	frames map[string]*hostFrame
}

type hostFrame struct {
	frame *dom.Frame
	guard *domguard.DOMGuard
	body  *html.Node
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{frames: map[string]*hostFrame{}}
}

// RecordHTML parses an observed document and replays its body content into
// the host's record-mode frame, growing the host's constraint tree.
func (r *Recorder) RecordHTML(host, markup string) (err error) {
	parsed, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return errors.Annotate(err, "parsing document for %s: %w", host)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	hf, err := r.hostFrame(host)
	if err != nil {
		return err
	}

	parsedBody := findTag(parsed, "body")
	if parsedBody == nil {
		return ErrNoDocumentBody
	}

	for parsedBody.FirstChild != nil {
		node := parsedBody.FirstChild
		parsedBody.RemoveChild(node)

		if !hf.guard.WillInsertDOMNode(hf.body, node, nil) {
			// Record mode always allows; this is a safety valve.
			continue
		}
		hf.body.AppendChild(node)
	}

	return nil
}

// ConstraintHTML returns the serialized constraint tree recorded for a host.
func (r *Recorder) ConstraintHTML(host string) (markup string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hf, ok := r.frames[host]
	if !ok {
		return "", false
	}

	var sb strings.Builder
	for n := hf.frame.DOMConstraint().Node.FirstChild; n != nil; n = n.NextSibling {
		sb.WriteString(dom.Markup(n))
	}

	return sb.String(), true
}

// Hosts returns the recorded hosts in sorted order.
func (r *Recorder) Hosts() (hosts []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for host := range r.frames {
		hosts = append(hosts, host)
	}
	slices.Sort(hosts)

	return hosts
}

// Close shuts down every recorded frame's engine.
func (r *Recorder) Close() (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, hf := range r.frames {
		hf.guard.Shutdown()
	}
	r.frames = map[string]*hostFrame{}

	return nil
}

// hostFrame returns the frame for a host, creating it on first use. The
// caller must hold the lock.
func (r *Recorder) hostFrame(host string) (hf *hostFrame, err error) {
	if hf = r.frames[host]; hf != nil {
		return hf, nil
	}

	doc, err := dom.ParseDocument(`<html><head></head><body></body></html>`)
	if err != nil {
		return nil, errors.Annotate(err, "creating frame for %s: %w", host)
	}

	frame := dom.NewFrame(doc)
	guard := domguard.New(frame)
	guard.FrameAttachedToParent()

	hf = &hostFrame{
		frame: frame,
		guard: guard,
		body:  findTag(doc.Node, "body"),
	}
	if hf.body == nil {
		return nil, ErrNoDocumentBody
	}

	r.frames[host] = hf

	return hf, nil
}

// findTag returns the first element with the given tag in tree order.
func findTag(n *html.Node, tag string) *html.Node {
	if dom.IsElement(n) && n.Data == tag {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findTag(child, tag); found != nil {
			return found
		}
	}

	return nil
}
