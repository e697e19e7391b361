package proxy

import (
	"mime"
	"net/http"
)

// Session carries the request data the recorder needs through the HTTP
// request lifetime: the origin host from the request stage, the media type
// from the response stage.
type Session struct {
	// ID is the proxy session identifier.
	ID string

	// Hostname is the request host the recorded constraint tree is keyed
	// by.
	Hostname string

	// MediaType is the response media type, "" until the response headers
	// arrive.
	MediaType string

	// Charset is the response charset if the content-type carries one.
	Charset string

	HTTPRequest  *http.Request
	HTTPResponse *http.Response
}

// NewSession creates a session from the request headers.
func NewSession(id string, req *http.Request) *Session {
	return &Session{
		ID:          id,
		Hostname:    req.URL.Hostname(),
		HTTPRequest: req,
	}
}

// SetResponse attaches the response and derives the media type from its
// content-type header.
func (s *Session) SetResponse(resp *http.Response) {
	s.HTTPResponse = resp
	if resp == nil {
		return
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return
	}

	s.MediaType = mediaType
	s.Charset = params["charset"]
}

// IsHTML reports whether the response is an HTML document.
func (s *Session) IsHTML() bool {
	return s.MediaType == "text/html"
}
