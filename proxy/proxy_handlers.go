package proxy

import (
	"bytes"
	"io"
	"net/http"

	"github.com/AdguardTeam/golibs/log"
	"github.com/AdguardTeam/gomitmproxy"
)

const sessionPropKey = "session"

// onRequest handles the outgoing HTTP requests.
func (s *Server) onRequest(sess *gomitmproxy.Session) (*http.Request, *http.Response) {
	r := sess.Request()
	session := NewSession(sess.ID(), r)

	log.Debug("domguard: id=%s: saving session", session.ID)
	sess.SetProp(sessionPropKey, session)

	if r.Method == http.MethodConnect {
		// Do nothing for CONNECT requests
		return nil, nil
	}

	return r, nil
}

// onResponse records HTML responses. The response itself is never modified;
// nil tells the proxy to pass it through.
func (s *Server) onResponse(sess *gomitmproxy.Session) *http.Response {
	v, ok := sess.GetProp(sessionPropKey)
	if !ok {
		log.Error("domguard: id=%s: session not found", sess.ID())
		return nil
	}

	session, ok := v.(*Session)
	if !ok {
		log.Error("domguard: id=%s: session not found (wrong type)", sess.ID())
		return nil
	}

	session.SetResponse(sess.Response())
	if !session.IsHTML() {
		return nil
	}

	resp := session.HTTPResponse
	if resp.Header.Get("Content-Encoding") != "" {
		// The recorder reads plain bodies only; decoding belongs to the
		// client.
		return nil
	}
	if resp.ContentLength > s.MaxBodySize {
		return nil
	}

	body, tooBig, err := bufferBody(resp, s.MaxBodySize)
	if err != nil {
		log.Error("domguard: id=%s: cannot read response body: %v", session.ID, err)
		return nil
	}
	if tooBig {
		log.Debug("domguard: id=%s: body over %d bytes, not recorded", session.ID, s.MaxBodySize)
		return nil
	}

	if err = s.recorder.RecordHTML(session.Hostname, string(body)); err != nil {
		log.Error("domguard: id=%s: cannot record %s: %v", session.ID, session.Hostname, err)
	} else {
		log.Debug("domguard: id=%s: recorded %s (%d bytes)", session.ID, session.Hostname, len(body))
	}

	return nil
}

// bufferBody reads the whole response body and replaces it with an in-memory
// reader, so the client still receives it. tooBig is true when the body
// exceeded max and recording must be skipped.
func bufferBody(resp *http.Response, max int64) (body []byte, tooBig bool, err error) {
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, max+1))
	if err != nil {
		return nil, false, err
	}

	if int64(len(body)) > max {
		rest, rerr := io.ReadAll(resp.Body)
		if rerr != nil {
			return nil, false, rerr
		}
		body = append(body, rest...)
		tooBig = true
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))

	return body, tooBig, nil
}
