package plcmp

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/pthm/plcmp/lib/dom"
)

// TestInstance is a mounted instance inside a two-level element tree, for
// unit tests of property, reflection and gate behaviour.
type TestInstance struct {
	*Instance
	Element *dom.Element
	Parent  *dom.Element
}

// TestMount mounts tag from reg on a fresh host element appended to a parent
// element:
//
//	ti, err := plcmp.TestMount(reg, "pl-button", map[string]string{"disabled": ""})
//	if ti.Activate() {
//	    t.Fatal("click should not reach the parent while disabled")
//	}
func TestMount(reg *Registry, tag string, seed map[string]string) (*TestInstance, error) {
	parent := dom.NewElement("div")
	host := dom.NewElement(tag)
	parent.Append(host)

	inst, err := reg.Mount(tag, host, seed)
	if err != nil {
		return nil, err
	}
	return &TestInstance{Instance: inst, Element: host, Parent: parent}, nil
}

// Activate dispatches a click on the host and reports whether it reached a
// bubble listener on the parent.
func (ti *TestInstance) Activate() bool {
	return ti.ActivateWith(dom.NewEvent("click"))
}

// ActivateWith dispatches ev on the host and reports whether it reached a
// bubble listener on the parent.
func (ti *TestInstance) ActivateWith(ev *dom.Event) bool {
	reached := false
	remove := ti.Parent.AddEventListener(ev.Type, func(*dom.Event) { reached = true }, false)
	defer remove()
	ti.Element.Dispatch(ev)
	return reached
}

// HTML renders the instance to a string.
func (ti *TestInstance) HTML() (string, error) {
	var buf bytes.Buffer
	if err := ti.Render().Render(context.Background(), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// TestResult holds the result of a handler request for testing.
type TestResult struct {
	HTML       string
	StatusCode int
	Headers    http.Header
}

// TestGet simulates a GET request against a handler.
//
//	result := plcmp.TestGet(reg.Handler(), "/_pl/pl-button?variant=primary")
func TestGet(h http.Handler, target string) *TestResult {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return serveTest(h, req)
}

// TestPost simulates an HTMX POST request with form data against a handler.
//
//	result := plcmp.TestPost(reg.Handler(), "/_pl/pl-button/set", map[string]string{
//	    "s":        token,
//	    "disabled": "true",
//	})
func TestPost(h http.Handler, target string, formData map[string]string) *TestResult {
	form := url.Values{}
	for k, v := range formData {
		form.Set(k, v)
	}

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	return serveTest(h, req)
}

func serveTest(h http.Handler, req *http.Request) *TestResult {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return &TestResult{
		HTML:       rec.Body.String(),
		StatusCode: rec.Code,
		Headers:    rec.Header(),
	}
}

// HTMLContains checks if the HTML contains a substring.
func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

// HTMLContainsAll checks if the HTML contains all the given substrings.
func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

// IsOK checks if the status code is 200.
func (r *TestResult) IsOK() bool {
	return r.StatusCode == http.StatusOK
}

// HasStatus checks if the status code matches.
func (r *TestResult) HasStatus(code int) bool {
	return r.StatusCode == code
}

// Activated reports the PL-Activated header of an activate response.
func (r *TestResult) Activated() bool {
	return r.Headers.Get(HeaderActivated) == "true"
}

// StateToken extracts the data-pl-state token from the rendered HTML.
func (r *TestResult) StateToken() string {
	const marker = `data-pl-state="`
	i := strings.Index(r.HTML, marker)
	if i < 0 {
		return ""
	}
	rest := r.HTML[i+len(marker):]
	j := strings.IndexByte(rest, '"')
	if j < 0 {
		return ""
	}
	return rest[:j]
}
