package plcmp

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/pthm/plcmp/lib/dom"
)

// HeaderActivated reports whether an activation reached the component's
// handler or was suppressed by the interaction gate.
const HeaderActivated = "PL-Activated"

// Handler returns the HTTP handler for component routes. Mount it at the
// registry's prefix:
//
//	GET  {prefix}{tag}?variant=primary&disabled   render a fresh instance
//	POST {prefix}{tag}/set        s=token, name=value, -name   write properties
//	POST {prefix}{tag}/activate   s=token                      dispatch activation
//
// Query parameters and form fields are read as attributes, the same way
// SetAttribute reads them: a boolean property is true when its field is
// present, whatever the value, so ?disabled=false and disabled=on both set
// it. A /set field named -name removes the attribute, which clears a boolean
// and empties a string. Removals are applied before writes.
//
// Every request mounts its own instance from the query or token and detaches
// it after rendering.
func (reg *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CSRF protection: mutating methods require HX-Request header
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			if !IsHTMX(r) {
				http.Error(w, "Forbidden: HTMX request required", http.StatusForbidden)
				return
			}
		}

		reg.serve(w, r)
	})
}

func (reg *Registry) serve(w http.ResponseWriter, r *http.Request) {
	rest, ok := strings.CutPrefix(r.URL.Path, reg.Prefix())
	if !ok {
		http.NotFound(w, r)
		return
	}
	tag, action, _ := strings.Cut(rest, "/")

	t, err := reg.Lookup(tag)
	if err != nil {
		reg.OnError(w, r, err)
		return
	}

	reg.Logger.Debug("component request", "tag", tag, "action", action, "method", r.Method)

	switch {
	case action == "" && (r.Method == http.MethodGet || r.Method == http.MethodHead):
		reg.handleRender(w, r, t)
	case action == ActionSet && r.Method == http.MethodPost:
		reg.handleSet(w, r, t)
	case action == ActionActivate && r.Method == http.MethodPost:
		reg.handleActivate(w, r, t)
	case action == "" || action == ActionSet || action == ActionActivate:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

func (reg *Registry) handleRender(w http.ResponseWriter, r *http.Request, t *Type) {
	seed := make(map[string]string)
	for k, vs := range r.URL.Query() {
		if len(vs) > 0 {
			seed[k] = vs[0]
		}
	}

	inst, err := mount(reg, t, dom.NewElement(t.tag), Snapshot{Tag: t.tag, Attrs: seed})
	if err != nil {
		reg.OnError(w, r, err)
		return
	}
	defer inst.Detach()

	reg.render(w, r, inst)
}

func (reg *Registry) handleSet(w http.ResponseWriter, r *http.Request, t *Type) {
	inst, _, err := reg.restore(r, t, nil)
	if err != nil {
		reg.OnError(w, r, err)
		return
	}
	defer inst.Detach()

	var removed, written []string
	for field := range r.PostForm {
		if field == "s" {
			continue
		}
		name, remove := strings.CutPrefix(field, "-")
		if _, err := t.schema.Lookup(name); err != nil {
			reg.OnError(w, r, fmt.Errorf("%s: %w", t.tag, err))
			return
		}
		if remove {
			removed = append(removed, name)
		} else {
			written = append(written, name)
		}
	}
	sort.Strings(removed)
	sort.Strings(written)

	for _, name := range removed {
		if err := inst.RemoveAttribute(name); err != nil {
			reg.OnError(w, r, err)
			return
		}
	}
	for _, name := range written {
		if err := inst.SetAttribute(name, r.PostForm.Get(name)); err != nil {
			reg.OnError(w, r, err)
			return
		}
	}

	reg.render(w, r, inst)
}

func (reg *Registry) handleActivate(w http.ResponseWriter, r *http.Request, t *Type) {
	parent := dom.NewElement("body")
	inst, host, err := reg.restore(r, t, parent)
	if err != nil {
		reg.OnError(w, r, err)
		return
	}
	defer inst.Detach()

	evType := "click"
	if len(t.activation) > 0 {
		evType = t.activation[0]
	}

	reached := false
	remove := parent.AddEventListener(evType, func(*dom.Event) { reached = true }, false)
	host.Dispatch(dom.NewEvent(evType))
	remove()

	w.Header().Set(HeaderActivated, strconv.FormatBool(reached))

	if reached && t.onActivate != nil {
		if err := t.onActivate(r.Context(), inst); err != nil {
			reg.OnError(w, r, err)
			return
		}
	}

	reg.render(w, r, inst)
}

// restore mounts a fresh instance from the request's state token. When
// parent is non-nil the host is appended to it.
func (reg *Registry) restore(r *http.Request, t *Type, parent *dom.Element) (*Instance, *dom.Element, error) {
	if err := r.ParseForm(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	snap, err := reg.encoder.Decode(r.FormValue("s"))
	if err != nil {
		return nil, nil, err
	}
	if snap.Tag != t.tag {
		return nil, nil, fmt.Errorf("%w: token for %q used with %q", ErrInvalidFormat, snap.Tag, t.tag)
	}

	host := dom.NewElement(t.tag)
	if parent != nil {
		parent.Append(host)
	}

	inst, err := mount(reg, t, host, snap)
	if err != nil {
		return nil, nil, err
	}
	return inst, host, nil
}

func (reg *Registry) render(w http.ResponseWriter, r *http.Request, inst *Instance) {
	if err := Render(w, r, inst.Render()); err != nil {
		reg.Logger.Error("component render failed", "tag", inst.Tag(), "id", inst.ID(), "err", err)
	}
}

// StatusFor maps a component error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case IsUnknownType(err):
		return http.StatusNotFound
	case IsRejected(err), IsTokenError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (reg *Registry) defaultOnError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	reg.Logger.Log(r.Context(), level, "component request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"err", err,
	)
	http.Error(w, http.StatusText(status), status)
}
