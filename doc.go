// Package plcmp provides the reactive property core for server-rendered
// widgets written in Go and templ.
//
// A component type declares typed properties once. Each live instance keeps
// the property values, mirrors flagged properties to attributes of its host
// element, invokes observers on change, and gates user interaction while it
// is disabled or loading.
//
// # Declaring a type
//
// Types are built with explicit descriptors and explicit observer bindings:
//
//	var Type = plcmp.NewType("pl-button").
//	    Props(
//	        plcmp.String("label"),
//	        plcmp.Bool("disabled").Reflected(),
//	        plcmp.String("variant").Reflected().WithDefault("secondary"),
//	        plcmp.Bool("loading").Reflected().ObservedBy("loadingObserver"),
//	    ).
//	    Observe("loadingObserver", onLoading).
//	    Focusable()
//
// and registered exactly once per tag:
//
//	reg := plcmp.NewRegistry(key)
//	reg.MustDefine(Type)
//
// Registering a second type under the same tag fails with ErrDuplicateType.
// The schema of a type is immutable once defined.
//
// # Writes
//
// Instance.Set is the only way state changes. A write is validated and
// coerced (ErrUnknownProperty, ErrTypeMismatch reject it before anything is
// mutated), stored, reflected to the attribute, passed to the observer as
// (new, old), and, for disabled and loading, fed to the interaction gate.
// Attribute changes coming from the host go through SetAttribute and
// RemoveAttribute, which normalise into Set.
//
// Observer errors are returned wrapped in ErrObserverFailure after the value
// has been committed; they indicate a bug rather than a recoverable
// condition.
//
// # Interaction gate
//
// Types declaring a boolean disabled or loading property get a gate. While
// either is true, activation events (click by default) have their
// propagation stopped in the capture phase and the host's tabindex is -1.
// When both clear, the tabindex in effect before the gated episode is
// restored.
//
// # Rendering and routes
//
// Instance.Render returns a templ.Component for the host element.
// Registry.Handler serves render, set and activate routes where each request
// mounts an instance from query attributes or a signed state token.
//
// Instances are single-threaded, like the event loop they model; the
// registry is safe for concurrent use.
package plcmp
