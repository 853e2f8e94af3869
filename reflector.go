package plcmp

import "github.com/pthm/plcmp/lib/schema"

// reflectAttribute flushes a property value outward to its mirrored
// attribute. It never writes back to the property and is a no-op when the
// host already matches.
func reflectAttribute(host Host, mirrored map[string]string, d Descriptor, v any) {
	cur, present := host.Attribute(d.Name)

	switch d.Kind {
	case schema.Bool:
		if v.(bool) {
			if !present || cur != "" {
				host.SetAttribute(d.Name, "")
			}
			mirrored[d.Name] = ""
			return
		}
	case schema.String:
		if s := v.(string); s != "" {
			if !present || cur != s {
				host.SetAttribute(d.Name, s)
			}
			mirrored[d.Name] = s
			return
		}
	}

	if present {
		host.RemoveAttribute(d.Name)
	}
	delete(mirrored, d.Name)
}

// seedValue reads the markup value of d from an attribute: booleans by
// presence, strings by value.
func seedValue(d Descriptor, value string, present bool) (any, bool) {
	if !present {
		return nil, false
	}
	if d.Kind == schema.Bool {
		return true, true
	}
	return value, true
}
