package plcmp

import "fmt"

// dispatch invokes the observer bound to d, if any, with (new, old). Errors
// are wrapped and returned; panics are not recovered.
func (inst *Instance) dispatch(d Descriptor, oldValue, newValue any) error {
	if d.Observer == "" {
		return nil
	}
	fn := inst.typ.observers[d.Observer]
	if err := fn(inst, newValue, oldValue); err != nil {
		return fmt.Errorf("%w: %s.%s: %w", ErrObserverFailure, inst.typ.tag, d.Observer, err)
	}
	return nil
}
