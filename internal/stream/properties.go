package stream

// ModuleDeploymentProperties is a mapping from property name to value,
// supporting typed accessors with defaults via the embedded PropertyAccessor.
type ModuleDeploymentProperties struct {
	PropertyAccessor
}

// NewModuleDeploymentProperties wraps a property bag. A nil map is treated
// as empty.
func NewModuleDeploymentProperties(props map[string]string) ModuleDeploymentProperties {
	return ModuleDeploymentProperties{PropertyAccessor: NewPropertyAccessor(props)}
}

// Clone returns a ModuleDeploymentProperties backed by a fresh copy of the
// underlying bag, so mutations via Put don't alias the original.
func (p ModuleDeploymentProperties) Clone() ModuleDeploymentProperties {
	return NewModuleDeploymentProperties(p.Properties())
}

// RuntimeModuleDeploymentProperties extends ModuleDeploymentProperties with
// the replica sequence assigned by the deployment driver. The planner
// accretes consumer./producer. derived keys directly onto the embedded bag
// (via Put) as it walks the stream; the result is handed to BusCore.
type RuntimeModuleDeploymentProperties struct {
	ModuleDeploymentProperties
	sequence int
}

// NewRuntimeModuleDeploymentProperties builds runtime properties from a base
// bag (cloned, so the caller's original is left untouched) and the replica's
// assigned sequence.
func NewRuntimeModuleDeploymentProperties(base ModuleDeploymentProperties, sequence int) RuntimeModuleDeploymentProperties {
	cloned := base.Clone()
	return RuntimeModuleDeploymentProperties{ModuleDeploymentProperties: cloned, sequence: sequence}
}

// Sequence returns the replica's 1-based sequence among Count copies.
func (r RuntimeModuleDeploymentProperties) Sequence() int { return r.sequence }
