// SPDX-License-Identifier: MPL-2.0

package omod

// Bundled reports whether a dependency belongs in the module's library
// directory: it must be needed at runtime and not optional.
func (a Artifact) Bundled() bool {
	return !a.Optional && a.Scope.NeededAtRuntime()
}

// RuntimeArtifacts returns the dependencies to bundle, in input order.
func RuntimeArtifacts(deps []Artifact) []Artifact {
	var out []Artifact
	for _, dep := range deps {
		if dep.Bundled() {
			out = append(out, dep)
		}
	}
	return out
}
