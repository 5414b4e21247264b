//go:build !debug_extmem

package utils

// DebugValidate calls Validate and panics if it fails. It no-ops unless the debug_extmem build tag
// is present.
func DebugValidate(validatable Validatable) {
}
