//go:build probemapcheck

package probemap

// checkEnabled turns on the assertions that need policy calls to evaluate:
// reserved-key screening, slot-state checks behind positions, and the full
// invariant sweep after a rebuild. Build with -tags probemapcheck.
const checkEnabled = true
