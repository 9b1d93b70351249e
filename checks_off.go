//go:build !probemapcheck

package probemap

const checkEnabled = false
