//go:build !bvhdebug

package bvh

const debugAssertions = false
