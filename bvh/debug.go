//go:build bvhdebug

package bvh

// Contract violations panic when built with the bvhdebug tag.
const debugAssertions = true
