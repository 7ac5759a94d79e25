// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package registry

import (
	_ "embed"
	"sync"
)

//go:embed default.json
var defaultDocument []byte

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default returns the built-in definitions. It panics if the embedded
// document is invalid, which the package tests rule out.
func Default() *Registry {
	defaultOnce.Do(func() {
		reg, err := Load(defaultDocument)
		if err != nil {
			panic("registry: embedded default definitions are invalid: " + err.Error())
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

// DefaultDocument returns the raw embedded definitions document.
func DefaultDocument() []byte {
	out := make([]byte, len(defaultDocument))
	copy(out, defaultDocument)
	return out
}
