//go:build tools

// Package tools records development tool dependencies. The tools are
// installed with `go install` and intentionally kept out of go.mod:
// they are workflow helpers, not runtime dependencies.
package tools

// Air - live reload while developing the API locally.
//
//	go install github.com/air-verse/air@v1.63.0
