//go:build tools

// Package tools pins the linters used on this module, kept out of the main go.mod.
// Run with: go run -modfile=tools/go.mod github.com/golangci/golangci-lint/cmd/golangci-lint run ./...
package tools

import _ "github.com/golangci/golangci-lint/cmd/golangci-lint"
