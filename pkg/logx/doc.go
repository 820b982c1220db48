// Package logx is a thin structured-logging layer over zerolog.
//
// It exists so the rest of the codebase does not depend on zerolog types
// directly: components take a logx.Logger value and callers decide where the
// output goes (console, file, or nowhere in tests).
package logx
