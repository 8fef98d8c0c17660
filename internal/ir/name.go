package ir

import "golang.org/x/text/unicode/norm"

// NormalizeName returns the NFC form of a node or chart name.
//
// Names compare equal only after normalization, so "é" typed as one code
// point and "é" typed as e + combining accent are the same node.
func NormalizeName(s string) string {
	return norm.NFC.String(s)
}
