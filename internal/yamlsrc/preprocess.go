// Package yamlsrc turns YAML source bytes into the expression AST that
// package eval walks: it runs the `!else:` preprocessor (spec.md §6.2),
// then decodes tagged and plain YAML nodes (spec.md §6.1) using
// gopkg.in/yaml.v3's low-level Node API, which is how the YAML
// collaborator is consumed throughout this module.
package yamlsrc

import "bytes"

// elseTag is the literal substring that confuses the YAML scanner: a
// colon immediately after the !else tag folds into the tag name instead
// of starting the mapping value.
var elseTag = []byte("!else:")
var elseTagFixed = []byte("!else :")

// Preprocess rewrites every occurrence of `!else:` to `!else :` before
// YAML parsing. It is deliberately byte-level and oblivious to string
// literals, quoting, or comments — exactly the naive behavior spec.md
// §6.2 and §9 call out and preserve; a `!else:` inside a quoted scalar
// would be rewritten too.
func Preprocess(src []byte) []byte {
	return bytes.ReplaceAll(src, elseTag, elseTagFixed)
}
