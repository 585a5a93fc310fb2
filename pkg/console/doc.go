// Package console implements the hbnb command shell: a tokenizer for
// command arguments, the rewrite of the dotted "Kind.command(args)" form,
// the dispatcher running record operations with their fixed diagnostics,
// and the read loop around them.
package console
