// Package output holds everything a search worker needs to render results:
// the output mode, display toggles, abstract formatting tokens and the shared
// sink that serialises writes from concurrent workers.
//
// The search core never writes terminal escape codes itself. It wraps text in
// Tokens through a Styler; PlainStyler leaves text untouched and ColorStyler
// maps each token to a fatih/color attribute set.
//
// A single Sink is created per run and handed to every engine. Each Write is
// one complete record (a rendered line, a count, a file name) or one complete
// per-file buffer, so records from different files interleave only at record
// granularity.
package output
