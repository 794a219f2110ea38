// Package textutil provides the title handling shared by the library and the
// suggestion engine.
//
// FoldTitle produces the case-folded key used for title exclusion sets.
// Tokenize splits titles into accent-free words in any script; BestMatch
// compares those as IDF-weighted term vectors to resolve a loosely typed
// title against the saved lists.
package textutil
