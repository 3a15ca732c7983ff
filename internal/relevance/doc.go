// Package relevance scores catalog records against a search query. The
// scorer is a pure function: deterministic given (book, query), no side
// effects, and its output is only compared within one search call.
package relevance
