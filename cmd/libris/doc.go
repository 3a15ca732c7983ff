// Command libris is the command-line interface for book search,
// summarization, and audio generation.
package main
