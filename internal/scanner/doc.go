// Package scanner implements the tolerant, single-pass scanner that pulls
// string values for one target key out of a JSON-like byte stream.
//
// The scanner is deliberately not a JSON parser. It never builds a document
// tree and never validates surrounding structure: any double quote anywhere
// in the stream starts a candidate key, and everything that does not turn
// out to be a `"key": "value"` pair for the target key is skipped without
// being materialized. Multiple concatenated documents, trailing garbage,
// and partial structures are all acceptable input. The only fatal
// conditions are the ones that leave the scanner with no way forward: a
// string literal or a nested container truncated by end of stream, or a
// \u escape without its four hex digits.
//
// Memory use is bounded by the longest single string literal, not by the
// size of the input.
package scanner
