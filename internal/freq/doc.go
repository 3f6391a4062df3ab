// Package freq implements the frequency table that aggregates model values
// extracted by the scanner.
//
// The table is a classic chained hash table: one linked chain of entries per
// bucket, doubling the bucket array before the load factor would cross 3/4.
// Memory grows with the number of distinct values, never with the size of
// the input stream, which is the property that makes whole-file scans of
// huge inputs feasible.
//
// The table is not safe for concurrent use. Every scan owns exactly one
// table and mutates it from a single goroutine; batch runs merge per-file
// tables after their scans complete.
package freq
