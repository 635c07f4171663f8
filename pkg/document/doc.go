// Package document is the in-memory building model that host elements and
// their inserts live in. It supports element lookup, solid geometry
// retrieval through a kernel.Kernel and nested transactions whose edits
// can be rolled back.
//
// A Document is not safe for concurrent use.
package document
