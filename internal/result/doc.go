// Package result carries tabular query results between backends and the
// execution pipeline.
//
// Backends return the Result interface; the concrete Table type additionally
// implements Serializable, the capability the persistence decorator probes
// for. A backend returning a Result without that capability is valid; such
// results execute fine, they just cannot be written to disk.
package result
