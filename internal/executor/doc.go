// Package executor runs document cells against their configured backends.
//
// The pipeline is a chain of components sharing one interface. The base
// component owns the validated-cell index and the connection cache;
// decorators wrap a component to add cross-cutting behavior (timing logs,
// result persistence) and forward everything else. Each variant implements
// every interface method explicitly, with no dynamic delegation, so adding
// a method to Component breaks compilation of any link that forgot it.
//
// ExecuteMany on every link routes through that same link's ExecuteCell.
// This guarantees decorator behavior applies identically whether cells run
// one at a time or in bulk.
//
// Connections are cached by backend name + connection string and survive
// Refresh: re-reading the document replaces the cell index but reuses open
// connections for unchanged inputs.
package executor
