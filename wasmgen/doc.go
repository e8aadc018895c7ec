// Package wasmgen lowers generated wrapper IR to WebAssembly and
// executes it through wazero's JIT. Every call symbol of a wrapper
// becomes an imported host function; the wrapper's linear memory is
// the module's own exported memory.
//
// Lowering is direct: the structured IR maps one-to-one onto wasm
// structured control flow (loops, ifs, labeled blocks with forward
// branches), variables become i64 locals, and loads and stores become
// zero-extending i64 memory accesses.
package wasmgen
