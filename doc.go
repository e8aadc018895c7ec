// Package ufuncgen generates vectorized loop entry points around
// compiled scalar kernels.
//
// A kernel computes one element (or one core-dimensional block); the
// generated wrapper iterates it over array arguments following the
// args/dims/steps loop ABI, handling striding, broadcasting, error
// reporting and managed-object boxing.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	ufuncgen/            Root package documentation
//	├── ufunc/           Wrapper generators: elementwise and generalized
//	├── ir/              Structured IR the generators emit
//	├── interp/          Reference backend: tree-walking IR interpreter
//	├── wasmgen/         Native backend: IR to wasm, executed via wazero
//	├── host/            Linear memory, bindings and runtime services
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Generate and run an elementwise wrapper:
//
//	rt := host.NewRuntime()
//	w, err := ufunc.BuildElementwise(ufunc.ElementwiseConfig{
//		Signature: ufunc.Signature{
//			Args: []ufunc.ElemType{ufunc.Float64},
//			Ret:  ufunc.Float64,
//		},
//		Kernel: kernel,
//	}, rt)
//	if err != nil {
//		return err
//	}
//	err = w.Call(ctx, mem, argsOff, dimsOff, stepsOff, 0)
//	if kerr := rt.Errors.Consume(); kerr != nil {
//		// a kernel invocation failed
//	}
//
// The same Wrapper runs unchanged on the wasmgen backend:
//
//	e := wasmgen.NewEngine(ctx)
//	defer e.Close(ctx)
//	err = wasmgen.Execute(ctx, e, w.Func, w.Bindings, mem,
//		argsOff, dimsOff, stepsOff, 0)
package ufuncgen
