package wasmgen

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/numforge/ufuncgen/errors"
	"github.com/numforge/ufuncgen/host"
	"github.com/numforge/ufuncgen/ir"
)

// Engine compiles lowered wrappers and runs them on a wazero runtime.
// One Engine can hold many compiled wrappers; each gets its own host
// module instance so kernel closures never collide.
type Engine struct {
	runtime wazero.Runtime
	nextID  atomic.Uint64
}

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages
	// (64KB each). 0 means the wazero default.
	MemoryLimitPages uint32

	// CompilationCacheDir enables a filesystem compilation cache shared
	// between engines. Empty disables caching.
	CompilationCacheDir string
}

// NewEngine creates an Engine with the default wazero configuration.
func NewEngine(ctx context.Context) *Engine {
	e, _ := NewEngineWithConfig(ctx, nil)
	return e
}

// NewEngineWithConfig creates an Engine with custom configuration.
func NewEngineWithConfig(ctx context.Context, cfg *Config) (*Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()

	if cfg != nil {
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
		if cfg.CompilationCacheDir != "" {
			cache, err := wazero.NewCompilationCacheWithDir(cfg.CompilationCacheDir)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseLower, errors.KindInvalidData, err, "compilation cache")
			}
			runtimeCfg = runtimeCfg.WithCompilationCache(cache)
		}
	}

	return &Engine{runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg)}, nil
}

// Close releases the underlying runtime and every compiled wrapper.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// Module is one compiled wrapper instance.
type Module struct {
	instance api.Module
	hostMod  api.Module
	run      api.Function
}

// Compile lowers fn, instantiates a host module carrying its bindings,
// and instantiates the wrapper with a memory of memPages pages.
func (e *Engine) Compile(ctx context.Context, fn *ir.Func, bindings *host.Bindings, memPages uint32) (*Module, error) {
	hostName := fmt.Sprintf("host.%d", e.nextID.Add(1))

	wasmBytes, err := Lower(fn, hostName, memPages)
	if err != nil {
		return nil, err
	}

	hb := e.runtime.NewHostModuleBuilder(hostName)
	for _, d := range fn.Decls {
		hf, ok := bindings.Lookup(d.Symbol)
		if !ok {
			return nil, errors.NotFound(errors.PhaseLower, "host binding", d.Symbol)
		}
		if hf.Params != d.Params || hf.Results != d.Results {
			return nil, errors.New(errors.PhaseLower, errors.KindTypeMismatch).
				Symbol(d.Symbol).
				Detail("declared %d->%d, bound %d->%d", d.Params, d.Results, hf.Params, hf.Results).
				Build()
		}

		params := make([]api.ValueType, hf.Params)
		for i := range params {
			params[i] = api.ValueTypeI64
		}
		results := make([]api.ValueType, hf.Results)
		for i := range results {
			results[i] = api.ValueTypeI64
		}

		fn := hf.Fn
		adapter := api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
			res, err := fn(instanceMem{mod.Memory()}, stack[:len(params)])
			if err != nil {
				panic(err) // surfaced as a call error by wazero
			}
			copy(stack, res)
		})
		hb = hb.NewFunctionBuilder().
			WithGoModuleFunction(adapter, params, results).
			Export(d.Symbol)
	}

	hostMod, err := hb.Instantiate(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLower, errors.KindInvalidData, err, "instantiate host module")
	}

	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		_ = hostMod.Close(ctx)
		return nil, errors.Wrap(errors.PhaseLower, errors.KindInvalidData, err, "compile wrapper module")
	}

	instance, err := e.runtime.InstantiateModule(ctx, compiled,
		wazero.NewModuleConfig().WithName(hostName+".wrapper"))
	if err != nil {
		_ = hostMod.Close(ctx)
		return nil, errors.Wrap(errors.PhaseLower, errors.KindInvalidData, err, "instantiate wrapper module")
	}

	run := instance.ExportedFunction(ExportName)
	if run == nil {
		_ = instance.Close(ctx)
		_ = hostMod.Close(ctx)
		return nil, errors.NotFound(errors.PhaseLower, "export", ExportName)
	}

	Logger().Debug("compiled wrapper module",
		zap.String("host_module", hostName),
		zap.Int("imports", len(fn.Decls)),
		zap.Int("bytes", len(wasmBytes)))

	return &Module{instance: instance, hostMod: hostMod, run: run}, nil
}

// Close releases the wrapper instance and its host module.
func (m *Module) Close(ctx context.Context) error {
	if err := m.instance.Close(ctx); err != nil {
		return err
	}
	return m.hostMod.Close(ctx)
}

// Memory returns the wrapper's instance memory.
func (m *Module) Memory() host.Mem {
	return instanceMem{m.instance.Memory()}
}

// Run invokes the wrapper with the loop ABI parameters.
func (m *Module) Run(ctx context.Context, args, dims, steps, data int64) error {
	_, err := m.run.Call(ctx, uint64(args), uint64(dims), uint64(steps), uint64(data))
	if err != nil {
		return errors.Wrap(errors.PhaseExecute, errors.KindInvalidData, err, "wrapper call")
	}
	return nil
}

// Execute is the one-shot convenience used by callers that hold the
// wrapper memory in a host.Memory: it compiles fn, copies mem in, runs
// the wrapper once, and copies the instance memory back out.
func Execute(ctx context.Context, e *Engine, fn *ir.Func, bindings *host.Bindings, mem *host.Memory, args, dims, steps, data int64) error {
	mod, err := e.Compile(ctx, fn, bindings, PagesFor(mem.Len()))
	if err != nil {
		return err
	}
	defer mod.Close(ctx)

	im := mod.instance.Memory()
	if !im.Write(0, mem.Bytes()) {
		return errors.OutOfBounds(errors.PhaseExecute, mem.Len(), int64(im.Size()))
	}

	if err := mod.Run(ctx, args, dims, steps, data); err != nil {
		return err
	}

	out, ok := im.Read(0, uint32(mem.Len()))
	if !ok {
		return errors.OutOfBounds(errors.PhaseExecute, mem.Len(), int64(im.Size()))
	}
	copy(mem.Bytes(), out)
	return nil
}

// instanceMem adapts a wazero instance memory to host.Mem so host
// bindings see the memory the wrapper is actually executing against.
type instanceMem struct {
	m api.Memory
}

func (im instanceMem) Len() int64 {
	return int64(im.m.Size())
}

func (im instanceMem) LoadN(off int64, size int) (uint64, bool) {
	if off < 0 || off > int64(^uint32(0)) {
		return 0, false
	}
	o := uint32(off)
	switch size {
	case 1:
		v, ok := im.m.ReadByte(o)
		return uint64(v), ok
	case 2:
		v, ok := im.m.ReadUint16Le(o)
		return uint64(v), ok
	case 4:
		v, ok := im.m.ReadUint32Le(o)
		return uint64(v), ok
	case 8:
		return im.m.ReadUint64Le(o)
	}
	return 0, false
}

func (im instanceMem) StoreN(off int64, size int, v uint64) bool {
	if off < 0 || off > int64(^uint32(0)) {
		return false
	}
	o := uint32(off)
	switch size {
	case 1:
		return im.m.WriteByte(o, byte(v))
	case 2:
		return im.m.WriteUint16Le(o, uint16(v))
	case 4:
		return im.m.WriteUint32Le(o, uint32(v))
	case 8:
		return im.m.WriteUint64Le(o, v)
	}
	return false
}
