package analysis

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"loom/internal/llm"
	"loom/internal/logging"
	"loom/internal/prompt"
	"loom/internal/services"
	"loom/internal/transcript"
)

// TranscriptVar is the reserved context key carrying the raw transcript text.
const TranscriptVar = "transcript"

// Invoker is the LLM capability boundary the resolver depends on.
type Invoker interface {
	Invoke(ctx context.Context, req llm.Request) (map[string]any, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, req llm.Request) (map[string]any, error)

func (f InvokerFunc) Invoke(ctx context.Context, req llm.Request) (map[string]any, error) {
	return f(ctx, req)
}

// Cache is the shared analysis state threaded through dependency
// resolution. It wraps the document's analysis map directly, so inserts are
// visible to the caller and to sibling resolutions. Callees may insert but
// never delete entries.
type Cache struct {
	results map[string]*transcript.Result
}

// NewCache wraps an existing analysis map. The map is shared, not copied.
func NewCache(results map[string]*transcript.Result) *Cache {
	if results == nil {
		results = map[string]*transcript.Result{}
	}
	return &Cache{results: results}
}

// Get returns a stored result.
func (c *Cache) Get(name string) (*transcript.Result, bool) {
	res, ok := c.results[name]
	return res, ok
}

// Has reports whether a result exists for name.
func (c *Cache) Has(name string) bool {
	_, ok := c.results[name]
	return ok
}

// Put inserts a result. Existing entries are overwritten; deletion is not
// offered by design.
func (c *Cache) Put(name string, res *transcript.Result) {
	c.results[name] = res
}

// Resolver runs analysis types, auto-running missing required
// prerequisites first.
type Resolver struct {
	registry *Registry
	invoker  Invoker
	model    string
	logger   *slog.Logger
	now      func() time.Time
}

// NewResolver constructs a resolver. The model identifier is stamped into
// successful results as run metadata.
func NewResolver(registry *Registry, invoker Invoker, model string, logger *slog.Logger) *Resolver {
	return &Resolver{
		registry: registry,
		invoker:  invoker,
		model:    model,
		logger:   logging.NewComponentLogger(logger, "resolver"),
		now:      time.Now,
	}
}

// ResolveAndRun runs the named analysis type against the document,
// recursively running missing requires first. It returns the result and
// the names of every prerequisite that was auto-run, in execution order.
//
// Prerequisites are resolved strictly in declaration order with no
// parallelism. A failed prerequisite aborts the whole chain with a hard
// error; a failed top-level invocation is reported as an error-bearing
// result instead. Newly produced prerequisites are inserted into the cache
// (and therefore the document's analysis map) as they complete.
func (r *Resolver) ResolveAndRun(ctx context.Context, doc *transcript.Document, name string, cache *Cache) (*transcript.Result, []string, error) {
	if err := r.registry.CheckCycles(name); err != nil {
		return nil, nil, err
	}
	return r.run(ctx, doc, name, cache, false)
}

func (r *Resolver) run(ctx context.Context, doc *transcript.Document, name string, cache *Cache, nested bool) (*transcript.Result, []string, error) {
	def, err := r.registry.Load(name)
	if err != nil {
		return nil, nil, err
	}

	runCtx := services.WithAnalysisType(ctx, name)
	logger := logging.WithContext(runCtx, r.logger)

	var autoRan []string
	for _, req := range def.Requires {
		if cache.Has(req) {
			continue
		}
		logger.Info("auto-running missing prerequisite", logging.String("prerequisite", req))
		sub, subRan, err := r.run(ctx, doc, req, cache, true)
		if err != nil {
			return nil, nil, err
		}
		cache.Put(req, sub)
		autoRan = append(autoRan, subRan...)
		autoRan = append(autoRan, req)
	}

	vars := r.BuildContext(doc, def, cache)
	result, err := r.InvokeDefinition(runCtx, doc, def, vars)
	if err != nil {
		if services.IsFatal(err) {
			return nil, nil, err
		}
		if nested {
			return nil, nil, services.Wrap(services.ErrPrerequisite, "resolver", name, "required analysis failed", err)
		}
		logger.Error("analysis failed", logging.Error(err))
		return transcript.NewErrorResult(err.Error()), autoRan, nil
	}

	logger.Info("analysis complete",
		logging.String(logging.FieldEventType, "analysis_complete"),
		logging.Int("auto_ran", len(autoRan)))
	return result, autoRan, nil
}

// BuildContext assembles the prompt context for a definition: optional
// inputs first (included only when already present and successful), the raw
// transcript under its reserved key as a universal fallback, then formatted
// requires overlaid last (guaranteed present after resolution).
func (r *Resolver) BuildContext(doc *transcript.Document, def *Definition, cache *Cache) map[string]any {
	vars := map[string]any{TranscriptVar: doc.Transcript}
	for _, opt := range def.OptionalInputs {
		if res, ok := cache.Get(opt); ok && !res.Failed() {
			vars[opt] = FormatResult(res)
		}
	}
	for _, req := range def.Requires {
		if res, ok := cache.Get(req); ok {
			vars[req] = FormatResult(res)
		}
	}
	return vars
}

// InvokeDefinition renders the definition's prompt with vars and invokes
// the LLM boundary, stamping run metadata on success.
func (r *Resolver) InvokeDefinition(ctx context.Context, doc *transcript.Document, def *Definition, vars map[string]any) (*transcript.Result, error) {
	rendered := prompt.Render(def.Prompt, vars)
	if !def.SkipRawTranscript && !strings.Contains(def.Prompt, "{{"+TranscriptVar+"}}") {
		rendered = rendered + "\n\nTranscript:\n" + doc.Transcript
	}

	payload, err := r.invoker.Invoke(ctx, llm.Request{
		Prompt:            rendered,
		Schema:            def.OutputSchema,
		SystemInstruction: def.SystemInstruction,
	})
	if err != nil {
		var failure *llm.Failure
		if errors.As(err, &failure) {
			return nil, services.Wrap(services.ErrInvocation, "invoker", def.Name, failure.Kind.String(), err)
		}
		return nil, services.Wrap(services.ErrInvocation, "invoker", def.Name, "", err)
	}
	return transcript.NewResult(payload, r.model, r.now()), nil
}
