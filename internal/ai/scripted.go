package ai

import (
	"context"
	"sync"

	"resumalyzer/internal/errors"
	"resumalyzer/internal/prompts"
	"resumalyzer/internal/types"
)

// Step is one scripted provider reply
type Step struct {
	Text string
	Err  error
}

// Reply returns a successful step
func Reply(text string) Step { return Step{Text: text} }

// Fail returns a failing step
func Fail(err error) Step { return Step{Err: err} }

// Call is a recorded Complete invocation
type Call struct {
	Request prompts.Request
	Params  GenerationParams
}

// ScriptedInvoker replays queued replies instead of calling a provider.
// Replies queued for a task are used before the shared queue. An exhausted
// script fails with an empty-response provider error. It is safe for
// concurrent use.
type ScriptedInvoker struct {
	mu      sync.Mutex
	byTask  map[types.Task][]Step
	shared  []Step
	calls   []Call
	Respond func(req prompts.Request, params GenerationParams) (string, error)
}

// Ensure ScriptedInvoker implements Provider
var _ Provider = (*ScriptedInvoker)(nil)

// NewScriptedInvoker queues steps on the shared queue
func NewScriptedInvoker(steps ...Step) *ScriptedInvoker {
	return &ScriptedInvoker{byTask: make(map[types.Task][]Step), shared: steps}
}

// Queue appends steps on the shared queue
func (s *ScriptedInvoker) Queue(steps ...Step) *ScriptedInvoker {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shared = append(s.shared, steps...)
	return s
}

// QueueFor appends steps used only by task
func (s *ScriptedInvoker) QueueFor(task types.Task, steps ...Step) *ScriptedInvoker {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byTask == nil {
		s.byTask = make(map[types.Task][]Step)
	}
	s.byTask[task] = append(s.byTask[task], steps...)
	return s
}

// Complete pops the next step for params.Task
func (s *ScriptedInvoker) Complete(ctx context.Context, req prompts.Request, params GenerationParams) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Request: req, Params: params})
	step, ok := s.next(params.Task)
	respond := s.Respond
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", classifyError(err)
	}
	if !ok && respond != nil {
		return respond(req, params)
	}
	if !ok {
		return "", errors.NewProviderError(errors.ErrCodeProviderEmpty, "script exhausted", nil)
	}
	if step.Err != nil {
		return "", step.Err
	}
	return step.Text, nil
}

func (s *ScriptedInvoker) next(task types.Task) (Step, bool) {
	if q := s.byTask[task]; len(q) > 0 {
		s.byTask[task] = q[1:]
		return q[0], true
	}
	if len(s.shared) > 0 {
		step := s.shared[0]
		s.shared = s.shared[1:]
		return step, true
	}
	return Step{}, false
}

// Calls returns a copy of every recorded call
func (s *ScriptedInvoker) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount returns the number of Complete invocations
func (s *ScriptedInvoker) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// CallsFor counts invocations for task
func (s *ScriptedInvoker) CallsFor(task types.Task) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Params.Task == task {
			n++
		}
	}
	return n
}

func (s *ScriptedInvoker) ModelInfo(context.Context) *ModelInfo {
	return &ModelInfo{Name: "scripted", Available: true}
}

func (s *ScriptedInvoker) BreakerStats() map[string]any {
	return map[string]any{}
}

func (s *ScriptedInvoker) Close() error { return nil }
