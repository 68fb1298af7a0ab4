package stream

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/papercomputeco/gwstream/pkg/llm"
	"github.com/papercomputeco/gwstream/pkg/logger"
)

const defaultToolType = "function"

// accumulator is the in-flight state of one tool-call slot.
type accumulator struct {
	id   string
	typ  string
	name string
	args strings.Builder
}

// merge folds one fragment into the accumulator. Identity fields are
// overwritten only by non-empty values; argument text is only ever appended.
func (a *accumulator) merge(f llm.ToolCallFragment) {
	if f.ID != "" {
		a.id = f.ID
	}
	if f.Type != "" {
		a.typ = f.Type
	}
	if f.Function == nil {
		return
	}
	if f.Function.Name != "" {
		a.name = f.Function.Name
	}
	a.args.WriteString(f.Function.Arguments)
}

func (a *accumulator) complete() bool {
	return a.id != "" && a.name != ""
}

func (a *accumulator) toolCall() llm.ToolCall {
	return llm.ToolCall{
		ID:   a.id,
		Type: a.typ,
		Function: llm.ToolCallFunction{
			Name:      a.name,
			Arguments: a.args.String(),
		},
	}
}

// Assembler reassembles tool calls from fragments spread across many chunks.
// It keeps one accumulator per slot index. An Assembler belongs to a single
// stream and is not safe for concurrent use.
type Assembler struct {
	slots  map[int]*accumulator
	logger *slog.Logger
}

// NewAssembler returns an empty Assembler. A nil logger discards output.
func NewAssembler(log *slog.Logger) *Assembler {
	if log == nil {
		log = logger.Nop()
	}
	return &Assembler{
		slots:  make(map[int]*accumulator),
		logger: log,
	}
}

// Merge folds a fragment into the accumulator for its slot, creating the
// accumulator on first sight.
func (a *Assembler) Merge(f llm.ToolCallFragment) {
	acc, ok := a.slots[f.Index]
	if !ok {
		acc = &accumulator{typ: defaultToolType}
		a.slots[f.Index] = acc
	}
	acc.merge(f)
}

// Len returns the number of open slots.
func (a *Assembler) Len() int {
	return len(a.slots)
}

// FinalizeAll converts every open accumulator into a completed call, in
// ascending slot order, and clears all slots. Accumulators missing an id or a
// name are dropped and logged at debug level.
func (a *Assembler) FinalizeAll() []llm.ToolCall {
	if len(a.slots) == 0 {
		return nil
	}

	indexes := make([]int, 0, len(a.slots))
	for idx := range a.slots {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	calls := make([]llm.ToolCall, 0, len(indexes))
	for _, idx := range indexes {
		acc := a.slots[idx]
		if !acc.complete() {
			a.logger.Debug("dropping incomplete tool call",
				"slot", idx,
				"id", acc.id,
				"name", acc.name,
				"arguments_len", acc.args.Len(),
			)
			continue
		}
		calls = append(calls, acc.toolCall())
	}

	clear(a.slots)
	return calls
}
