// Package eventbus is the kernel's synchronous publish/subscribe fan-out:
// subtype handlers, then category handlers, then onAny handlers, all in
// registration order, all on the caller's goroutine.
package eventbus

import "github.com/talgya/aethelgard/internal/event"

// Token identifies a registered handler for later removal via Off. Not
// a closure — handlers are addressed by value, per the kernel's
// "no hidden captured state" posture (SPEC_FULL §9).
type Token int64

// Handler processes a dispatched event. A Handler that panics is
// recovered by the bus and reported as a HandlerFailed rather than
// aborting dispatch.
type Handler func(event.Event)

// HandlerFailed describes one handler's panic during dispatch. Emission
// itself never fails — HandlerFailed values are delivered to the bus's
// ErrorSink, never returned from Emit.
type HandlerFailed struct {
	Subtype string
	Index   int
	Cause   any
}

// ErrorSink receives HandlerFailed reports. Nil is valid: failures are
// silently dropped (still recovered, never panicking the tick).
type ErrorSink func(HandlerFailed)

type registration struct {
	token   Token
	key     string // subtype, category name, or "" for onAny
	handler Handler
}

// Bus is the event dispatcher. Not safe for concurrent use.
type Bus struct {
	bySubtype map[string][]registration
	byCategory map[event.Category][]registration
	onAny     []registration
	nextToken Token
	errorSink ErrorSink
}

// New returns an empty bus. sink may be nil.
func New(sink ErrorSink) *Bus {
	return &Bus{
		bySubtype:  make(map[string][]registration),
		byCategory: make(map[event.Category][]registration),
		errorSink:  sink,
	}
}

// SetErrorSink replaces the bus's error sink.
func (b *Bus) SetErrorSink(sink ErrorSink) { b.errorSink = sink }

// On registers handler for an exact subtype match.
func (b *Bus) On(subtype string, handler Handler) Token {
	tok := b.nextToken
	b.nextToken++
	b.bySubtype[subtype] = append(b.bySubtype[subtype], registration{token: tok, key: subtype, handler: handler})
	return tok
}

// OnCategory registers handler for every event of the given category.
func (b *Bus) OnCategory(cat event.Category, handler Handler) Token {
	tok := b.nextToken
	b.nextToken++
	b.byCategory[cat] = append(b.byCategory[cat], registration{token: tok, handler: handler})
	return tok
}

// OnAny registers handler for every emitted event, regardless of
// subtype or category.
func (b *Bus) OnAny(handler Handler) Token {
	tok := b.nextToken
	b.nextToken++
	b.onAny = append(b.onAny, registration{token: tok, handler: handler})
	return tok
}

// Off removes the handler registered under tok, if any. Idempotent.
func (b *Bus) Off(tok Token) {
	for k, regs := range b.bySubtype {
		b.bySubtype[k] = removeToken(regs, tok)
	}
	for k, regs := range b.byCategory {
		b.byCategory[k] = removeToken(regs, tok)
	}
	b.onAny = removeToken(b.onAny, tok)
}

func removeToken(regs []registration, tok Token) []registration {
	for i, r := range regs {
		if r.token == tok {
			out := make([]registration, 0, len(regs)-1)
			out = append(out, regs[:i]...)
			out = append(out, regs[i+1:]...)
			return out
		}
	}
	return regs
}

// Clear removes every registered handler.
func (b *Bus) Clear() {
	b.bySubtype = make(map[string][]registration)
	b.byCategory = make(map[event.Category][]registration)
	b.onAny = nil
}

// Emit dispatches e synchronously: subtype handlers, then category
// handlers, then onAny handlers, each in registration order. A handler
// that panics is recovered and reported as HandlerFailed; dispatch
// continues with the next handler.
//
// Re-entrant Emit (a handler calling Emit) is supported by plain
// recursion: the nested call runs every one of its handlers to
// completion — depth-first — before control returns to the handler that
// triggered it, and therefore before the outer dispatch's remaining
// handlers run.
func (b *Bus) Emit(e event.Event) {
	b.runAll(e.Subtype, b.bySubtype[e.Subtype], e)
	b.runAll(e.Subtype, b.byCategory[e.Category], e)
	b.runAll(e.Subtype, b.onAny, e)
}

func (b *Bus) runAll(subtype string, regs []registration, e event.Event) {
	for i, r := range regs {
		b.runOne(subtype, i, r.handler, e)
	}
}

func (b *Bus) runOne(subtype string, index int, handler Handler, e event.Event) {
	defer func() {
		if r := recover(); r != nil {
			if b.errorSink != nil {
				b.errorSink(HandlerFailed{Subtype: subtype, Index: index, Cause: r})
			}
		}
	}()
	handler(e)
}
