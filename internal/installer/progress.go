package installer

import (
	"fmt"
)

// Sink receives progress updates. Position values are cumulative and
// monotonically non-decreasing; messages arrive verbatim. A Sink may be
// serviced on a different goroutine than the orchestrator, so
// implementations must be safe for cross-goroutine use.
type Sink interface {
	Position(pos int)
	Message(msg string)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Position(int)   {}
func (NopSink) Message(string) {}

// ticketState is shared between a root ticket and everything split off it:
// one sink, one cumulative position.
type ticketState struct {
	sink    Sink
	emitted int
}

// Ticket is a slice of the overall progress budget handed down through the
// orchestration. Splitting a ticket across N items gives each item
// floor(B/N) with the remainder folded into the final item; the cumulative
// value reported to the sink never decreases and never exceeds the root
// budget. A nil *Ticket is valid and does nothing.
type Ticket struct {
	state  *ticketState
	budget int
	spent  int
}

// NewTicket creates a root ticket over the full budget. A nil sink gets
// replaced with NopSink.
func NewTicket(sink Sink, budget int) *Ticket {
	if sink == nil {
		sink = NopSink{}
	}
	return &Ticket{state: &ticketState{sink: sink}, budget: budget}
}

// Split divides the ticket's remaining budget across n items. With n == 0
// there is nothing to account the budget to, so it is emitted immediately
// and an empty slice returned.
func (t *Ticket) Split(n int) []*Ticket {
	if t == nil {
		return make([]*Ticket, n)
	}
	if n == 0 {
		t.Finish()
		return nil
	}

	remaining := t.budget - t.spent
	share := remaining / n
	children := make([]*Ticket, n)
	for i := range children {
		b := share
		if i == n-1 {
			b = remaining - share*(n-1) // fold the remainder into the last item
		}
		children[i] = &Ticket{state: t.state, budget: b}
	}
	t.spent = t.budget
	return children
}

// Add emits delta units against this ticket's budget, clamped so the ticket
// never over-spends.
func (t *Ticket) Add(delta int) {
	if t == nil || delta <= 0 {
		return
	}
	if remaining := t.budget - t.spent; delta > remaining {
		delta = remaining
	}
	if delta == 0 {
		return
	}
	t.spent += delta
	t.state.emitted += delta
	t.state.sink.Position(t.state.emitted)
}

// Finish emits whatever is left of this ticket's budget.
func (t *Ticket) Finish() {
	if t == nil {
		return
	}
	t.Add(t.budget - t.spent)
}

// Print writes msg to stdout and pushes it to the sink verbatim.
func (t *Ticket) Print(msg string) {
	fmt.Println(msg)
	if t != nil {
		t.state.sink.Message(msg)
	}
}
