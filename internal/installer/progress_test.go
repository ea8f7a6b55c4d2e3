package installer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketSplitSharesBudget(t *testing.T) {
	sink := &recordSink{}
	root := NewTicket(sink, 10)

	children := root.Split(3)
	require.Len(t, children, 3)

	// floor(10/3) for the first two, remainder folded into the last.
	children[0].Finish()
	children[1].Finish()
	children[2].Finish()

	assert.Equal(t, 10, sink.positions[len(sink.positions)-1])
	assert.Equal(t, []int{3, 6, 10}, sink.positions)
}

func TestTicketSplitZeroEmitsEverything(t *testing.T) {
	sink := &recordSink{}
	root := NewTicket(sink, 7)

	children := root.Split(0)
	assert.Empty(t, children)
	assert.Equal(t, []int{7}, sink.positions)
}

func TestTicketPositionsAreCumulativeAndMonotonic(t *testing.T) {
	sink := &recordSink{}
	root := NewTicket(sink, 100)
	children := root.Split(2)

	children[0].Add(20)
	children[1].Add(10)
	children[0].Add(5)
	children[0].Finish()
	children[1].Finish()

	require.NotEmpty(t, sink.positions)
	prev := 0
	for _, p := range sink.positions {
		assert.GreaterOrEqual(t, p, prev)
		prev = p
	}
	assert.Equal(t, 100, prev)
}

func TestTicketAddClampsToBudget(t *testing.T) {
	sink := &recordSink{}
	tk := NewTicket(sink, 5)

	tk.Add(50)
	tk.Add(50)

	assert.Equal(t, []int{5}, sink.positions)
}

func TestNilTicketIsSafe(t *testing.T) {
	var tk *Ticket
	tk.Add(3)
	tk.Finish()
	children := tk.Split(2)
	assert.Len(t, children, 2)
	children[0].Add(1)
	children[1].Finish()
}

func TestTicketPrintForwardsMessage(t *testing.T) {
	sink := &recordSink{}
	tk := NewTicket(sink, 1)
	tk.Print("installing tools...")
	assert.Equal(t, []string{"installing tools..."}, sink.messages)
}
