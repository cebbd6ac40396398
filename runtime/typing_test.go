package runtime

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypingSet_Indicator_Phrases(t *testing.T) {
	req := require.New(t)
	typing := NewTypingSet()

	// Given nobody is typing
	req.Empty(typing.StatusFor("Open Mic", "alice"))

	// When alice starts typing, bob sees her and she sees nothing
	typing.Set("Open Mic", "alice", true)
	req.Equal("alice is typing...", typing.StatusFor("Open Mic", "bob"))
	req.Empty(typing.StatusFor("Open Mic", "alice"))

	// When bob joins in, carol sees the pair
	typing.Set("Open Mic", "bob", true)
	status := typing.StatusFor("Open Mic", "carol")
	req.Contains([]string{
		"alice and bob are typing...",
		"bob and alice are typing...",
	}, status)

	// And each typer only sees the other
	req.Equal("bob is typing...", typing.StatusFor("Open Mic", "alice"))
	req.Equal("alice is typing...", typing.StatusFor("Open Mic", "bob"))

	// When carol makes three, a roomless observer sees the crowd phrase
	typing.Set("Open Mic", "carol", true)
	req.Equal("Several people are typing...", typing.StatusFor("Open Mic", "dave"))

	// But excluding one typer drops back to the pair phrase
	status = typing.StatusFor("Open Mic", "carol")
	req.Contains([]string{
		"alice and bob are typing...",
		"bob and alice are typing...",
	}, status)
}

func TestTypingSet_Stop_Clears_The_Entry(t *testing.T) {
	req := require.New(t)
	typing := NewTypingSet()

	typing.Set("Open Mic", "alice", true)
	typing.Set("Open Mic", "alice", false)

	req.Empty(typing.StatusFor("Open Mic", "bob"))
}

func TestTypingSet_Stop_Without_Start_Is_A_NoOp(t *testing.T) {
	req := require.New(t)
	typing := NewTypingSet()

	typing.Set("Open Mic", "alice", false)

	req.Empty(typing.StatusFor("Open Mic", "bob"))
}

func TestTypingSet_Start_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	typing := NewTypingSet()

	typing.Set("Open Mic", "alice", true)
	typing.Set("Open Mic", "alice", true)

	// A repeated start never promotes one typer to a pair
	req.Equal("alice is typing...", typing.StatusFor("Open Mic", "bob"))
}

func TestTypingSet_Rooms_Are_Isolated(t *testing.T) {
	req := require.New(t)
	typing := NewTypingSet()

	typing.Set("Open Mic", "alice", true)

	req.Empty(typing.StatusFor("Study Squad", "bob"))
	req.Equal("alice is typing...", typing.StatusFor("Open Mic", "bob"))
}

func TestTypingSet_Crowd_Phrase_Is_Stable(t *testing.T) {
	req := require.New(t)
	typing := NewTypingSet()

	for i := 0; i < 10; i++ {
		typing.Set("Meme Stream", fmt.Sprintf("user-%d", i), true)
	}

	req.Equal("Several people are typing...", typing.StatusFor("Meme Stream", "observer"))
}
