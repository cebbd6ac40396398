package runtime

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"chat-engine/domain"
	"chat-engine/domain/event"
	"chat-engine/observability"
)

type routerFixture struct {
	router *Router
	stats  *observability.Stats
}

func newRouterFixture() *routerFixture {
	log := logs.GetLoggerFromLevel(slog.LevelError)
	stats := observability.NewStats()
	catalog := domain.NewCatalog(domain.DefaultRooms)
	return &routerFixture{
		router: NewRouter(log, NewRegistry(), NewDirectory(catalog), NewTypingSet(), stats),
		stats:  stats,
	}
}

// connect registers an identity and returns its connection id and sink.
func (f *routerFixture) connect(identity string) (string, *fakeSink) {
	connID := uuid.NewString()
	sink := &fakeSink{}
	f.router.Connect(connID, identity, sink)
	return connID, sink
}

// lastEvent returns the most recently delivered event, or nil.
func (s *fakeSink) lastEvent() event.Outbound {
	if len(s.delivered) == 0 {
		return nil
	}
	return s.delivered[len(s.delivered)-1]
}

// eventsNamed filters delivered events by wire name.
func (s *fakeSink) eventsNamed(name string) []event.Outbound {
	var out []event.Outbound
	for _, e := range s.delivered {
		if e.Name() == name {
			out = append(out, e)
		}
	}
	return out
}

func TestRouter_Connect_Broadcasts_Roster(t *testing.T) {
	req := require.New(t)
	fixture := newRouterFixture()

	// When alice then bob connect
	_, sinkAlice := fixture.connect("alice")
	fixture.connect("bob")

	// Then alice received the roster twice, the last one naming both
	rosters := sinkAlice.eventsNamed("active_users")
	req.Len(rosters, 2)
	roster, ok := rosters[1].(event.ActiveUsers)
	req.True(ok)
	req.ElementsMatch([]string{"alice", "bob"}, roster.Users)
}

func TestRouter_Join_Announces_And_Replays_History(t *testing.T) {
	req := require.New(t)
	fixture := newRouterFixture()
	ctx := context.Background()

	connAlice, sinkAlice := fixture.connect("alice")
	connBob, sinkBob := fixture.connect("bob")

	// Given alice joined an empty room
	fixture.router.Dispatch(ctx, connAlice, domain.JoinCommand{Room: "Open Mic"})

	// Then she got the join status but no history replay
	status, ok := sinkAlice.lastEvent().(event.Status)
	req.True(ok)
	req.Equal("alice has joined the room.", status.Msg)
	req.Equal(event.StatusJoin, status.Type)
	req.Empty(sinkAlice.eventsNamed("chat_history"))

	// Given alice posted a message
	fixture.router.Dispatch(ctx, connAlice, domain.PostMessageCommand{Room: "Open Mic", Body: "hi"})

	// When bob joins
	fixture.router.Dispatch(ctx, connBob, domain.JoinCommand{Room: "Open Mic"})

	// Then alice saw bob's join status
	status, ok = sinkAlice.lastEvent().(event.Status)
	req.True(ok)
	req.Equal("bob has joined the room.", status.Msg)

	// And bob alone received the one-message history
	histories := sinkBob.eventsNamed("chat_history")
	req.Len(histories, 1)
	history, ok := histories[0].(event.ChatHistory)
	req.True(ok)
	req.Equal("Open Mic", history.Room)
	req.Len(history.Messages, 1)
	req.Equal("hi", history.Messages[0].Msg)
	req.Equal("alice", history.Messages[0].Username)
	req.Empty(sinkAlice.eventsNamed("chat_history"))
}

func TestRouter_Join_Invalid_Room_Changes_Nothing(t *testing.T) {
	req := require.New(t)
	fixture := newRouterFixture()
	ctx := context.Background()

	connAlice, sinkAlice := fixture.connect("alice")
	before := len(sinkAlice.delivered)

	// The wire default room is not in the catalog
	fixture.router.Dispatch(ctx, connAlice, domain.JoinCommand{Room: "General"})

	req.Len(sinkAlice.delivered, before)
	conn, ok := fixture.router.registry.Lookup(connAlice)
	req.True(ok)
	req.False(conn.InRoom())
	req.Equal(uint64(1), fixture.stats.Snapshot().Dropped)
}

func TestRouter_Leave_Notifies_The_Remaining(t *testing.T) {
	req := require.New(t)
	fixture := newRouterFixture()
	ctx := context.Background()

	connAlice, sinkAlice := fixture.connect("alice")
	connBob, sinkBob := fixture.connect("bob")
	fixture.router.Dispatch(ctx, connAlice, domain.JoinCommand{Room: "Open Mic"})
	fixture.router.Dispatch(ctx, connBob, domain.JoinCommand{Room: "Open Mic"})

	// When alice leaves
	fixture.router.Dispatch(ctx, connAlice, domain.LeaveCommand{Room: "Open Mic"})

	// Then bob sees the leave status
	status, ok := sinkBob.lastEvent().(event.Status)
	req.True(ok)
	req.Equal("alice has left the room.", status.Msg)
	req.Equal(event.StatusLeave, status.Type)

	// And alice, already out of the room, does not
	last, ok := sinkAlice.lastEvent().(event.Status)
	req.True(ok)
	req.NotEqual("alice has left the room.", last.Msg)
}

func TestRouter_Message_Fans_Out_To_The_Room_Only(t *testing.T) {
	req := require.New(t)
	fixture := newRouterFixture()
	ctx := context.Background()

	connAlice, sinkAlice := fixture.connect("alice")
	connBob, sinkBob := fixture.connect("bob")
	_, sinkCarol := fixture.connect("carol")
	fixture.router.Dispatch(ctx, connAlice, domain.JoinCommand{Room: "Open Mic"})
	fixture.router.Dispatch(ctx, connBob, domain.JoinCommand{Room: "Open Mic"})

	// When alice posts
	fixture.router.Dispatch(ctx, connAlice, domain.PostMessageCommand{Room: "Open Mic", Body: "  hello  "})

	// Then both occupants got the trimmed message with empty reactions
	for _, sink := range []*fakeSink{sinkAlice, sinkBob} {
		posted, ok := sink.lastEvent().(event.MessagePosted)
		req.True(ok)
		req.Equal("hello", posted.Msg)
		req.Equal("alice", posted.Username)
		req.Equal("Open Mic", posted.Room)
		req.NotNil(posted.Reactions)
		req.Empty(posted.Reactions)
	}

	// And carol, never in the room, got nothing of it
	req.Empty(sinkCarol.eventsNamed("message"))
}

func TestRouter_Message_Blank_Body_Is_Dropped(t *testing.T) {
	req := require.New(t)
	fixture := newRouterFixture()
	ctx := context.Background()

	connAlice, sinkAlice := fixture.connect("alice")
	fixture.router.Dispatch(ctx, connAlice, domain.JoinCommand{Room: "Open Mic"})

	fixture.router.Dispatch(ctx, connAlice, domain.PostMessageCommand{Room: "Open Mic", Body: "   "})

	req.Empty(sinkAlice.eventsNamed("message"))
	req.Zero(fixture.stats.Snapshot().MessagesPosted)
}

func TestRouter_Private_Reaches_The_Target_Only(t *testing.T) {
	req := require.New(t)
	fixture := newRouterFixture()
	ctx := context.Background()

	connAlice, sinkAlice := fixture.connect("alice")
	_, sinkBob := fixture.connect("bob")
	_, sinkCarol := fixture.connect("carol")

	// When alice messages bob privately
	fixture.router.Dispatch(ctx, connAlice, domain.PrivateMessageCommand{Target: "bob", Body: "psst"})

	// Then bob alone receives it
	privates := sinkBob.eventsNamed("private_message")
	req.Len(privates, 1)
	private, ok := privates[0].(event.PrivateMessage)
	req.True(ok)
	req.Equal("psst", private.Msg)
	req.Equal("alice", private.From)
	req.Equal("bob", private.To)

	req.Empty(sinkAlice.eventsNamed("private_message"))
	req.Empty(sinkCarol.eventsNamed("private_message"))
}

func TestRouter_Private_To_Absent_Target_Is_Silent(t *testing.T) {
	req := require.New(t)
	fixture := newRouterFixture()
	ctx := context.Background()

	connAlice, sinkAlice := fixture.connect("alice")
	before := len(sinkAlice.delivered)

	// The sender gets no error and no receipt
	fixture.router.Dispatch(ctx, connAlice, domain.PrivateMessageCommand{Target: "mallory", Body: "psst"})

	req.Len(sinkAlice.delivered, before)
	req.Equal(uint64(1), fixture.stats.Snapshot().Dropped)
}

func TestRouter_React_Toggles_And_Broadcasts(t *testing.T) {
	req := require.New(t)
	fixture := newRouterFixture()
	ctx := context.Background()

	connAlice, _ := fixture.connect("alice")
	connBob, sinkBob := fixture.connect("bob")
	fixture.router.Dispatch(ctx, connAlice, domain.JoinCommand{Room: "Open Mic"})
	fixture.router.Dispatch(ctx, connBob, domain.JoinCommand{Room: "Open Mic"})
	fixture.router.Dispatch(ctx, connAlice, domain.PostMessageCommand{Room: "Open Mic", Body: "hi"})

	// When bob reacts with 👍 on the first message
	fixture.router.Dispatch(ctx, connBob, domain.ReactCommand{Room: "Open Mic", Index: 0, Emoji: "👍"})

	update, ok := sinkBob.lastEvent().(event.ReactionUpdate)
	req.True(ok)
	req.Equal(0, update.Index)
	req.Equal(domain.Reactions{"👍": {"bob"}}, update.Reactions)

	// When bob reacts again, the update carries the pruned mapping
	fixture.router.Dispatch(ctx, connBob, domain.ReactCommand{Room: "Open Mic", Index: 0, Emoji: "👍"})

	update, ok = sinkBob.lastEvent().(event.ReactionUpdate)
	req.True(ok)
	req.Empty(update.Reactions)
}

func TestRouter_React_Out_Of_Range_Is_Dropped(t *testing.T) {
	req := require.New(t)
	fixture := newRouterFixture()
	ctx := context.Background()

	connAlice, sinkAlice := fixture.connect("alice")
	fixture.router.Dispatch(ctx, connAlice, domain.JoinCommand{Room: "Open Mic"})
	before := len(sinkAlice.delivered)

	fixture.router.Dispatch(ctx, connAlice, domain.ReactCommand{Room: "Open Mic", Index: 7, Emoji: "👍"})

	req.Len(sinkAlice.delivered, before)
	req.Zero(fixture.stats.Snapshot().ReactionsToggled)
}

func TestRouter_Typing_Indicator_Round_Trip(t *testing.T) {
	req := require.New(t)
	fixture := newRouterFixture()
	ctx := context.Background()

	connAlice, sinkAlice := fixture.connect("alice")
	connBob, sinkBob := fixture.connect("bob")
	fixture.router.Dispatch(ctx, connAlice, domain.JoinCommand{Room: "Open Mic"})
	fixture.router.Dispatch(ctx, connBob, domain.JoinCommand{Room: "Open Mic"})

	// When alice starts typing
	fixture.router.Dispatch(ctx, connAlice, domain.TypingCommand{Room: "Open Mic", Typing: true})

	// Then bob sees her name and alice sees the cleared indicator
	status, ok := sinkBob.lastEvent().(event.Status)
	req.True(ok)
	req.Equal(event.StatusTyping, status.Type)
	req.Equal("alice is typing...", status.Msg)
	req.Equal("Open Mic", status.Room)

	status, ok = sinkAlice.lastEvent().(event.Status)
	req.True(ok)
	req.Empty(status.Msg)

	// When alice stops, everyone's indicator clears
	fixture.router.Dispatch(ctx, connAlice, domain.TypingCommand{Room: "Open Mic", Typing: false})

	status, ok = sinkBob.lastEvent().(event.Status)
	req.True(ok)
	req.Empty(status.Msg)
}

func TestRouter_Disconnect_Is_Idempotent_And_Keeps_Typing_State(t *testing.T) {
	req := require.New(t)
	fixture := newRouterFixture()
	ctx := context.Background()

	connAlice, _ := fixture.connect("alice")
	connBob, sinkBob := fixture.connect("bob")
	fixture.router.Dispatch(ctx, connAlice, domain.JoinCommand{Room: "Open Mic"})
	fixture.router.Dispatch(ctx, connBob, domain.JoinCommand{Room: "Open Mic"})
	fixture.router.Dispatch(ctx, connAlice, domain.TypingCommand{Room: "Open Mic", Typing: true})

	// When alice's socket drops
	fixture.router.Disconnect(connAlice)

	// Then bob gets the shrunk roster and no leave status
	roster, ok := sinkBob.lastEvent().(event.ActiveUsers)
	req.True(ok)
	req.Equal([]string{"bob"}, roster.Users)
	for _, e := range sinkBob.eventsNamed("status") {
		req.NotEqual("alice has left the room.", e.(event.Status).Msg)
	}

	// And her typing entry lingers until an explicit stop
	req.Equal("alice is typing...", fixture.router.typing.StatusFor("Open Mic", "bob"))

	// A duplicate disconnect broadcasts nothing further
	before := len(sinkBob.delivered)
	fixture.router.Disconnect(connAlice)
	req.Len(sinkBob.delivered, before)
	req.Equal(uint64(1), fixture.stats.Snapshot().Disconnects)
}

func TestRouter_Dispatch_For_Unknown_Connection_Is_Dropped(t *testing.T) {
	req := require.New(t)
	fixture := newRouterFixture()

	fixture.router.Dispatch(context.Background(), uuid.NewString(), domain.JoinCommand{Room: "Open Mic"})

	req.Equal(uint64(1), fixture.stats.Snapshot().Dropped)
}
