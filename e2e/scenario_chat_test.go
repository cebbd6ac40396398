package e2e

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// ChatScenarioSuite drives a full conversation against a running
// server: two accounts, one room, messages, a reaction toggle, typing
// indicators, and a private message on the side.
type ChatScenarioSuite struct {
	BaseChatSuite
}

func TestChatScenarioSuite(t *testing.T) {
	suite.Run(t, new(ChatScenarioSuite))
}

func (s *ChatScenarioSuite) TestTwoParticipantsInOneRoom() {
	s.Step("Accounts")
	aliceName, aliceToken := s.Account("alice")
	bobName, bobToken := s.Account("bob")

	s.Step("Connect")
	alice := s.Dial(aliceName, aliceToken)
	bob := s.Dial(bobName, bobToken)

	var roster struct {
		Users []string `json:"users"`
	}
	alice.WaitFor("active_users", &roster)
	s.Require().Contains(roster.Users, aliceName)

	s.Step("Join")
	alice.Send("join", map[string]any{"room": "Open Mic"})
	bob.Send("join", map[string]any{"room": "Open Mic"})

	var status struct {
		Msg  string `json:"msg"`
		Type string `json:"type"`
	}
	alice.WaitFor("status", &status)

	s.Step("Message")
	alice.Send("message", map[string]any{"room": "Open Mic", "msg": "hello from the e2e suite"})

	var posted struct {
		Msg       string              `json:"msg"`
		Username  string              `json:"username"`
		Room      string              `json:"room"`
		Reactions map[string][]string `json:"reactions"`
	}
	bob.WaitFor("message", &posted)
	s.Require().Equal("hello from the e2e suite", posted.Msg)
	s.Require().Equal(aliceName, posted.Username)
	s.Require().Empty(posted.Reactions)

	s.Step("Reaction toggle")
	bob.Send("react_to_message", map[string]any{"room": "Open Mic", "index": 0, "emoji": "👍"})

	var update struct {
		Index     int                 `json:"index"`
		Reactions map[string][]string `json:"reactions"`
	}
	alice.WaitFor("reaction_update", &update)
	s.Require().Equal(0, update.Index)
	s.Require().Equal([]string{bobName}, update.Reactions["👍"])

	bob.Send("react_to_message", map[string]any{"room": "Open Mic", "index": 0, "emoji": "👍"})
	alice.WaitFor("reaction_update", &update)
	s.Require().Empty(update.Reactions)

	s.Step("Typing indicator")
	bob.Send("typing", map[string]any{"room": "Open Mic", "typing": true})

	var typing struct {
		Msg  string `json:"msg"`
		Type string `json:"type"`
		Room string `json:"room"`
	}
	alice.WaitFor("status", &typing)
	for typing.Type != "typing" {
		alice.WaitFor("status", &typing)
	}
	s.Require().Equal(bobName+" is typing...", typing.Msg)

	bob.Send("typing", map[string]any{"room": "Open Mic", "typing": false})

	s.Step("Private message")
	alice.Send("message", map[string]any{"type": "private", "target": bobName, "msg": "between us"})

	var private struct {
		Msg  string `json:"msg"`
		From string `json:"from"`
		To   string `json:"to"`
	}
	bob.WaitFor("private_message", &private)
	s.Require().Equal("between us", private.Msg)
	s.Require().Equal(aliceName, private.From)
}

func (s *ChatScenarioSuite) TestLateJoinerGetsTheBacklog() {
	s.Step("Accounts")
	aliceName, aliceToken := s.Account("alice")
	carolName, carolToken := s.Account("carol")

	s.Step("Alice seeds the room")
	alice := s.Dial(aliceName, aliceToken)
	alice.Send("join", map[string]any{"room": "Study Squad"})
	alice.Send("message", map[string]any{"room": "Study Squad", "msg": "first"})
	alice.WaitFor("message", nil)
	alice.Send("message", map[string]any{"room": "Study Squad", "msg": "second"})
	alice.WaitFor("message", nil)

	s.Step("Carol joins late")
	carol := s.Dial(carolName, carolToken)
	carol.Send("join", map[string]any{"room": "Study Squad"})

	var history struct {
		Room     string `json:"room"`
		Messages []struct {
			Msg      string `json:"msg"`
			Username string `json:"username"`
		} `json:"messages"`
	}
	carol.WaitFor("chat_history", &history)
	s.Require().Equal("Study Squad", history.Room)
	s.Require().GreaterOrEqual(len(history.Messages), 2)

	last := history.Messages[len(history.Messages)-1]
	s.Require().Equal("second", last.Msg)
	s.Require().Equal(aliceName, last.Username)
}
