package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

type BaseChatSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseChatSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.ServerAddr == "" {
		s.T().Skip("SERVER_ADDR not set, skipping end-to-end suite")
	}
}

// Step prints a colorized header so scenario phases stand out in logs
func (s *BaseChatSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Account registers a throwaway account and logs it in, returning the
// session token. Usernames are suffixed so reruns against the same
// server never collide.
func (s *BaseChatSuite) Account(name string) (username, token string) {
	username = fmt.Sprintf("%s-%s", name, uuid.NewString()[:8])
	email := username + "@e2e.local"
	password := "E2e-Scenario-Pass1!"

	resp := s.postJSON("/api/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, "signup for %s", username)

	resp = s.postJSON("/api/login", map[string]string{
		"email":    email,
		"password": password,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode, "login for %s", username)

	var login map[string]string
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&login))
	_ = resp.Body.Close()
	return username, login["token"]
}

func (s *BaseChatSuite) postJSON(path string, body any) *http.Response {
	data, err := json.Marshal(body)
	s.Require().NoError(err)

	resp, err := http.Post(fmt.Sprintf("http://%s%s", s.Config.ServerAddr, path),
		"application/json", bytes.NewReader(data))
	s.Require().NoError(err)
	return resp
}

// ChatClient is one live authenticated websocket under test.
type ChatClient struct {
	Username string
	conn     *websocket.Conn
	suite    *BaseChatSuite
}

// Dial opens an authenticated websocket for the token's identity.
func (s *BaseChatSuite) Dial(username, token string) *ChatClient {
	url := fmt.Sprintf("ws://%s/ws?token=%s", s.Config.ServerAddr, token)
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err, "websocket dial for %s", username)
	if resp != nil {
		_ = resp.Body.Close()
	}

	client := &ChatClient{Username: username, conn: conn, suite: s}
	s.T().Cleanup(client.Close)
	return client
}

func (c *ChatClient) Close() {
	_ = c.conn.Close()
}

// Send writes one event envelope.
func (c *ChatClient) Send(event string, data any) {
	frame := map[string]any{"event": event, "data": data}
	payload, err := json.Marshal(frame)
	c.suite.Require().NoError(err)

	c.debug("SEND", payload)
	c.suite.Require().NoError(c.conn.WriteMessage(websocket.TextMessage, payload))
}

// WaitFor drains frames until one matches the wanted event name and
// decodes its payload into out.
func (c *ChatClient) WaitFor(event string, out any) {
	c.suite.Require().NoError(c.conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	for {
		_, payload, err := c.conn.ReadMessage()
		c.suite.Require().NoError(err, "%s waiting for %q", c.Username, event)
		c.debug("RECV", payload)

		var envelope struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		c.suite.Require().NoError(json.Unmarshal(payload, &envelope))
		if envelope.Event != event {
			continue
		}
		if out != nil {
			c.suite.Require().NoError(json.Unmarshal(envelope.Data, out))
		}
		return
	}
}

func (c *ChatClient) debug(direction string, payload []byte) {
	if !c.suite.Config.DebugJSON {
		return
	}
	c.suite.T().Logf("%s %s: %s", c.Username, direction, payload)
}
