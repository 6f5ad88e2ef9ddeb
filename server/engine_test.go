package server

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistrationSendsWelcomeBurst(t *testing.T) {
	s := newTestServer()
	u, conn := s.testRegisterUser("dan", "dan")

	require.Equal(t, StateRegistered, u.State)
	require.NotEmpty(t, conn.lines)
	require.Contains(t, conn.lines[0], "001")
	require.Contains(t, conn.lines[0], "Welcome")
}

func TestDuplicateNickRejected(t *testing.T) {
	s := newTestServer()
	s.testRegisterUser("dan", "dan")

	conn2 := newFakeConn("127.0.0.1")
	s.onAccept(conn2)
	u2 := s.users[conn2]
	s.handleNickPreReg(u2, "dan")

	found := false
	for _, line := range conn2.lines {
		if strings.Contains(line, "433") {
			found = true
		}
	}
	require.True(t, found)
}

func TestPingTimeoutDisconnects(t *testing.T) {
	s := newTestServer()
	s.Config.IdleTimeout = 0
	u, conn := s.testRegisterUser("dan", "dan")
	u.PingSent = true
	u.LastActivity = u.LastActivity.Add(-1)

	s.pingWatchdog()
	require.True(t, conn.closed)
	require.Equal(t, StateClosed, u.State)
}

func TestCapNegotiationBlocksRegistration(t *testing.T) {
	s := newTestServer()
	conn := newFakeConn("127.0.0.1")
	s.onAccept(conn)
	u := s.users[conn]

	s.handleCap(u, mustCap("LS"))
	s.handleNickPreReg(u, "dan")
	u.PendingUser = true
	u.User = "dan"
	s.maybeCompleteRegistration(u)
	require.NotEqual(t, StateRegistered, u.State)

	s.handleCap(u, mustCap("END"))
	require.Equal(t, StateRegistered, u.State)
}
