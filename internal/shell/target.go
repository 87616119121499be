package shell

import (
	"strings"

	"github.com/alessio/shellescape"
)

// Connection identifies a remote host reached over ssh. A nil *Connection
// means local execution.
type Connection struct {
	Login          string
	Host           string
	Port           string
	PrivateKeyPath string
}

// Address returns login@host, or host when no login is set.
func (c *Connection) Address() string {
	if c == nil {
		return ""
	}
	if c.Login == "" {
		return c.Host
	}
	return c.Login + "@" + c.Host
}

// SSHCommand returns the ssh invocation, without destination, that reaches
// conn. Wrap and rsync -e share it so both honour the same key and port.
func SSHCommand(conn *Connection) string {
	parts := []string{"ssh", "-o", "BatchMode=yes"}
	if conn == nil {
		return strings.Join(parts, " ")
	}
	if conn.PrivateKeyPath != "" {
		parts = append(parts, "-i", shellescape.Quote(conn.PrivateKeyPath))
	}
	if conn.Port != "" {
		parts = append(parts, "-p", shellescape.Quote(conn.Port))
	}
	return strings.Join(parts, " ")
}

// Wrap turns command into an ssh invocation against conn. The command is
// quoted once more so the remote shell receives it exactly as built.
func Wrap(command string, conn *Connection) string {
	if conn == nil {
		return command
	}
	return SSHCommand(conn) + " " + shellescape.Quote(conn.Address()) + " " + shellescape.Quote(command)
}

// Target is a parsed CLI path that may point at a remote host.
type Target struct {
	Remote bool
	// Connection is the raw text before ":/", e.g. "user@host".
	Connection string
	Login      string
	Host       string
	Path       string
}

// ParseTarget splits "login@host:/abs/path" into its parts. Anything without
// a ":/" sequence is a local path and is returned as is.
func ParseTarget(cli string) Target {
	left, rest, found := strings.Cut(cli, ":/")
	if !found {
		return Target{Path: cli}
	}

	t := Target{Remote: true, Connection: left, Path: "/" + rest}
	if strings.Count(left, "@") == 1 {
		t.Login, t.Host, _ = strings.Cut(left, "@")
	}
	return t
}
