package sshutil

// Runner runs a command on a remote host. Both the real Client and the mock
// in sshutil/testing satisfy it, so remote sensor families can be tested
// without a connection.
type Runner interface {
	// Output runs cmd and returns its stdout. A non-zero exit status is an
	// error carrying stderr.
	Output(cmd string) ([]byte, error)

	// Close closes the connection.
	Close() error

	// GetHost returns the alias used to connect.
	GetHost() string
}

// Dialer opens a Runner for a host alias.
type Dialer func(host string) (Runner, error)
