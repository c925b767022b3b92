package sshutil

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rileyhilliard/sensdash/internal/errors"
	"golang.org/x/crypto/ssh"
)

// Output runs cmd in a fresh session and returns stdout.
func (c *Client) Output(cmd string) ([]byte, error) {
	session, err := c.Client.NewSession()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Lost the SSH connection to '%s'", c.Host),
			"The host will be redialed on the next update.")
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	if err := session.Run(cmd); err != nil {
		if exitErr, ok := err.(*ssh.ExitError); ok {
			return nil, errors.New(errors.ErrSSH,
				fmt.Sprintf("'%s' exited %d on %s: %s", cmd, exitErr.ExitStatus(), c.Host,
					strings.TrimSpace(stderr.String())),
				"Remote sensors need a Linux host with /proc mounted.")
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't run '%s' on %s", cmd, c.Host),
			"Check the connection with: ssh "+c.Host)
	}
	return stdout.Bytes(), nil
}
