package testutils

import (
	"bytes"
	"io"
	"testing"

	"github.com/spf13/cobra"
)

// Execute runs the command with args and stdin, returning what it wrote to stdout.
func Execute(t *testing.T, c *cobra.Command, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	c.SetOut(buf)
	c.SetErr(io.Discard)
	if stdin != nil {
		c.SetIn(stdin)
	}
	c.SetArgs(args)

	err := c.Execute()
	return buf.String(), err
}
