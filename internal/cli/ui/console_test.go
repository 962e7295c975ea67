package ui

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castvote-dev/castvote/internal/cli/client"
	"github.com/castvote-dev/castvote/internal/cli/guard"
)

func newTestConsole() (*Console, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &Console{Out: &out, Err: &errOut}, &out, &errOut
}

func TestConsole_NotifyRoutesBySeverity(t *testing.T) {
	c, out, errOut := newTestConsole()

	c.Notify(client.MsgServerError, client.SeverityError)
	c.Success("Login successful")

	assert.Contains(t, errOut.String(), client.MsgServerError)
	assert.NotContains(t, out.String(), client.MsgServerError)
	assert.Contains(t, out.String(), "Login successful")
}

func TestConsole_Redirect(t *testing.T) {
	c, _, errOut := newTestConsole()

	c.Redirect(guard.Login.Path)
	assert.Contains(t, errOut.String(), "castvote login")

	errOut.Reset()
	c.Redirect(guard.Unauthorized.Path)
	assert.Contains(t, errOut.String(), "Access denied")

	errOut.Reset()
	c.Redirect("/nowhere")
	assert.Empty(t, errOut.String())
}

func TestCommandFor(t *testing.T) {
	assert.Equal(t, "castvote vote", CommandFor(guard.Vote.Path))
	assert.Equal(t, "", CommandFor(guard.Unauthorized.Path))
}

func TestReadLine(t *testing.T) {
	var w bytes.Buffer
	r := bufio.NewReader(strings.NewReader("Jane Smith\n\nlast"))

	got, err := ReadLine(r, &w, "Name", "")
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", got)

	got, err = ReadLine(r, &w, "Image URL", "https://example.com/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.jpg", got)

	got, err = ReadLine(r, &w, "Party", "")
	require.NoError(t, err)
	assert.Equal(t, "last", got)

	_, err = ReadLine(r, &w, "Position", "")
	assert.Error(t, err)

	got, err = ReadLine(r, &w, "Image URL", "https://example.com/b.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/b.jpg", got)

	assert.Contains(t, w.String(), "Image URL [https://example.com/a.jpg]: ")
}
