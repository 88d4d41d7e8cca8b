package version

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestVersionStrings ensures Full embeds the release and commit.
func TestVersionStrings(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Short())
	require.Contains(t, Full(), Short())
	require.Contains(t, Full(), "commit "+Commit)
}

// TestCommandShortFlag checks both output forms of the subcommand.
func TestCommandShortFlag(t *testing.T) {
	t.Parallel()

	for args, want := range map[string]string{"": Full(), "--short": Short()} {
		var out bytes.Buffer

		cmd := Command()
		cmd.SetOut(&out)
		cmd.SetArgs(strings.Fields(args))

		require.NoError(t, cmd.Execute())
		require.Equal(t, want+"\n", out.String())
	}
}
