package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileRefLocalVsRemote(t *testing.T) {
	remote := fileRef("https://example.com/guide.pdf")
	require.Equal(t, "https://example.com/guide.pdf", remote.FileURL)
	require.Empty(t, remote.FileLocal)

	local := fileRef("docs/guide.pdf")
	require.Equal(t, "docs/guide.pdf", local.FileLocal)
	require.Empty(t, local.FileURL)
}

func TestFileBaseName(t *testing.T) {
	require.Equal(t, "guide.pdf", fileBaseName("docs/guide.pdf"))
	require.Equal(t, "policy.pdf", fileBaseName("policy.pdf"))
}

func TestInProgressWithoutBoundFlow(t *testing.T) {
	app := New(nil, nil, nil)
	require.False(t, app.InProgress(context.Background(), 42))
}
