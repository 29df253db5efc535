package menu

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"leadbot/internal/content"
)

type sent struct {
	kind    string
	text    string
	ref     string
	caption string
	label   string
	url     string
}

type fakeSender struct {
	sent   []sent
	docErr error
}

func (f *fakeSender) SendText(_ context.Context, _ int64, text string) error {
	f.sent = append(f.sent, sent{kind: "text", text: text})
	return nil
}

func (f *fakeSender) SendDocument(_ context.Context, _ int64, ref, caption string) error {
	if f.docErr != nil {
		return f.docErr
	}
	f.sent = append(f.sent, sent{kind: "document", ref: ref, caption: caption})
	return nil
}

func (f *fakeSender) SendPhoto(_ context.Context, _ int64, ref, caption string) error {
	f.sent = append(f.sent, sent{kind: "photo", ref: ref, caption: caption})
	return nil
}

func (f *fakeSender) SendLink(_ context.Context, _ int64, label, url string) error {
	f.sent = append(f.sent, sent{kind: "link", label: label, url: url})
	return nil
}

func testCatalog() content.Catalog {
	c := content.Catalog{
		Menu: []content.MenuEntry{
			{Token: "about", Label: "About", Kind: content.KindText, Payload: "About the program"},
			{Token: "open_guide", Label: "Guide", Kind: content.KindDocument, Payload: "docs/guide.pdf", Caption: "Starter guide"},
			{Token: "team_photo", Label: "Team", Kind: content.KindPhoto, Payload: "docs/team.jpg", Caption: "The team"},
			{Token: "consult", Label: "Consultation", Kind: content.KindLink, Payload: "https://example.com/form"},
		},
	}
	c.ApplyDefaults()
	return c
}

func TestDispatchKnownTokens(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(testCatalog(), sender)
	ctx := context.Background()

	require.NoError(t, d.Dispatch(ctx, 1, "about"))
	require.NoError(t, d.Dispatch(ctx, 1, "open_guide"))
	require.NoError(t, d.Dispatch(ctx, 1, "team_photo"))
	require.NoError(t, d.Dispatch(ctx, 1, "consult"))

	require.Len(t, sender.sent, 4)
	require.Equal(t, "text", sender.sent[0].kind)
	require.Equal(t, "About the program", sender.sent[0].text)
	require.Equal(t, "document", sender.sent[1].kind)
	require.Equal(t, "docs/guide.pdf", sender.sent[1].ref)
	require.Equal(t, "photo", sender.sent[2].kind)
	require.Equal(t, "link", sender.sent[3].kind)
	require.Equal(t, "https://example.com/form", sender.sent[3].url)
}

func TestDispatchUnknownTokenSendsFallback(t *testing.T) {
	sender := &fakeSender{}
	catalog := testCatalog()
	d := NewDispatcher(catalog, sender)

	require.NoError(t, d.Dispatch(context.Background(), 1, "nope"))
	require.Len(t, sender.sent, 1)
	require.Equal(t, catalog.Texts.MenuFallback, sender.sent[0].text)
}

func TestDocumentFailureReportedNotFatal(t *testing.T) {
	sender := &fakeSender{docErr: errors.New("file missing")}
	catalog := testCatalog()
	d := NewDispatcher(catalog, sender)

	require.NoError(t, d.Dispatch(context.Background(), 1, "open_guide"))
	require.Len(t, sender.sent, 1)
	require.Equal(t, catalog.Texts.DocUnavailable, sender.sent[0].text)
}

func TestEntriesPreserveDeclarationOrder(t *testing.T) {
	d := NewDispatcher(testCatalog(), &fakeSender{})
	entries := d.Entries()
	require.Len(t, entries, 4)
	require.Equal(t, "about", entries[0].Token)
	require.Equal(t, "consult", entries[3].Token)
	require.True(t, d.Known("open_guide"))
	require.False(t, d.Known("open_guide2"))
}
