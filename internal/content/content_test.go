package content

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	catalog := Default()
	require.NoError(t, catalog.Validate())
	require.NotEmpty(t, catalog.Menu)
	require.NotEmpty(t, catalog.ConsentDocuments)
}

func TestApplyDefaultsKeepsOverrides(t *testing.T) {
	catalog := Catalog{
		Texts: Texts{Welcome: "Custom welcome"},
		Menu:  []MenuEntry{{Token: "faq", Label: "FAQ", Kind: KindText, Payload: "answers"}},
	}
	catalog.ApplyDefaults()

	require.Equal(t, "Custom welcome", catalog.Texts.Welcome)
	require.Equal(t, Default().Texts.AskName, catalog.Texts.AskName)
	require.Len(t, catalog.Menu, 1, "a partial menu must not be merged with defaults")
	require.Equal(t, Default().ConsentDocuments, catalog.ConsentDocuments)
}

func TestAdminNoticesComeFromCatalog(t *testing.T) {
	var catalog Catalog
	catalog.ApplyDefaults()
	require.NotEmpty(t, catalog.Texts.LeadsDisabled)
	require.NotEmpty(t, catalog.Texts.LeadsEmpty)

	override := Catalog{Texts: Texts{LeadsEmpty: "Nothing yet"}}
	override.ApplyDefaults()
	require.Equal(t, "Nothing yet", override.Texts.LeadsEmpty)
}

func TestValidateRejectsBadMenus(t *testing.T) {
	cases := []struct {
		name string
		menu []MenuEntry
	}{
		{"empty token", []MenuEntry{{Token: " ", Kind: KindText, Payload: "x"}}},
		{"duplicate token", []MenuEntry{
			{Token: "a", Kind: KindText, Payload: "x"},
			{Token: "a", Kind: KindText, Payload: "y"},
		}},
		{"unknown kind", []MenuEntry{{Token: "a", Kind: "video", Payload: "x"}}},
		{"empty payload", []MenuEntry{{Token: "a", Kind: KindLink, Payload: " "}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Catalog{Menu: tc.menu}
			require.Error(t, c.Validate())
		})
	}
}
