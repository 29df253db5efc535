// Package content holds every user-visible string, document reference,
// and menu row in one catalog. Routing logic never embeds display text;
// deployments override any of it from the YAML config.
package content

import (
	"fmt"
	"strings"
)

// ActionKind tags what a menu entry does when dispatched.
type ActionKind string

const (
	// KindText sends a canned text block.
	KindText ActionKind = "text"
	// KindDocument sends a static document by file reference or URL.
	KindDocument ActionKind = "document"
	// KindPhoto sends a photo with a caption.
	KindPhoto ActionKind = "photo"
	// KindLink presents an external URL behind an inline button.
	KindLink ActionKind = "link"
)

// MenuEntry declares one dispatchable menu row. Token is the stable
// callback identifier; Label is presentation only.
type MenuEntry struct {
	Token   string     `yaml:"token"`
	Label   string     `yaml:"label"`
	Kind    ActionKind `yaml:"kind"`
	Payload string     `yaml:"payload"`
	Caption string     `yaml:"caption"`
}

// Texts carries the onboarding prompts and service notices.
type Texts struct {
	Welcome        string `yaml:"welcome"`
	ConsentPrompt  string `yaml:"consent_prompt"`
	ConsentButton  string `yaml:"consent_button"`
	AskName        string `yaml:"ask_name"`
	NameEmpty      string `yaml:"name_empty"`
	AskPhone       string `yaml:"ask_phone"`
	PhoneEmpty     string `yaml:"phone_empty"`
	PhoneButton    string `yaml:"phone_button"`
	AskEmail       string `yaml:"ask_email"`
	EmailEmpty     string `yaml:"email_empty"`
	JoinPrompt     string `yaml:"join_prompt"`
	JoinButton     string `yaml:"join_button"`
	JoinedButton   string `yaml:"joined_button"`
	NotMember      string `yaml:"not_member"`
	VerifyFailed   string `yaml:"verify_failed"`
	Unlocked       string `yaml:"unlocked"`
	MenuTitle      string `yaml:"menu_title"`
	MenuFallback   string `yaml:"menu_fallback"`
	DocUnavailable string `yaml:"doc_unavailable"`
	LeadsDisabled  string `yaml:"leads_disabled"`
	LeadsEmpty     string `yaml:"leads_empty"`
}

// Catalog is the immutable content table loaded at startup.
type Catalog struct {
	Texts            Texts       `yaml:"texts"`
	ConsentDocuments []string    `yaml:"consent_documents"`
	Menu             []MenuEntry `yaml:"menu"`
}

// Default returns the built-in catalog. YAML overrides replace fields
// individually; see ApplyDefaults.
func Default() Catalog {
	return Catalog{
		Texts: Texts{
			Welcome:        "Welcome! Before we start, please review the privacy policy and consent documents below.",
			ConsentPrompt:  "Tap the button to confirm you accept the privacy policy.",
			ConsentButton:  "I agree",
			AskName:        "Great. What is your name?",
			NameEmpty:      "Please send your name as text.",
			AskPhone:       "Share your phone number, or type it in.",
			PhoneEmpty:     "Please share a contact or type your phone number.",
			PhoneButton:    "Share phone",
			AskEmail:       "And your email?",
			EmailEmpty:     "Please send your email as text.",
			JoinPrompt:     "Last step: join our channel, then press the confirmation button.",
			JoinButton:     "Open channel",
			JoinedButton:   "I joined",
			NotMember:      "Looks like you have not joined yet. Join the channel and press the button again.",
			VerifyFailed:   "Could not verify your membership right now. Please try again in a minute.",
			Unlocked:       "You are all set! Pick anything from the menu below.",
			MenuTitle:      "Menu",
			MenuFallback:   "Please use the menu buttons below.",
			DocUnavailable: "This material is temporarily unavailable. Please try again later.",
			LeadsDisabled:  "Lead storage is not configured.",
			LeadsEmpty:     "No leads recorded yet.",
		},
		ConsentDocuments: []string{
			"docs/privacy_policy.pdf",
			"docs/personal_data_consent.pdf",
		},
		Menu: []MenuEntry{
			{Token: "about", Label: "About the program", Kind: KindText, Payload: "Our coaching program helps you build a working growth plan in 6 weeks."},
			{Token: "open_guide", Label: "Free guide", Kind: KindDocument, Payload: "docs/guide.pdf", Caption: "Your starter guide"},
			{Token: "consult", Label: "Book a consultation", Kind: KindLink, Payload: "https://example.com/consultation"},
		},
	}
}

// ApplyDefaults fills empty fields from the built-in catalog so a YAML
// override only needs to mention what it changes.
func (c *Catalog) ApplyDefaults() {
	def := Default()
	applyTextDefaults(&c.Texts, def.Texts)
	if len(c.ConsentDocuments) == 0 {
		c.ConsentDocuments = def.ConsentDocuments
	}
	if len(c.Menu) == 0 {
		c.Menu = def.Menu
	}
}

// Validate rejects malformed menu rows early, at startup.
func (c *Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c.Menu))
	for i, entry := range c.Menu {
		token := strings.TrimSpace(entry.Token)
		if token == "" {
			return fmt.Errorf("content: menu entry %d has empty token", i)
		}
		if _, dup := seen[token]; dup {
			return fmt.Errorf("content: duplicate menu token %q", token)
		}
		seen[token] = struct{}{}
		switch entry.Kind {
		case KindText, KindDocument, KindPhoto, KindLink:
		default:
			return fmt.Errorf("content: menu token %q has unknown kind %q", token, entry.Kind)
		}
		if strings.TrimSpace(entry.Payload) == "" {
			return fmt.Errorf("content: menu token %q has empty payload", token)
		}
	}
	return nil
}

func applyTextDefaults(dst *Texts, def Texts) {
	pick := func(field *string, fallback string) {
		if strings.TrimSpace(*field) == "" {
			*field = fallback
		}
	}
	pick(&dst.Welcome, def.Welcome)
	pick(&dst.ConsentPrompt, def.ConsentPrompt)
	pick(&dst.ConsentButton, def.ConsentButton)
	pick(&dst.AskName, def.AskName)
	pick(&dst.NameEmpty, def.NameEmpty)
	pick(&dst.AskPhone, def.AskPhone)
	pick(&dst.PhoneEmpty, def.PhoneEmpty)
	pick(&dst.PhoneButton, def.PhoneButton)
	pick(&dst.AskEmail, def.AskEmail)
	pick(&dst.EmailEmpty, def.EmailEmpty)
	pick(&dst.JoinPrompt, def.JoinPrompt)
	pick(&dst.JoinButton, def.JoinButton)
	pick(&dst.JoinedButton, def.JoinedButton)
	pick(&dst.NotMember, def.NotMember)
	pick(&dst.VerifyFailed, def.VerifyFailed)
	pick(&dst.Unlocked, def.Unlocked)
	pick(&dst.MenuTitle, def.MenuTitle)
	pick(&dst.MenuFallback, def.MenuFallback)
	pick(&dst.DocUnavailable, def.DocUnavailable)
	pick(&dst.LeadsDisabled, def.LeadsDisabled)
	pick(&dst.LeadsEmpty, def.LeadsEmpty)
}
