package postgres

import (
	"strings"
	"testing"
)

func TestRandomID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := randomID("ref")
		if !strings.HasPrefix(id, "ref_") {
			t.Fatalf("expected 'ref_' prefix, got '%s'", id)
		}
		if len(id) != len("ref_")+12 {
			t.Fatalf("expected 12-char segment, got '%s'", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestEncodeLeadMetadata(t *testing.T) {
	encoded, err := encodeLeadMetadata(leadMetadata{
		Relationship:             "Friend",
		LivingRegion:             "Johor",
		LinkedReferrer:           "ref_abc123def456",
		SyncedFromReferralPortal: true,
		CreatedAt:                "2026-08-30T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	// The ownership clause matches these substrings with LIKE, so the
	// compact encoding is part of the contract, not a formatting choice.
	for _, fragment := range []string{
		`"syncedFromReferralPortal":true`,
		`"linkedReferrer":"ref_abc123def456"`,
		`"relationship":"Friend"`,
		`"livingRegion":"Johor"`,
	} {
		if !strings.Contains(encoded, fragment) {
			t.Errorf("expected metadata to contain %s, got %s", fragment, encoded)
		}
	}
}

func TestLeadOwnershipClause(t *testing.T) {
	clause, args := leadOwnershipClause("ref_owner1", 8)

	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
	if args[0] != "ref_owner1" {
		t.Errorf("first arg: expected referrer id, got %v", args[0])
	}
	if args[1] != `%"linkedReferrer":"ref_owner1"%` {
		t.Errorf("second arg: unexpected pattern %v", args[1])
	}

	for _, fragment := range []string{
		"lead_source = 'referral'",
		`notes LIKE '%"syncedFromReferralPortal":true%'`,
		"created_by = $8",
		"notes LIKE $9",
	} {
		if !strings.Contains(clause, fragment) {
			t.Errorf("expected clause to contain %q, got:\n%s", fragment, clause)
		}
	}
}

func TestParseAccountNotes(t *testing.T) {
	t.Run("round trip with profile", func(t *testing.T) {
		notes := parseAccountNotes(`{"kind":"referral_account","source":"whatsapp_auth","displayName":"Aina","bankAccount":"1234567890"}`)
		if notes.Kind != "referral_account" {
			t.Errorf("kind: got '%s'", notes.Kind)
		}
		profile := notes.profile()
		if profile.DisplayName != "Aina" || profile.BankAccount != "1234567890" {
			t.Errorf("unexpected profile: %+v", profile)
		}
	})

	t.Run("legacy free text tolerated", func(t *testing.T) {
		notes := parseAccountNotes("imported from spreadsheet")
		if notes != (accountNotes{}) {
			t.Errorf("expected empty notes, got %+v", notes)
		}
	})

	t.Run("empty notes tolerated", func(t *testing.T) {
		if notes := parseAccountNotes(""); notes != (accountNotes{}) {
			t.Errorf("expected empty notes, got %+v", notes)
		}
	})
}
