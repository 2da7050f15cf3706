package maas

import "testing"

func TestParseAPIKey(t *testing.T) {
	key, err := ParseAPIKey("ck:tok:sec")
	if err != nil {
		t.Fatalf("ParseAPIKey() error = %v", err)
	}
	if key.ConsumerKey != "ck" || key.Token != "tok" || key.Secret != "sec" {
		t.Fatalf("unexpected key parts: %+v", key)
	}
}

func TestParseAPIKeyTrimsWhitespace(t *testing.T) {
	key, err := ParseAPIKey("  ck:tok:sec\n")
	if err != nil {
		t.Fatalf("ParseAPIKey() error = %v", err)
	}
	if key.ConsumerKey != "ck" {
		t.Fatalf("consumer key = %q, want %q", key.ConsumerKey, "ck")
	}
}

func TestParseAPIKeyRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"justonekey",
		"ck:tok",
		"ck:tok:sec:extra",
		"ck::sec",
		":tok:sec",
	}
	for _, raw := range cases {
		if _, err := ParseAPIKey(raw); err == nil {
			t.Errorf("ParseAPIKey(%q) expected error, got nil", raw)
		}
	}
}

func TestAuthorizationHeaderDeterministic(t *testing.T) {
	key := APIKey{ConsumerKey: "ck", Token: "tok", Secret: "sec"}

	want := `OAuth oauth_version="1.0", oauth_signature_method="PLAINTEXT", ` +
		`oauth_consumer_key="ck", oauth_token="tok", oauth_signature="&sec", ` +
		`oauth_timestamp="1700000000", oauth_nonce="nonce-1"`

	got := key.AuthorizationHeader("1700000000", "nonce-1")
	if got != want {
		t.Fatalf("AuthorizationHeader() = %q, want %q", got, want)
	}
	if again := key.AuthorizationHeader("1700000000", "nonce-1"); again != got {
		t.Fatalf("header not deterministic: %q != %q", again, got)
	}
}
