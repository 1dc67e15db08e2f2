package security

import (
	"testing"
	"time"
)

func TestTokenProvider_IssueAndValidate(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	issued := time.Now().UTC().Truncate(time.Second)
	expires := issued.Add(720 * time.Hour)

	tok, err := p.Issue("u1", "admin@x.com", "Admin", "org-1", "owner", issued, expires)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if tok == "" {
		t.Fatal("empty token")
	}

	claims, err := p.Validate(tok)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Subject != "u1" || claims.OrgID != "org-1" || claims.Role != "owner" {
		t.Errorf("claims = sub %q org %q role %q", claims.Subject, claims.OrgID, claims.Role)
	}
	if claims.Email != "admin@x.com" || claims.Name != "Admin" {
		t.Errorf("profile claims = %q / %q", claims.Email, claims.Name)
	}
	if !claims.IssuedAt.Time.Equal(issued) {
		t.Errorf("iat = %v, want %v", claims.IssuedAt.Time, issued)
	}
	if !claims.ExpiresAt.Time.Equal(expires) {
		t.Errorf("exp = %v, want %v", claims.ExpiresAt.Time, expires)
	}
}

func TestTokenProvider_UnenrichedClaimsOmitted(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	now := time.Now().UTC()
	tok, err := p.Issue("u1", "admin@x.com", "Admin", "", "", now, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := p.Validate(tok)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.OrgID != "" || claims.Role != "" {
		t.Errorf("unenriched token has org %q role %q", claims.OrgID, claims.Role)
	}
}

func TestTokenProvider_ValidateRejectsGarbage(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	if _, err := p.Validate("not-a-token"); err != ErrInvalidToken {
		t.Errorf("garbage: want ErrInvalidToken, got %v", err)
	}
	if _, err := p.Validate(""); err != ErrInvalidToken {
		t.Errorf("empty: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_ValidateRejectsExpired(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	issued := time.Now().UTC().Add(-2 * time.Hour)
	tok, err := p.Issue("u1", "admin@x.com", "Admin", "", "", issued, issued.Add(time.Hour))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := p.Validate(tok); err != ErrInvalidToken {
		t.Errorf("expired: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_ValidateRejectsTampered(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	now := time.Now().UTC()
	tok, err := p.Issue("u1", "admin@x.com", "Admin", "", "", now, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	tampered := tok[:len(tok)-2] + "xx"
	if _, err := p.Validate(tampered); err != ErrInvalidToken {
		t.Errorf("tampered: want ErrInvalidToken, got %v", err)
	}
}
