package auth

import (
	"testing"
	"time"
)

func newTokenService(ttl time.Duration) TokenService {
	return TokenService{Secret: []byte("test-secret"), Issuer: "bookden", Duration: ttl}
}

func TestSignAndParse(t *testing.T) {
	ts := newTokenService(time.Hour)
	user := &User{ID: "u-1", Username: "reader"}

	token, exp, err := ts.Sign(user)
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(exp) < 55*time.Minute {
		t.Errorf("expiry too soon: %v", exp)
	}

	claims, err := ts.Parse(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "u-1" || claims.Username != "reader" {
		t.Errorf("claims: %+v", claims)
	}
	if claims.Issuer != "bookden" {
		t.Errorf("issuer: %q", claims.Issuer)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := newTokenService(time.Hour).Sign(&User{ID: "u-1", Username: "reader"})
	if err != nil {
		t.Fatal(err)
	}

	other := TokenService{Secret: []byte("different"), Issuer: "bookden", Duration: time.Hour}
	if _, err := other.Parse(token); err == nil {
		t.Error("token signed with another secret must not parse")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	ts := newTokenService(-time.Minute)
	token, _, err := ts.Sign(&User{ID: "u-1", Username: "reader"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ts.Parse(token); err == nil {
		t.Error("expired token must not parse")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := newTokenService(time.Hour).Parse("not.a.token"); err == nil {
		t.Error("garbage must not parse")
	}
}
