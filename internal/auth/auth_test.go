package auth

import (
	"errors"
	"sync"
	"testing"

	"github.com/NINOX-360/Surface-Inspector-Remote/internal/testutil/testlog"
)

func TestStaticTokenValidate(t *testing.T) {
	tests := []struct {
		name    string
		stored  string
		input   string
		wantErr error
	}{
		{name: "empty secret denied", stored: "", input: "", wantErr: ErrUnauthorized},
		{name: "mismatched secret denied", stored: "9n0SQ", input: "9n0sq", wantErr: ErrUnauthorized},
		{name: "matching secret accepted", stored: "9n0SQ", input: "9n0SQ", wantErr: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			testlog.Start(t)
			err := (StaticToken{Token: tc.stored}).Validate(tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected err %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCredentialsIssueValidateRevoke(t *testing.T) {
	testlog.Start(t)
	creds := NewCredentials()

	a := creds.Issue()
	b := creds.Issue()
	if a == b {
		t.Fatalf("expected distinct credentials, got %q twice", a)
	}
	for _, c := range []string{a, b} {
		if err := creds.Validate(c); err != nil {
			t.Fatalf("issued credential %q rejected: %v", c, err)
		}
	}
	if err := creds.Validate(""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected empty credential to be rejected, got %v", err)
	}
	if err := creds.Validate("never-issued"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unknown credential to be rejected, got %v", err)
	}

	creds.Revoke(a)
	if err := creds.Validate(a); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected revoked credential to be rejected, got %v", err)
	}
	if err := creds.Validate(b); err != nil {
		t.Fatalf("revoking one credential affected another: %v", err)
	}
}

func TestCredentialsConcurrentIssue(t *testing.T) {
	testlog.Start(t)
	creds := NewCredentials()

	var wg sync.WaitGroup
	out := make(chan string, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out <- creds.Issue()
		}()
	}
	wg.Wait()
	close(out)

	for c := range out {
		if err := creds.Validate(c); err != nil {
			t.Fatalf("credential %q lost: %v", c, err)
		}
	}
}

var _ Validator = StaticToken{}
var _ Validator = (*Credentials)(nil)
