package signup

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"vto/internal/domain"
)

func event(attrs map[string]string) events.CognitoEventUserPoolsPreSignup {
	var e events.CognitoEventUserPoolsPreSignup
	e.UserPoolID = "pool"
	e.Request.UserAttributes = attrs
	return e
}

func TestGate(t *testing.T) {
	cases := []struct {
		name        string
		allowed     []string
		attrs       map[string]string
		wantErr     error
		wantConfirm bool
	}{
		{name: "no restrictions", allowed: nil, attrs: map[string]string{"email": "a@anything.com"}},
		{name: "allowed domain", allowed: []string{"example.com", "test.co.jp"}, attrs: map[string]string{"email": "user@example.com"}, wantConfirm: true},
		{name: "case insensitive", allowed: []string{"example.com"}, attrs: map[string]string{"email": "user@EXAMPLE.COM"}, wantConfirm: true},
		{name: "missing email", allowed: []string{"example.com"}, attrs: map[string]string{}},
		{name: "malformed email", allowed: []string{"example.com"}, attrs: map[string]string{"email": "invalid-email"}, wantErr: domain.ErrInvalidEmail},
		{name: "disallowed domain", allowed: []string{"example.com", "test.co.jp"}, attrs: map[string]string{"email": "user@different.com"}, wantErr: domain.ErrSignUpNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewGate(tc.allowed, nil).Handle(context.Background(), event(tc.attrs))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Response.AutoConfirmUser != tc.wantConfirm {
				t.Fatalf("AutoConfirmUser = %v, want %v", got.Response.AutoConfirmUser, tc.wantConfirm)
			}
		})
	}
}

func TestRejectionNamesDomains(t *testing.T) {
	_, err := NewGate([]string{"example.com", "test.co.jp"}, nil).Handle(context.Background(), event(map[string]string{"email": "user@different.com"}))
	if err == nil {
		t.Fatalf("expected rejection")
	}
	for _, want := range []string{"different.com", "example.com", "test.co.jp"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}
