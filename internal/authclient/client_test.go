package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(srv.URL, Options{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestLoginPostsIdentifier(t *testing.T) {
	var got loginRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != loginPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"tok-1","user":{"_id":"u-1","email":"a@b.com","role":"admin"}}`))
	})

	res, err := client.Login(context.Background(), "a@b.com", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.Identifier != "a@b.com" || got.Password != "secret" {
		t.Fatalf("unexpected payload %+v", got)
	}
	if res.Token != "tok-1" {
		t.Fatalf("expected token tok-1, got %q", res.Token)
	}
	if res.User.LegacyID != "u-1" || res.User.Role != "admin" {
		t.Fatalf("unexpected user %+v", res.User)
	}
}

func TestRegisterSendsAllFields(t *testing.T) {
	var got map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != registerPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"token":"tok-2","user":{"id":"u-2","email":"jane@x.com"}}`))
	})

	_, err := client.Register(context.Background(), RegisterRequest{
		FirstName: "Jane", LastName: "Doe", Username: "jane", Email: "jane@x.com", Password: "pw", Country: "US",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	for _, key := range []string{"firstName", "lastName", "username", "email", "password", "country"} {
		if got[key] == "" {
			t.Fatalf("expected %s in payload, got %v", key, got)
		}
	}
}

func TestVerifyToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body verifyRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.Token != "tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"user":{"id":"u-1","email":"a@b.com"}}`))
	})

	user, err := client.VerifyToken(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user.ID != "u-1" {
		t.Fatalf("expected u-1, got %q", user.ID)
	}

	if _, err := client.VerifyToken(context.Background(), "bogus"); err == nil {
		t.Fatalf("expected verification failure")
	}
}

func TestErrorMessageExtraction(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"json message", http.StatusUnauthorized, `{"message":"Invalid credentials"}`, "Invalid credentials"},
		{"json error", http.StatusBadRequest, `{"error":"email taken"}`, "email taken"},
		{"plain text", http.StatusBadGateway, "upstream down\n", "upstream down"},
		{"json without message", http.StatusForbidden, `{"code":7}`, "Forbidden"},
		{"empty body", http.StatusInternalServerError, "", "Internal Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})
			_, err := client.Login(context.Background(), "a@b.com", "bad")
			var authErr *Error
			if !errors.As(err, &authErr) {
				t.Fatalf("expected *Error, got %T %v", err, err)
			}
			if authErr.Status != tc.status {
				t.Fatalf("expected status %d got %d", tc.status, authErr.Status)
			}
			if authErr.Error() != tc.want {
				t.Fatalf("expected message %q got %q", tc.want, authErr.Error())
			}
		})
	}
}

func TestLoginRejectsMissingToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"id":"u-1"}}`))
	})
	if _, err := client.Login(context.Background(), "a@b.com", "pw"); err == nil {
		t.Fatalf("expected error for missing token")
	}
}

func TestNetworkFailureIsReadable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := New(url, Options{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Login(context.Background(), "a@b.com", "pw")
	var authErr *Error
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if authErr.Status != 0 || authErr.Message == "" {
		t.Fatalf("unexpected error %+v", authErr)
	}
}

func TestNewRejectsRelativeURL(t *testing.T) {
	if _, err := New("/api", Options{}); err == nil {
		t.Fatalf("expected error for relative base url")
	}
}
