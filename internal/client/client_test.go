package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coldhawk/coldhawk/internal/board"
	"github.com/coldhawk/coldhawk/internal/errors"
	"github.com/coldhawk/coldhawk/internal/logging"
)

// newTestClient points both hosts at the test server with fast retries.
func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c, err := New(Config{
		BaseURL:       serverURL,
		MemberBaseURL: serverURL,
		UserAgent:     "coldhawk-test",
		Timeout:       5 * time.Second,
		MaxRetries:    2,
		RetryDelay:    time.Millisecond,
		MaxRetryDelay: 2 * time.Millisecond,
		Logger:        logging.NopLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

const loginFormPage = `<html><body><form>
	<input type="hidden" name="st" value="csrf-token">
	<input type="hidden" name="seq" value="7">
</form></body></html>`

func loginMux(t *testing.T, grantCookies bool, sawForm *map[string]string) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>main</html>")
	})
	mux.HandleFunc("/user/scorpio/mlogin", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, loginFormPage)
	})
	mux.HandleFunc("/m/login/dispatch", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		if sawForm != nil {
			*sawForm = map[string]string{}
			for k := range r.PostForm {
				(*sawForm)[k] = r.PostForm.Get(k)
			}
		}
		if grantCookies {
			http.SetCookie(w, &http.Cookie{Name: "M_ID", Value: "user", Path: "/"})
			http.SetCookie(w, &http.Cookie{Name: "M_SID", Value: "sid-1", Path: "/"})
		}
		w.Header().Set("Location", "/")
		w.WriteHeader(http.StatusFound)
	})
	return mux
}

func TestLoginSuccess(t *testing.T) {
	var form map[string]string
	server := httptest.NewServer(loginMux(t, true, &form))
	defer server.Close()

	c := newTestClient(t, server.URL)
	if err := c.Login(context.Background(), "someone", "ab"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !c.LoggedIn() {
		t.Error("LoggedIn() = false after successful login")
	}

	if form["st"] != "csrf-token" {
		t.Errorf("st = %q, want csrf-token", form["st"])
	}
	if form["seq"] != "7" {
		t.Errorf("hidden field seq = %q, want 7", form["seq"])
	}
	if form["password"] != "6162" {
		t.Errorf("password = %q, want hex-encoded 6162", form["password"])
	}
	if form["kp"] != "0" {
		t.Errorf("kp = %q, want 0", form["kp"])
	}
}

func TestLoginFailsWithoutSessionCookies(t *testing.T) {
	// The dispatch endpoint answers 302 like a success but never grants
	// the session cookies. The status must not be trusted.
	server := httptest.NewServer(loginMux(t, false, nil))
	defer server.Close()

	c := newTestClient(t, server.URL)
	err := c.Login(context.Background(), "someone", "wrong")
	if err == nil {
		t.Fatal("Login should fail without M_ID/M_SID")
	}
	if !errors.Is(err, errors.ErrLoginFailed) {
		t.Errorf("error = %v, want ErrLoginFailed", err)
	}
	if c.LoggedIn() {
		t.Error("LoggedIn() = true after failed login")
	}
}

func TestLoginFailsOnMissingToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>no form here</html>")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL)
	err := c.Login(context.Background(), "someone", "pw")
	if !errors.Is(err, errors.ErrMissingToken) {
		t.Errorf("error = %v, want ErrMissingToken", err)
	}
}

func TestEncodePassword(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc", "616263"},
		{"A1!", "413121"},
		{"", ""},
		{"한", "d55c"},
	}
	for _, tt := range tests {
		if got := encodePassword(tt.in); got != tt.want {
			t.Errorf("encodePassword(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRetriesExhaustedOnTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	serverURL := server.URL
	server.Close() // nothing listens anymore

	c := newTestClient(t, serverURL)
	_, err := c.get(context.Background(), serverURL+"/")
	if err == nil {
		t.Fatal("expected a transport error")
	}
	if !errors.Is(err, errors.ErrRetriesExhausted) {
		t.Errorf("error = %v, want ErrRetriesExhausted", err)
	}
}

func TestHTTPErrorStatusIsNotRetried(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	resp, err := c.get(context.Background(), server.URL+"/")
	if err != nil {
		t.Fatalf("an HTTP 500 is a response, not an error: %v", err)
	}
	if resp.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d", resp.Status)
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1", hits)
	}
}

func listingPage(ids ...string) string {
	page := "<html><body>"
	for _, id := range ids {
		page += fmt.Sprintf(`<a class="subject-link" href="/board/diablo4/6383/%s?my=post">post %s</a>`, id, id)
	}
	return page + "</body></html>"
}

func TestListOwnPosts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/board/diablo4/6383", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("p") {
		case "", "1":
			fmt.Fprint(w, listingPage("300", "200", "100"))
		case "2":
			fmt.Fprint(w, listingPage("100", "50")) // 100 repeats across pages
		default:
			fmt.Fprint(w, listingPage())
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL)
	posts, err := c.ListOwnPosts(context.Background(), board.BoardTrade, 5)
	if err != nil {
		t.Fatalf("ListOwnPosts: %v", err)
	}

	want := []string{"300", "200", "100", "50"}
	if len(posts) != len(want) {
		t.Fatalf("got %d posts, want %d", len(posts), len(want))
	}
	for i, id := range want {
		if posts[i].PostID != id {
			t.Errorf("post %d = %q, want %q", i, posts[i].PostID, id)
		}
		if posts[i].Slug != board.Slug || posts[i].BoardID != "6383" {
			t.Errorf("post %d carries wrong board identity: %+v", i, posts[i])
		}
	}
}

func TestListOwnPostsSkipsFailedPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/board/diablo4/6383", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("p") {
		case "", "1":
			fmt.Fprint(w, listingPage("300", "200"))
		case "2":
			// Kill the connection so this page fails at the transport level.
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					conn.Close()
				}
			}
		case "3":
			fmt.Fprint(w, listingPage("100"))
		default:
			fmt.Fprint(w, listingPage())
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL)
	posts, err := c.ListOwnPosts(context.Background(), board.BoardTrade, 4)
	if err != nil {
		t.Fatalf("ListOwnPosts: %v", err)
	}

	want := []string{"300", "200", "100"}
	if len(posts) != len(want) {
		t.Fatalf("got %v, want pages after the failed one included (%v)", posts, want)
	}
	for i, id := range want {
		if posts[i].PostID != id {
			t.Errorf("post %d = %q, want %q", i, posts[i].PostID, id)
		}
	}
}

func TestListOwnPostsStopsOnEmptyPage(t *testing.T) {
	pagesServed := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/board/diablo4/6383", func(w http.ResponseWriter, r *http.Request) {
		pagesServed++
		if r.URL.Query().Get("p") == "" {
			fmt.Fprint(w, listingPage("10"))
			return
		}
		fmt.Fprint(w, listingPage())
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL)
	posts, err := c.ListOwnPosts(context.Background(), board.BoardTrade, 50)
	if err != nil {
		t.Fatalf("ListOwnPosts: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("got %d posts, want 1", len(posts))
	}
	if pagesServed != 2 {
		t.Errorf("served %d pages, want 2 (stop after first empty page)", pagesServed)
	}
}
