package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coldhawk/coldhawk/internal/board"
)

func deleteRef(id string) board.PostRef {
	return board.PostRef{Slug: board.Slug, BoardID: "6383", PostID: id}
}

// deleteMux wires the multi-delete endpoint plus a view page whose content
// is controlled per post id.
func deleteMux(deleted map[string]bool) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/board/powerbbs.php", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>listing context</html>")
	})
	mux.HandleFunc("/board/bbs/include/multi_delete.php", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err == nil {
			deleted[r.PostForm.Get("l")] = true
		}
		fmt.Fprint(w, "<html>ok</html>")
	})
	mux.HandleFunc("/board/diablo4/6383/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/board/diablo4/6383/"):]
		if deleted[id] {
			fmt.Fprint(w, "<html>삭제된 게시물입니다.</html>")
			return
		}
		fmt.Fprintf(w, "<html>post %s alive</html>", id)
	})
	return mux
}

func TestDeletePostVerified(t *testing.T) {
	deleted := map[string]bool{}
	server := httptest.NewServer(deleteMux(deleted))
	defer server.Close()

	c := newTestClient(t, server.URL)
	if !c.DeletePost(context.Background(), deleteRef("42")) {
		t.Error("DeletePost should verify against the deleted-post page")
	}
	if !deleted["42"] {
		t.Error("multi-delete endpoint never saw post 42")
	}
}

func TestDeletePostEndpointLiesPostStillAlive(t *testing.T) {
	// The endpoint answers 200 but never deletes anything; verification
	// must catch that.
	mux := http.NewServeMux()
	mux.HandleFunc("/board/powerbbs.php", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>context</html>")
	})
	mux.HandleFunc("/board/bbs/include/multi_delete.php", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>deleted! honest!</html>")
	})
	mux.HandleFunc("/board/diablo4/6383/42", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>still here</html>")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL)
	if c.DeletePost(context.Background(), deleteRef("42")) {
		t.Error("DeletePost must not trust the endpoint's response")
	}
}

func TestVerifyDeletedOnRedirectAway(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/board/diablo4/6383/42", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/board/diablo4/6383", http.StatusFound)
	})
	mux.HandleFunc("/board/diablo4/6383", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>listing</html>")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL)
	if !c.verifyDeleted(context.Background(), deleteRef("42")) {
		t.Error("a redirect away from the view URL means the post is gone")
	}
}

func TestDeleteOldestPost(t *testing.T) {
	deleted := map[string]bool{}
	mux := deleteMux(deleted)
	mux.HandleFunc("/board/diablo4/6383", func(w http.ResponseWriter, r *http.Request) {
		// Newest first; the last entry is the oldest.
		fmt.Fprint(w, listingPage("500", "400", "300"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL)
	ref, ok := c.DeleteOldestPost(context.Background(), board.BoardTrade)
	if !ok {
		t.Fatal("DeleteOldestPost should succeed")
	}
	if ref.PostID != "300" {
		t.Errorf("deleted %q, want the oldest (300)", ref.PostID)
	}
	if deleted["500"] || deleted["400"] {
		t.Error("newer posts must not be touched")
	}
}

func TestDeleteOldestPostNothingToDelete(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/board/diablo4/6383", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingPage())
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL)
	if _, ok := c.DeleteOldestPost(context.Background(), board.BoardTrade); ok {
		t.Error("no posts means nothing to delete")
	}
}

func TestDeleteAllOwnPosts(t *testing.T) {
	deleted := map[string]bool{}
	mux := deleteMux(deleted)
	mux.HandleFunc("/board/diablo4/6383", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("p") == "" {
			fmt.Fprint(w, listingPage("3", "2", "1"))
			return
		}
		fmt.Fprint(w, listingPage())
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL)

	var progress [][3]int
	total, success, err := c.DeleteAllOwnPosts(context.Background(), board.BoardTrade, 2, 0,
		func(current, totalN, successN int) {
			progress = append(progress, [3]int{current, totalN, successN})
		})
	if err != nil {
		t.Fatalf("DeleteAllOwnPosts: %v", err)
	}
	if total != 3 || success != 3 {
		t.Errorf("(total, success) = (%d, %d), want (3, 3)", total, success)
	}
	if len(progress) != 3 {
		t.Fatalf("progress called %d times, want 3", len(progress))
	}
	if progress[2] != [3]int{3, 3, 3} {
		t.Errorf("final progress = %v", progress[2])
	}
	for _, id := range []string{"1", "2", "3"} {
		if !deleted[id] {
			t.Errorf("post %s was not deleted", id)
		}
	}
}
