package client

import (
	"testing"

	"golang.org/x/net/html"
)

func mustParse(t *testing.T, body string) *html.Node {
	t.Helper()
	doc, err := parsePage(body)
	if err != nil {
		t.Fatalf("parsePage: %v", err)
	}
	return doc
}

func TestHiddenInputs(t *testing.T) {
	doc := mustParse(t, `
		<form>
			<input type="hidden" name="st" value="tok123">
			<input type="hidden" name="uid" value="42">
			<input type="hidden" value="anonymous">
			<input type="text" name="subject" value="visible">
		</form>`)

	got := hiddenInputs(doc)
	if len(got) != 2 {
		t.Fatalf("got %d hidden inputs, want 2: %v", len(got), got)
	}
	if got["st"] != "tok123" || got["uid"] != "42" {
		t.Errorf("unexpected values: %v", got)
	}
}

func TestInputValue(t *testing.T) {
	doc := mustParse(t, `<input name="st" value="first"><input name="st" value="second">`)

	if got := inputValue(doc, "st"); got != "first" {
		t.Errorf("inputValue = %q, want first", got)
	}
	if got := inputValue(doc, "absent"); got != "" {
		t.Errorf("inputValue for absent name = %q, want empty", got)
	}
}

func TestAnchorHrefsByClass(t *testing.T) {
	doc := mustParse(t, `
		<a class="subject-link" href="/board/diablo4/6383/100">one</a>
		<a class="other subject-link" href="/board/diablo4/6383/99">two</a>
		<a class="subject" href="/board/diablo4/6383/98">not it</a>
		<a class="subject-link">no href</a>`)

	got := anchorHrefsByClass(doc, "subject-link")
	want := []string{"/board/diablo4/6383/100", "/board/diablo4/6383/99"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("href %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMetaProperty(t *testing.T) {
	doc := mustParse(t, `<head><meta property="og:url" content="https://example.com/board/diablo4/6383/777"></head>`)

	if got := metaProperty(doc, "og:url"); got != "https://example.com/board/diablo4/6383/777" {
		t.Errorf("metaProperty = %q", got)
	}
	if got := metaProperty(doc, "og:title"); got != "" {
		t.Errorf("missing property should be empty, got %q", got)
	}
}

func TestChooseCategory(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "prefers etc option",
			body: `<select name="CATEGORY">
				<option value="">선택하세요</option>
				<option value="1">판매</option>
				<option value="2">기타</option>
				<option value="3">구매</option>
			</select>`,
			want: "2",
		},
		{
			name: "last etc wins",
			body: `<select name="category">
				<option value="5">기타A</option>
				<option value="6">기타B</option>
			</select>`,
			want: "6",
		},
		{
			name: "falls back to last valid",
			body: `<select name="CATEGORY">
				<option value="">선택</option>
				<option value="1">판매</option>
				<option value="2" disabled>마감</option>
				<option value="3">구매</option>
			</select>`,
			want: "3",
		},
		{
			name: "no select",
			body: `<form><input type="hidden" name="st" value="x"></form>`,
			want: "",
		},
		{
			name: "only placeholder options",
			body: `<select name="CATEGORY"><option value="">선택하세요</option></select>`,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, tt.body)
			if got := chooseCategory(doc); got != tt.want {
				t.Errorf("chooseCategory() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsHTMLContent(t *testing.T) {
	if !isHTMLContent("hello <B>world</B>") {
		t.Error("uppercase tags should be detected")
	}
	if isHTMLContent("plain text with a < b comparison") {
		t.Error("bare angle bracket is not markup")
	}
	if !isHTMLContent("line<br>break") {
		t.Error("<br> should be detected")
	}
}

func TestRefFromPath(t *testing.T) {
	ref, ok := refFromPath("https://www.inven.co.kr/board/diablo4/6383/12345?my=post")
	if !ok {
		t.Fatal("expected a parse")
	}
	if ref.Slug != "diablo4" || ref.BoardID != "6383" || ref.PostID != "12345" {
		t.Errorf("ref = %+v", ref)
	}

	if _, ok := refFromPath("https://www.inven.co.kr/board/diablo4"); ok {
		t.Error("short path should not parse")
	}
}
