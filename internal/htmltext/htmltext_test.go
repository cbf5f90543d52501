package htmltext

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parse(t *testing.T, s string) *html.Node {
	t.Helper()
	n, err := html.Parse(strings.NewReader(s))
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func find(root *html.Node, tag string) *html.Node {
	for n := root; n != nil; n = Next(n) {
		if IsElement(n, tag) {
			return n
		}
	}
	return nil
}

func TestText(t *testing.T) {
	root := parse(t, `<p>hello <b>bold</b> world</p>`)
	if got := Text(find(root, "p")); got != "hello bold world" {
		t.Errorf("Text = %q", got)
	}
}

func TestCollapsed(t *testing.T) {
	root := parse(t, "<p>  a \n b\t\tc  </p>")
	if got := Collapsed(find(root, "p")); got != "a b c" {
		t.Errorf("Collapsed = %q", got)
	}
}

func TestAttrAndHasClass(t *testing.T) {
	root := parse(t, `<td class="dddefault wide" title="Queue">x</td>`)
	td := find(root, "td")
	if got := Attr(td, "title"); got != "Queue" {
		t.Errorf("Attr = %q", got)
	}
	if !HasClass(td, "dddefault") || !HasClass(td, "wide") {
		t.Error("HasClass missed a listed class")
	}
	if HasClass(td, "ddd") {
		t.Error("HasClass matched a substring")
	}
}

func TestNextPrevWalkWholeDocument(t *testing.T) {
	root := parse(t, `<table><tr><td>a</td><td>b</td></tr></table>`)

	var forward []*html.Node
	for n := root; n != nil; n = Next(n) {
		forward = append(forward, n)
	}
	last := forward[len(forward)-1]

	var backward []*html.Node
	for n := last; n != nil; n = Prev(n) {
		backward = append(backward, n)
	}
	if len(forward) != len(backward) {
		t.Fatalf("forward walk saw %d nodes, backward %d", len(forward), len(backward))
	}
	for i := range forward {
		if forward[i] != backward[len(backward)-1-i] {
			t.Fatalf("walk order mismatch at %d", i)
		}
	}
}

func TestAncestor(t *testing.T) {
	root := parse(t, `<table><tr><td><input type="button"></td></tr></table>`)
	input := find(root, "input")
	tr := Ancestor(input, "tr")
	if tr == nil || !IsElement(tr, "tr") {
		t.Fatal("Ancestor did not find the enclosing tr")
	}
	if Ancestor(input, "form") != nil {
		t.Error("Ancestor found a form that does not exist")
	}
}
