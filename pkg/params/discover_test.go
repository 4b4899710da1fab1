package params

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestDiscover(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<form action="/search" method="get">
  <input type="text" name="q">
  <input type="hidden" name="csrf" value="tok">
  <select name="sort"><option>asc</option></select>
  <textarea name="notes"></textarea>
  <input type="submit" value="go">
</form>
</body></html>`)
	}))
	defer server.Close()

	got, err := Discover(context.Background(), http.DefaultClient, server.URL+"/?page=2")
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}

	want := []string{"csrf", "notes", "page", "q", "sort"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Discover() = %v, want %v", got, want)
	}
}

func TestDiscover_NoForms(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>nothing here</p></body></html>`)
	}))
	defer server.Close()

	got, err := Discover(context.Background(), http.DefaultClient, server.URL+"/?id=1")
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}

	want := []string{"id"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Discover() = %v, want %v", got, want)
	}
}

func TestDiscover_BadURL(t *testing.T) {
	if _, err := Discover(context.Background(), http.DefaultClient, "http://%zz"); err == nil {
		t.Fatal("expected error for unparseable URL")
	}
}
