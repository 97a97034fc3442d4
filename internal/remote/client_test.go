package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ext2view/internal/remote"
	"ext2view/internal/remote/remotetest"
)

func TestDirectoryDecodesListing(t *testing.T) {
	srv := remotetest.New(t)
	srv.MkdirAll("/home/docs")
	srv.WriteFile("/notes.txt", "hello")

	listing, err := srv.Client().Directory(context.Background())
	if err != nil {
		t.Fatalf("directory: %v", err)
	}
	if listing.Path != "/" {
		t.Fatalf("path = %q", listing.Path)
	}
	if len(listing.Items) != 2 {
		t.Fatalf("expected 2 items, got %+v", listing.Items)
	}
	home, notes := listing.Items[0], listing.Items[1]
	if home.Name != "home" || !home.IsDir {
		t.Fatalf("unexpected first item: %+v", home)
	}
	if notes.Name != "notes.txt" || notes.IsDir || notes.Size != "5 B" || notes.Owner != "root" {
		t.Fatalf("unexpected second item: %+v", notes)
	}
	if home.Mode != "[d].rwxr-xr-x" || notes.Mode != "[-].rw-r--r--" {
		t.Fatalf("unexpected modes: %q %q", home.Mode, notes.Mode)
	}
	if notes.Created == "" || notes.Modified != "2024-01-01 00:00:00 UTC" {
		t.Fatalf("unexpected times: %+v", notes)
	}
}

func TestDirectoryToleratesMissingOptionalFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"path":"/","items":[{"name":"a","is_dir":false,"is_symlink":false}]}`)
	}))
	defer srv.Close()

	listing, err := remote.New(remote.Config{BaseURL: srv.URL}).Directory(context.Background())
	if err != nil {
		t.Fatalf("directory: %v", err)
	}
	e := listing.Items[0]
	if e.Mode != "" || e.Created != "" || e.Modified != "" || e.Size != "" {
		t.Fatalf("expected empty optional fields, got %+v", e)
	}
}

func TestDirectoryNonSuccessStatusIsNetworkError(t *testing.T) {
	srv := remotetest.New(t)
	srv.FailDirectory(http.StatusInternalServerError)

	_, err := srv.Client().Directory(context.Background())
	var netErr *remote.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if netErr.Status != http.StatusInternalServerError {
		t.Fatalf("status = %d", netErr.Status)
	}
}

func TestChangeDirectoryFailureBodyIsResult(t *testing.T) {
	srv := remotetest.New(t)

	res, err := srv.Client().ChangeDirectory(context.Background(), "missing")
	if err != nil {
		t.Fatalf("cd should not be a transport error: %v", err)
	}
	if res.Success || res.Output != "cd: no such directory: missing" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestChangeDirectorySendsJSONString(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(b, &got); err != nil {
			t.Errorf("body is not a JSON string: %s", b)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing request id header")
		}
		_, _ = w.Write([]byte(`{"success":true,"output":"/my dir"}`))
	}))
	defer srv.Close()

	res, err := remote.New(remote.Config{BaseURL: srv.URL + "/"}).ChangeDirectory(context.Background(), "my dir")
	if err != nil {
		t.Fatalf("cd: %v", err)
	}
	if got != "my dir" || !res.Success || res.Output != "/my dir" {
		t.Fatalf("got target %q result %+v", got, res)
	}
}

func TestExecuteSendsEmptyArgsArray(t *testing.T) {
	srv := remotetest.New(t)

	res, err := srv.Client().Execute(context.Background(), "pwd", nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !res.Success || res.Output != "/" {
		t.Fatalf("unexpected result: %+v", res)
	}
	calls := srv.Calls()
	if len(calls) != 1 || calls[0].Cmd != "pwd" || calls[0].Args == nil {
		t.Fatalf("unexpected calls: %+v", calls)
	}
}

func TestExecuteUndecodableErrorIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := remote.New(remote.Config{BaseURL: srv.URL}).Execute(context.Background(), "ls", nil)
	var netErr *remote.NetworkError
	if !errors.As(err, &netErr) || netErr.Status != http.StatusBadGateway {
		t.Fatalf("expected 502 NetworkError, got %v", err)
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := remote.New(remote.Config{BaseURL: url}).Directory(context.Background())
	var netErr *remote.NetworkError
	if !errors.As(err, &netErr) || netErr.Status != 0 {
		t.Fatalf("expected transport NetworkError, got %v", err)
	}
}

func TestSizeAcceptsStringOrNumber(t *testing.T) {
	var items []remote.Entry
	raw := `[{"name":"a","size":"1.5 KB"},{"name":"b","size":2048},{"name":"c"}]`
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if items[0].Size != "1.5 KB" || items[1].Size != "2.0 KiB" || items[2].Size != "" {
		t.Fatalf("unexpected sizes: %q %q %q", items[0].Size, items[1].Size, items[2].Size)
	}
}
