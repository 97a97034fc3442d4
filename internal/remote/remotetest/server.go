// Package remotetest serves an in-memory filesystem over the same HTTP/JSON
// surface as the real backend.
package remotetest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"ext2view/internal/remote"
)

type Call struct {
	Endpoint string
	Cmd      string
	Args     []string
}

type node struct {
	dir      bool
	link     string
	content  string
	children map[string]*node
}

type Server struct {
	URL string

	srv *httptest.Server

	mu        sync.Mutex
	root      *node
	cwd       string
	calls     []Call
	forced    map[string]remote.Result
	dirStatus int
}

func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		root:   &node{dir: true, children: map[string]*node{}},
		cwd:    "/",
		forced: map[string]remote.Result{},
	}
	r := chi.NewRouter()
	r.Get("/api/directory", s.handleDirectory)
	r.Post("/api/cd", s.handleCD)
	r.Post("/api/command", s.handleCommand)
	s.srv = httptest.NewServer(r)
	s.URL = s.srv.URL
	t.Cleanup(s.srv.Close)
	return s
}

func (s *Server) Client() *remote.Client {
	return remote.New(remote.Config{BaseURL: s.URL, HTTPClient: s.srv.Client()})
}

func (s *Server) Close() { s.srv.Close() }

func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

func (s *Server) ResetCalls() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

func (s *Server) Cwd() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cwd
}

// Force makes every later call of cmd answer with res without touching the
// tree.
func (s *Server) Force(cmd string, res remote.Result) {
	s.mu.Lock()
	s.forced[cmd] = res
	s.mu.Unlock()
}

// FailDirectory makes the listing endpoint answer with status; 0 restores it.
func (s *Server) FailDirectory(status int) {
	s.mu.Lock()
	s.dirStatus = status
	s.mu.Unlock()
}

func (s *Server) MkdirAll(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.root
	for _, part := range split(p) {
		next, ok := cur.children[part]
		if !ok {
			next = &node{dir: true, children: map[string]*node{}}
			cur.children[part] = next
		}
		cur = next
	}
}

func (s *Server) WriteFile(p, content string) {
	s.MkdirAll(path.Dir(p))
	s.mu.Lock()
	defer s.mu.Unlock()
	parent := s.lookup(path.Dir(p))
	parent.children[path.Base(p)] = &node{content: content}
}

func (s *Server) handleDirectory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Endpoint: "directory"})
	if s.dirStatus != 0 {
		http.Error(w, "listing unavailable", s.dirStatus)
		return
	}

	dir := s.lookup(s.cwd)
	items := []map[string]any{}
	if s.cwd != "/" {
		items = append(items, map[string]any{"name": "..", "is_dir": true, "is_symlink": false})
	}
	names := make([]string, 0, len(dir.children))
	for name := range dir.children {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		n := dir.children[name]
		item := map[string]any{
			"name":        name,
			"is_dir":      s.isDir(n),
			"is_symlink":  n.link != "",
			"owner":       "root",
			"mode":        modeFor(s.isDir(n), n.link != ""),
			"create_time": fixedTime,
			"edit_time":   fixedTime,
		}
		if n.dir {
			item["size"] = "4.0 KiB"
		} else {
			item["size"] = len(n.content)
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, map[string]any{"path": s.cwd, "items": items})
}

// fixedTime keeps listings deterministic for tests.
const fixedTime = "2024-01-01 00:00:00 UTC"

func modeFor(dir, link bool) string {
	switch {
	case link:
		return "[l].rwxrwxrwx"
	case dir:
		return "[d].rwxr-xr-x"
	default:
		return "[-].rw-r--r--"
	}
}

func (s *Server) handleCD(w http.ResponseWriter, r *http.Request) {
	var target string
	b, _ := io.ReadAll(r.Body)
	if err := json.Unmarshal(b, &target); err != nil {
		writeJSON(w, http.StatusBadRequest, remote.Result{Success: false, Output: "bad request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Endpoint: "cd", Args: []string{target}})
	if res, ok := s.forced["cd"]; ok {
		writeJSON(w, statusFor(res), res)
		return
	}
	if target == "" {
		target = "/"
	}
	abs := s.abs(target)
	n := s.resolve(abs)
	if n == nil || !s.isDir(n) {
		writeJSON(w, http.StatusBadRequest, remote.Result{Success: false, Output: "cd: no such directory: " + target})
		return
	}
	s.cwd = abs
	writeJSON(w, http.StatusOK, remote.Result{Success: true, Output: abs})
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Cmd  string   `json:"cmd"`
		Args []string `json:"args"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Args == nil {
		writeJSON(w, http.StatusBadRequest, remote.Result{Success: false, Output: "bad request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Endpoint: "command", Cmd: req.Cmd, Args: req.Args})
	res, ok := s.forced[req.Cmd]
	if !ok {
		res = s.run(req.Cmd, req.Args)
	}
	writeJSON(w, statusFor(res), res)
}

func (s *Server) run(cmd string, args []string) remote.Result {
	fail := func(format string, a ...any) remote.Result {
		return remote.Result{Success: false, Output: fmt.Sprintf(format, a...)}
	}
	need := func(n int) bool { return len(args) >= n }

	switch cmd {
	case "pwd":
		return remote.Result{Success: true, Output: s.cwd}
	case "ls":
		dir := s.lookup(s.cwd)
		names := make([]string, 0, len(dir.children))
		for name := range dir.children {
			names = append(names, name)
		}
		sort.Strings(names)
		return remote.Result{Success: true, Output: strings.Join(names, "  ")}
	case "echo":
		return remote.Result{Success: true, Output: strings.Join(args, " ")}
	case "cat":
		if !need(1) {
			return fail("cat: missing operand")
		}
		n := s.resolve(s.abs(args[0]))
		if n == nil || s.isDir(n) {
			return fail("cat: %s: no such file", args[0])
		}
		return remote.Result{Success: true, Output: s.follow(n).content}
	case "mkdir", "touch":
		if !need(1) {
			return fail("%s: missing operand", cmd)
		}
		parent, name, ok := s.parentOf(args[0])
		if !ok {
			return fail("%s: %s: no such directory", cmd, args[0])
		}
		if _, exists := parent.children[name]; exists {
			if cmd == "touch" {
				return remote.Result{Success: true, Output: "touched " + args[0]}
			}
			return fail("mkdir: %s: already exists", args[0])
		}
		if cmd == "mkdir" {
			parent.children[name] = &node{dir: true, children: map[string]*node{}}
			return remote.Result{Success: true, Output: "created " + args[0]}
		}
		parent.children[name] = &node{}
		return remote.Result{Success: true, Output: "touched " + args[0]}
	case "rm", "rmdir":
		if !need(1) {
			return fail("%s: missing operand", cmd)
		}
		parent, name, ok := s.parentOf(args[0])
		if !ok {
			return fail("%s: %s: no such file", cmd, args[0])
		}
		n, exists := parent.children[name]
		if !exists {
			return fail("%s: %s: no such file", cmd, args[0])
		}
		if cmd == "rm" && n.dir {
			return fail("rm: %s: is a directory", args[0])
		}
		if cmd == "rmdir" && (!n.dir || len(n.children) > 0) {
			return fail("rmdir: %s: not an empty directory", args[0])
		}
		delete(parent.children, name)
		return remote.Result{Success: true, Output: "removed " + args[0]}
	case "cp":
		if !need(2) {
			return fail("cp: missing operand")
		}
		src := s.resolve(s.abs(args[0]))
		if src == nil || s.isDir(src) {
			return fail("cp: %s: no such file", args[0])
		}
		parent, name, ok := s.parentOf(args[1])
		if !ok {
			return fail("cp: %s: no such directory", args[1])
		}
		parent.children[name] = &node{content: s.follow(src).content}
		return remote.Result{Success: true, Output: "copied " + args[0]}
	case "write":
		if !need(2) {
			return fail("write: missing content")
		}
		parent, name, ok := s.parentOf(args[0])
		if !ok {
			return fail("write: %s: no such directory", args[0])
		}
		if n, exists := parent.children[name]; exists && n.dir {
			return fail("write: %s: is a directory", args[0])
		}
		parent.children[name] = &node{content: strings.Join(args[1:], " ")}
		return remote.Result{Success: true, Output: "wrote " + args[0]}
	case "ln":
		if len(args) != 3 || args[0] != "-s" {
			return fail("ln: usage: ln -s <target> <name>")
		}
		parent, name, ok := s.parentOf(args[2])
		if !ok {
			return fail("ln: %s: no such directory", args[2])
		}
		if _, exists := parent.children[name]; exists {
			return fail("ln: %s: already exists", args[2])
		}
		parent.children[name] = &node{link: s.abs(args[1])}
		return remote.Result{Success: true, Output: "linked " + args[2]}
	default:
		return fail("%s: command not found", cmd)
	}
}

func (s *Server) abs(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = path.Join(s.cwd, p)
	}
	return path.Clean(p)
}

func (s *Server) lookup(p string) *node {
	cur := s.root
	for _, part := range split(p) {
		next, ok := cur.children[part]
		if !ok {
			return nil
		}
		cur = s.follow(next)
		if cur == nil {
			return nil
		}
	}
	return cur
}

func (s *Server) resolve(p string) *node {
	if p == "/" {
		return s.root
	}
	parent := s.lookup(path.Dir(p))
	if parent == nil || !parent.dir {
		return nil
	}
	return parent.children[path.Base(p)]
}

func (s *Server) parentOf(p string) (*node, string, bool) {
	abs := s.abs(p)
	parent := s.lookup(path.Dir(abs))
	if parent == nil || !parent.dir || abs == "/" {
		return nil, "", false
	}
	return parent, path.Base(abs), true
}

func (s *Server) follow(n *node) *node {
	for i := 0; n != nil && n.link != "" && i < 8; i++ {
		n = s.resolve(n.link)
	}
	return n
}

func (s *Server) isDir(n *node) bool {
	t := s.follow(n)
	return t != nil && t.dir
}

func split(p string) []string {
	var parts []string
	for _, part := range strings.Split(path.Clean("/"+p), "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func statusFor(res remote.Result) int {
	if res.Success {
		return http.StatusOK
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
