package index

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
)

// fakeMFS is an in-memory stand-in for the store node's files API: enough of
// /api/v0 to exercise publish and lookup against real HTTP round trips.
type fakeMFS struct {
	server *httptest.Server

	mutex    sync.Mutex
	files     map[string][]byte
	dirs      map[string]bool
	revision  int
	publishes int
}

func newFakeMFS(t *testing.T) *fakeMFS {
	t.Helper()

	store := &fakeMFS{
		files: make(map[string][]byte),
		dirs:  map[string]bool{"/": true},
	}
	store.server = httptest.NewServer(http.HandlerFunc(store.handle))
	t.Cleanup(store.server.Close)
	return store
}

func (f *fakeMFS) URL() string {
	return f.server.URL
}

func (f *fakeMFS) fileNames() []string {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	names := make([]string, 0, len(f.files))
	for name := range f.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f *fakeMFS) contents(path string) ([]byte, bool) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	payload, ok := f.files[path]
	return payload, ok
}

func (f *fakeMFS) publishCount() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.publishes
}

func (f *fakeMFS) handle(writer http.ResponseWriter, request *http.Request) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	args := request.URL.Query()["arg"]
	command := strings.TrimPrefix(request.URL.Path, "/api/v0/")

	switch command {
	case "files/stat":
		f.handleStat(writer, args)
	case "files/mkdir":
		for dir := range pathAndParents(args[0]) {
			f.dirs[dir] = true
		}
		writer.Write([]byte("{}"))
	case "files/write":
		payload, err := multipartPayload(request)
		if err != nil {
			failMFS(writer, err.Error())
			return
		}
		f.files[args[0]] = payload
		for dir := range pathAndParents(parentDir(args[0])) {
			f.dirs[dir] = true
		}
		f.revision++
		writer.Write([]byte("{}"))
	case "files/read":
		payload, ok := f.files[args[0]]
		if !ok {
			failMFS(writer, "file does not exist")
			return
		}
		writer.Write(payload)
	case "files/mv":
		payload, ok := f.files[args[0]]
		if !ok {
			failMFS(writer, "file does not exist")
			return
		}
		if _, exists := f.files[args[1]]; exists {
			failMFS(writer, "directory already has entry by that name")
			return
		}
		delete(f.files, args[0])
		f.files[args[1]] = payload
		f.revision++
		writer.Write([]byte("{}"))
	case "files/rm":
		if _, ok := f.files[args[0]]; !ok {
			failMFS(writer, "file does not exist")
			return
		}
		delete(f.files, args[0])
		f.revision++
		writer.Write([]byte("{}"))
	case "version":
		writer.Write([]byte(`{"Version":"0.24.0","Commit":"test"}`))
	case "name/publish":
		f.publishes++
		fmt.Fprintf(writer, `{"Name":"k51-test-key","Value":%q}`, args[0])
	default:
		failMFS(writer, "unknown command "+command)
	}
}

func (f *fakeMFS) handleStat(writer http.ResponseWriter, args []string) {
	path := args[0]
	if payload, ok := f.files[path]; ok {
		fmt.Fprintf(writer, `{"Hash":"QmFile%d","Size":%d,"Type":"file"}`, f.revision, len(payload))
		return
	}
	if f.dirs[path] || f.hasChildren(path) {
		fmt.Fprintf(writer, `{"Hash":"QmDir%d","Size":0,"Type":"directory"}`, f.revision)
		return
	}
	failMFS(writer, "file does not exist")
}

func (f *fakeMFS) hasChildren(path string) bool {
	prefix := strings.TrimSuffix(path, "/") + "/"
	for name := range f.files {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func failMFS(writer http.ResponseWriter, message string) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusInternalServerError)
	fmt.Fprintf(writer, `{"Message":%q,"Code":0,"Type":"error"}`, message)
}

func parentDir(path string) string {
	index := strings.LastIndex(path, "/")
	if index <= 0 {
		return "/"
	}
	return path[:index]
}

func pathAndParents(path string) map[string]struct{} {
	dirs := make(map[string]struct{})
	current := path
	for current != "" && current != "/" {
		dirs[current] = struct{}{}
		current = parentDir(current)
	}
	dirs["/"] = struct{}{}
	return dirs
}

func multipartPayload(request *http.Request) ([]byte, error) {
	reader, err := request.MultipartReader()
	if err != nil {
		return nil, err
	}
	part, err := reader.NextPart()
	if err != nil {
		return nil, err
	}
	defer part.Close()
	return io.ReadAll(part)
}
