package commands

import (
	"bytes"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aanand-mishra/student-records/internal/client"
	"github.com/aanand-mishra/student-records/internal/http/router"
	"github.com/aanand-mishra/student-records/internal/storage/jsonfile"
)

func newServer(t *testing.T) string {
	t.Helper()
	store, err := jsonfile.Open(filepath.Join(t.TempDir(), "students.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(router.New(store, log, router.Options{}))
	t.Cleanup(srv.Close)
	return srv.URL
}

// run executes studentsctl with args against server and returns stdout.
func run(t *testing.T, server, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--server", server}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestListAndFilter(t *testing.T) {
	server := newServer(t)

	out, err := run(t, server, "", "list")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"ROLL", "ST001", "ST002", "2 student(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, server, "", "list", "--grade", "A+")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Sara Khan") || strings.Contains(out, "Ali Ahmed") {
		t.Errorf("filtered list:\n%s", out)
	}

	out, err = run(t, server, "", "list", "--search", "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No students found.") {
		t.Errorf("empty list:\n%s", out)
	}
}

func TestAddGetUpdateDelete(t *testing.T) {
	server := newServer(t)

	out, err := run(t, server, "", "add",
		"--name", "Hina Raza", "--roll", "ST010", "--age", "22",
		"--grade", "B", "--email", "hina@example.com", "--course", "Physics")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "id 3") {
		t.Errorf("add output: %s", out)
	}

	out, err = run(t, server, "", "update", "3", "--grade", "A")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Student updated successfully") {
		t.Errorf("update output: %s", out)
	}

	out, err = run(t, server, "", "get", "3")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Hina Raza", "ST010", "Physics", "N/A"} {
		if !strings.Contains(out, want) {
			t.Errorf("get output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, server, "n\n", "delete", "3")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Aborted.") {
		t.Errorf("declined delete output: %s", out)
	}

	out, err = run(t, server, "y\n", "delete", "3")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Student deleted successfully") {
		t.Errorf("delete output: %s", out)
	}

	_, err = run(t, server, "", "delete", "3", "--yes")
	if !client.IsNotFound(err) {
		t.Errorf("second delete err = %v, want not found", err)
	}
}

func TestAddRequiresFlags(t *testing.T) {
	server := newServer(t)

	if _, err := run(t, server, "", "add", "--name", "Only Name"); err == nil {
		t.Fatal("expected missing flag error")
	}
}

func TestUpdateWithoutFields(t *testing.T) {
	server := newServer(t)

	_, err := run(t, server, "", "update", "1")
	if err == nil || !strings.Contains(err.Error(), "nothing to update") {
		t.Errorf("err = %v", err)
	}
}

func TestInvalidID(t *testing.T) {
	server := newServer(t)

	if _, err := run(t, server, "", "get", "abc"); err == nil {
		t.Error("expected invalid id error")
	}
}

func TestStats(t *testing.T) {
	server := newServer(t)

	out, err := run(t, server, "", "stats")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Total students", "Total courses", "Grade A", "Grade A+"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
}

func TestResolveServer(t *testing.T) {
	t.Setenv(ServerEnv, "")
	if got := resolveServer(""); got != client.DefaultBaseURL {
		t.Errorf("default = %q", got)
	}

	t.Setenv(ServerEnv, "http://env:1")
	if got := resolveServer(""); got != "http://env:1" {
		t.Errorf("env = %q", got)
	}
	if got := resolveServer("http://flag:2"); got != "http://flag:2" {
		t.Errorf("flag = %q", got)
	}
}
