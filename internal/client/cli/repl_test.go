package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	arg   string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	f.calls = append(f.calls, "register")
	return nil
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) AddGig(ctx context.Context) error { f.calls = append(f.calls, "add"); return nil }
func (f *fakeExec) EditGig(ctx context.Context, id string) error {
	f.calls = append(f.calls, "edit "+id)
	return nil
}
func (f *fakeExec) List(ctx context.Context) error   { f.calls = append(f.calls, "list"); return nil }
func (f *fakeExec) Show(ctx context.Context, id string) error {
	f.calls = append(f.calls, "show")
	f.arg = id
	return nil
}
func (f *fakeExec) DeleteGig(ctx context.Context, id string) error {
	f.calls = append(f.calls, "delete")
	f.arg = id
	return nil
}
func (f *fakeExec) AddVenue(ctx context.Context) error {
	f.calls = append(f.calls, "addvenue")
	return nil
}
func (f *fakeExec) Venues(ctx context.Context) error {
	f.calls = append(f.calls, "venues")
	return nil
}
func (f *fakeExec) AddPerson(ctx context.Context) error {
	f.calls = append(f.calls, "addperson")
	return nil
}
func (f *fakeExec) People(ctx context.Context) error {
	f.calls = append(f.calls, "people")
	return nil
}
func (f *fakeExec) Stats(ctx context.Context) error { f.calls = append(f.calls, "stats"); return nil }
func (f *fakeExec) Pints(ctx context.Context) error { f.calls = append(f.calls, "pints"); return nil }
func (f *fakeExec) Sync(ctx context.Context) error  { f.calls = append(f.calls, "sync"); return nil }
func (f *fakeExec) AttachPhoto(ctx context.Context, id string, path string) error {
	f.calls = append(f.calls, "photo "+id+" "+path)
	return nil
}
func (f *fakeExec) SavePhotos(ctx context.Context, id string) error {
	f.calls = append(f.calls, "photos "+id)
	return nil
}

func silencePrintln(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"add",
		"list",
		"show g123",
		"edit g123",
		"photo g123 pic.jpg",
		"photos g123",
		"pints",
		"sync",
		"foobar",
		"exit",
	}, "\n"))

	exec := &fakeExec{loggedIn: false}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	require.Equal(t, []string{"login", "add", "list", "show", "edit g123", "photo g123 pic.jpg", "photos g123", "pints", "sync"}, exec.calls)
	require.Equal(t, "g123", exec.arg)
}

func TestRunREPL_ShowWithoutArgDoesNotDispatch(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader("show\ndelete\nexit\n")
	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	require.Empty(t, exec.calls)
}

func TestRunREPL_ExitsOnEOF(t *testing.T) {
	silencePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("")))
	require.Empty(t, exec.calls)
}
