package bridge

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"yunshu/internal/config"
	"yunshu/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDocker struct {
	calls   [][]string
	inspect string // inspect output; "" means inspect fails
	failRun bool
}

func (f *fakeDocker) run(_ context.Context, name string, args ...string) ([]byte, error) {
	call := append([]string{name}, args...)
	f.calls = append(f.calls, call)

	switch args[0] {
	case "inspect":
		if f.inspect == "" {
			return nil, fmt.Errorf("no such container")
		}
		return []byte(f.inspect), nil
	case "run":
		if f.failRun {
			return nil, fmt.Errorf("image pull failed")
		}
		return []byte("abc123"), nil
	default:
		return nil, nil
	}
}

func newTestBridge(t *testing.T, fake *fakeDocker) *Bridge {
	t.Helper()
	cfg := config.DefaultConfig()
	logger, _ := logging.NewTestLogger()
	b := New(&cfg, logger)
	b.run = fake.run
	b.open = func(string) error { return nil }
	return b
}

func TestEnsureContainer_AlreadyRunning(t *testing.T) {
	fake := &fakeDocker{inspect: "true\n"}
	b := newTestBridge(t, fake)

	require.NoError(t, b.EnsureContainer(context.Background()))
	require.Len(t, fake.calls, 1)
	assert.Equal(t, "inspect", fake.calls[0][1])
}

func TestEnsureContainer_StartsStopped(t *testing.T) {
	fake := &fakeDocker{inspect: "false\n"}
	b := newTestBridge(t, fake)

	require.NoError(t, b.EnsureContainer(context.Background()))
	require.Len(t, fake.calls, 2)
	assert.Equal(t, []string{"docker", "start", "yunshu-web"}, fake.calls[1])
}

func TestEnsureContainer_CreatesMissing(t *testing.T) {
	fake := &fakeDocker{}
	b := newTestBridge(t, fake)
	b.cfg.WebImage = "yunshu/web:latest"

	require.NoError(t, b.EnsureContainer(context.Background()))
	require.Len(t, fake.calls, 2)
	created := strings.Join(fake.calls[1], " ")
	assert.Contains(t, created, "docker run -d")
	assert.Contains(t, created, "--name yunshu-web")
	assert.Contains(t, created, "-p 8765:8765")
	assert.Contains(t, created, "yunshu/web:latest")
}

func TestEnsureContainer_MissingWithoutImage(t *testing.T) {
	fake := &fakeDocker{}
	b := newTestBridge(t, fake)
	b.cfg.WebImage = ""

	err := b.EnsureContainer(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no image configured")
}

func TestEnsureContainer_CreateFails(t *testing.T) {
	fake := &fakeDocker{failRun: true}
	b := newTestBridge(t, fake)
	b.cfg.WebImage = "yunshu/web:latest"

	err := b.EnsureContainer(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create container")
}

func TestAwaitHTTP_Answers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	port := srv.Listener.Addr().(*net.TCPAddr).Port
	fake := &fakeDocker{}
	b := newTestBridge(t, fake)
	b.cfg.Port = port

	require.NoError(t, b.AwaitHTTP(context.Background(), 5*time.Second))
}

func TestAwaitHTTP_Timeout(t *testing.T) {
	fake := &fakeDocker{}
	b := newTestBridge(t, fake)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	b.cfg.Port = ln.Addr().(*net.TCPAddr).Port
	ln.Close() // port free again, nothing answers

	err = b.AwaitHTTP(context.Background(), 1200*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not answering")
}

func TestOpenUI(t *testing.T) {
	fake := &fakeDocker{}
	b := newTestBridge(t, fake)

	var opened string
	b.open = func(url string) error {
		opened = url
		return nil
	}
	require.NoError(t, b.OpenUI())
	assert.Equal(t, "http://127.0.0.1:8765", opened)
}
