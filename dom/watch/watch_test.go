package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
	"golang.org/x/net/html"

	"github.com/bow/domwait/wait"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func page(body string) []byte {
	return []byte("<html><body>" + body + "</body></html>")
}

// writePage writes an HTML page with the given body to path.
func writePage(t *testing.T, path, body string) {
	t.Helper()

	require.NoError(t, os.WriteFile(path, page(body), 0o644))
}

// rewriteLater replaces the page at path after delay. The test waits for it before finishing.
func rewriteLater(t *testing.T, path, body string, delay time.Duration) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		defer close(done)
		time.Sleep(delay)
		if err := os.WriteFile(path, page(body), 0o644); err != nil {
			t.Errorf("failed rewriting %q: %s", path, err)
		}
	}()
	t.Cleanup(func() { <-done })
}

func openPage(t *testing.T, body string) (*File, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "page.html")
	writePage(t, path, body)

	f, err := Open(path, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, f.Close()) })

	return f, path
}

func TestOpenMissing(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "nope.html"))
	require.Error(t, err)
}

func TestReload(t *testing.T) {
	t.Parallel()

	f, path := openPage(t, `<div id="v1"></div>`)
	doc := f.Document()
	old, found, err := doc.QuerySelector(doc.Document(), "#v1")
	require.NoError(t, err)
	require.True(t, found)

	writePage(t, path, `<div id="v2"></div>`)
	require.NoError(t, f.Reload())

	_, found, _ = doc.QuerySelector(doc.Document(), "#v2")
	require.True(t, found)
	connected, _ := doc.IsConnected(old)
	require.False(t, connected, "nodes of the previous version are detached")
}

func TestReloadClosed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "page.html")
	writePage(t, path, "")
	f, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
	require.ErrorIs(t, f.Reload(), ErrClosed)
}

func TestWaitForRewrite(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		name     string
		strategy wait.Strategy
	}{
		{"interval", wait.Interval{Timeout: 5 * time.Second, Poll: 20 * time.Millisecond}},
		{"observer", wait.Observer{Timeout: 5 * time.Second}},
	}

	for _, test := range tests {
		strategy := test.strategy
		t.Run(test.name+"/appear", func(t *testing.T) {
			t.Parallel()

			f, path := openPage(t, `<p>loading</p>`)
			w := wait.New[*html.Node](f.Document())

			rewriteLater(t, path, `<p id="ready">done</p>`, 100*time.Millisecond)

			el, found, err := w.SelectElement("p#ready", strategy)
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, "done", el.FirstChild.Data)
		})

		t.Run(test.name+"/detach", func(t *testing.T) {
			t.Parallel()

			f, path := openPage(t, `<div class="spinner"></div>`)
			doc := f.Document()
			w := wait.New[*html.Node](doc)
			spinner, found, _ := doc.QuerySelector(doc.Document(), ".spinner")
			require.True(t, found)

			rewriteLater(t, path, `<main></main>`, 100*time.Millisecond)

			detached, err := w.WaitForDetachment(spinner, strategy)
			require.NoError(t, err)
			require.True(t, detached)
		})
	}
}

func TestIgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	f, path := openPage(t, `<div id="v1"></div>`)
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.html"), []byte("x"), 0o644))

	doc := f.Document()
	w := wait.New[*html.Node](doc)
	_, found, err := w.SelectElement("#v2", wait.Observer{Timeout: 200 * time.Millisecond})
	require.NoError(t, err)
	require.False(t, found)
}
