//go:build integration

package rodhost_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bow/domwait/rodhost"
	"github.com/bow/domwait/wait"
)

// testPage inserts comment and text anchors after 100ms, then appends #late and removes #spinner
// after 300ms.
const testPage = `<html><body>
<div id="spinner"></div>
<script>
setTimeout(() => {
  document.body.appendChild(document.createComment(""));
  document.body.appendChild(document.createTextNode("loading"));
}, 100);
setTimeout(() => {
  const p = document.createElement("p");
  p.id = "late";
  document.body.appendChild(p);
  document.getElementById("spinner").remove();
}, 300);
</script>
</body></html>`

func openPage(t *testing.T) *rodhost.Page {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testPage)
	}))
	t.Cleanup(ts.Close)

	u, err := launcher.New().Headless(true).Launch()
	require.NoError(t, err, "failed to launch browser")

	browser := rod.New().ControlURL(u)
	require.NoError(t, browser.Connect())
	t.Cleanup(func() { _ = browser.Close() })

	page, err := browser.Page(proto.TargetCreateTarget{URL: ts.URL})
	require.NoError(t, err)
	require.NoError(t, page.WaitLoad())

	return rodhost.New(page, rodhost.WithLogger(zaptest.NewLogger(t)))
}

func TestPage_Integration(t *testing.T) {
	for _, strategy := range []wait.Strategy{
		wait.Interval{Timeout: 10 * time.Second, Poll: 50 * time.Millisecond},
		wait.Observer{Timeout: 10 * time.Second},
	} {
		strategy := strategy

		t.Run(fmt.Sprintf("%T", strategy), func(t *testing.T) {
			p := openPage(t)
			w := wait.New[*rod.Element](p)

			spinner, found, err := p.QuerySelector(p.Document(), "#spinner")
			require.NoError(t, err)
			require.True(t, found)

			el, found, err := w.SelectElement("p#late", strategy)
			require.NoError(t, err)
			require.True(t, found)
			id, err := el.Attribute("id")
			require.NoError(t, err)
			require.Equal(t, "late", *id)

			detached, err := w.WaitForDetachment(spinner, strategy)
			require.NoError(t, err)
			require.True(t, detached)

			_, found, err = w.SelectElement("#never", wait.Observer{Timeout: 300 * time.Millisecond})
			require.NoError(t, err)
			require.False(t, found)
		})
	}
}
