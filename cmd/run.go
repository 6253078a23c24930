// Copyright (c) 2019-2022 Wibowo Arindrarto <contact@arindrarto.dev>
// SPDX-License-Identifier: BSD-3-Clause

package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/bow/domwait/dom/watch"
	"github.com/bow/domwait/rodhost"
	"github.com/bow/domwait/wait"
)

var errTimeout = errors.New("reached timeout limit")

// run opens the document named by the settings and waits on all the given selectors. It returns
// the process exit code.
func run(out io.Writer, m mode, selectors []string, s settings, logger *zap.Logger) int {
	pr := newPrinter(out, selectors, s.isQuiet)

	strategy, err := wait.NewStrategy(s.variant, s.timeout, s.pollFreq)
	if err != nil {
		pr.error(err)
		return 1
	}

	switch {
	case s.file != "" && s.url != "":
		pr.error(fmt.Errorf("only one of --file or --url may be given"))
		return 1

	case s.file != "":
		f, err := watch.Open(s.file, watch.WithLogger(logger))
		if err != nil {
			pr.error(err)
			return 1
		}
		defer f.Close()

		doc := f.Document()
		w := wait.New[*html.Node](doc, wait.WithLogger(logger))
		return waitAll[*html.Node](pr, doc, w, m, selectors, strategy, s.effectiveTimeout())

	case s.url != "":
		page, closeBrowser, err := openPage(s.url, s.headless)
		if err != nil {
			pr.error(err)
			return 1
		}
		defer closeBrowser()

		host := rodhost.New(page, rodhost.WithLogger(logger))
		w := wait.New[*rod.Element](host, wait.WithLogger(logger))
		return waitAll[*rod.Element](pr, host, w, m, selectors, strategy, s.effectiveTimeout())

	default:
		pr.error(fmt.Errorf("one of --file or --url must be given"))
		return 1
	}
}

// waitAll waits on every selector concurrently, reporting each as it resolves.
func waitAll[N comparable](
	pr *printer,
	tree wait.Tree[N],
	w *wait.Waiter[N],
	m mode,
	selectors []string,
	strategy wait.Strategy,
	timeout time.Duration,
) int {

	var (
		g         errgroup.Group
		startTime = time.Now()
	)

	for _, selector := range selectors {
		selector := selector
		pr.waiting(selector, timeout)

		g.Go(func() error {
			ok, err := waitOne(tree, w, m, selector, strategy)
			if err == nil && !ok {
				err = fmt.Errorf("%w of %s", errTimeout, timeout)
			}
			if err != nil {
				pr.failed(selector, err)
				return err
			}
			pr.ready(selector, time.Since(startTime))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 1
	}
	pr.done(time.Since(startTime))

	return 0
}

// waitOne runs a single wait. For detachment, the selector is resolved to its current element
// first; a selector matching nothing counts as already detached.
func waitOne[N comparable](
	tree wait.Tree[N],
	w *wait.Waiter[N],
	m mode,
	selector string,
	strategy wait.Strategy,
) (bool, error) {

	if m == appear {
		_, found, err := w.SelectElement(selector, strategy)
		return found, err
	}

	el, found, err := tree.QuerySelector(tree.Document(), selector)
	if err != nil || !found {
		return !found, err
	}

	return w.WaitForDetachment(el, strategy)
}

// openPage launches a browser and loads url in a new page. The returned function closes the
// browser.
func openPage(url string, headless bool) (*rod.Page, func(), error) {
	controlURL, err := launcher.New().Headless(headless).Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, nil, fmt.Errorf("connect to browser: %w", err)
	}
	closeBrowser := func() { _ = browser.Close() }

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err == nil {
		err = page.WaitLoad()
	}
	if err != nil {
		closeBrowser()
		return nil, nil, fmt.Errorf("open %s: %w", url, err)
	}

	return page, closeBrowser, nil
}
