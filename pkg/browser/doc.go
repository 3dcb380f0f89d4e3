// Package browser wraps a single Playwright page behind the primitives the
// scraping pipeline uses.
//
// # Architecture
//
//  1. SessionManager: starts Playwright and launches the Chromium session
//  2. Session: one browser, context and page; implements Driver
//  3. Driver: navigation, selector waits, clicks, typing, DOM snapshots,
//     scrolling, cookies and request observation
//
// Components never hold on to a Driver beyond the call that receives it.
//
// # Waiting
//
// Every blocking primitive takes a WaitPolicy. An indefinite policy maps to
// a Playwright timeout of 0 and lets the operator finish manual steps in the
// headed browser. A bounded policy fails with ErrWaitTimeout.
//
// # Network observation
//
// RequestWatch captures the first request whose URL matches a predicate:
//
//	watch := browser.NewRequestWatch(matcher.Match)
//	if err := watch.Arm(driver); err != nil { ... }
//	defer watch.Cancel()
//	_ = driver.Click(browser.ClickOptions{Selector: button})
//	url, err := watch.Wait(ctx, browser.Bounded(10*time.Second))
//
// Arm must run before the action that triggers the request.
//
// # Lazy-loaded pages
//
// ScrollUntilStable scrolls on a fixed interval until the document height
// stops changing, bounded by ScrollOptions.MaxDuration.
package browser
