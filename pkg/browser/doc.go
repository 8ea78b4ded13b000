// Package browser drives the headless browser session used to read the
// creator's profile and latest post.
//
// Session implements the page lifecycle on top of a Driver. The production
// driver is backed by go-rod; tests plug in a fake.
//
// Basic usage:
//
//	session := browser.NewSession(browser.RodLauncher(opts), tiktok.BaseURL, log)
//	defer session.Close()
//
//	if err := session.OpenProfile(ctx, "creator"); err != nil {
//		return err
//	}
//	postURL, err := session.ResolveLatestPostURL()
//	...
//	snap, err := session.OpenPost(ctx, postURL)
package browser
