// Package logo turns a remote company-logo URL into inline image data.
//
// A Resolver walks an ordered list of strategies and returns the first
// success:
//
//	inline data URL  -> returned as-is, no network
//	ProxyStrategy    -> same-origin backend proxy returning {"data_url": ...}
//	FetchStrategy    -> direct GET, retried once without credentials
//	ElementStrategy  -> browser <img> load re-encoded through a canvas
//
// Every attempt runs under its own timeout and recovers its own panics. When
// nothing works Resolve returns nil and the document shows a placeholder box.
// Resolution never fails the surrounding generation.
package logo
