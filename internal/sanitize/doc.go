// Package sanitize rewrites a captured storefront page into a static,
// embeddable preview document.
//
// All passes work on the raw document text with pattern matching rather than
// a parsed DOM. A DOM round trip would re-serialize the whole page and change
// markup the preview never needed to touch, so the passes only cut or
// rewrite the spans they match. The price is that tag boundaries must be
// discoverable by pattern; malformed or adversarial markup is out of scope.
//
// # Passes
//
//   - Strip: drops alternate/hreflang links, noscript blocks, chat widget
//     custom elements, and tracking scripts classified by a pattern Table
//   - Normalize: makes root-relative and protocol-relative URLs absolute and
//     pins a <base> element as the first child of <head>
//   - InjectShim: appends the constant CSS and script that fake the search
//     and cart drawers once the preview is loaded in an iframe
//
// # Script classification
//
// Every <script> element is matched against the Table in fixed priority:
// keep patterns, then remove patterns, then a fallback for scripts matching
// neither. Keep always wins, so a theme asset under a tracking-sounding path
// survives. The remove list is intentionally broad ("analytics", "redirect");
// a false positive only costs a preview some behaviour.
//
// # Usage
//
//	s, err := sanitize.New()
//	if err != nil {
//	    return err
//	}
//	out, stats := s.Sanitize(raw, origin)
package sanitize
