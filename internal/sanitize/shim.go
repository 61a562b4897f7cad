package sanitize

import (
	"regexp"
	"strings"
)

// Drawer trigger labels toggled by the shim script.
const (
	OpenLabel  = "Open"
	CloseLabel = "Close"
)

// ShimStyle is inserted before </head>. It hides announcement bars, keeps
// the hero visible without its animation scripts, and styles the fake
// overlay and drawers.
const ShimStyle = `<style id="storepreview-shim">
.announcement-bar,.announcement-bar-section,#shopify-section-announcement-bar,.shopify-section-group-header-group.announcement-bar-section{display:none!important}
.banner,.hero,.slideshow,.image-with-text,.scroll-trigger,.banner__content,.banner__box{opacity:1!important;visibility:visible!important;transform:none!important;animation:none!important}
#storepreview-overlay{position:fixed;inset:0;width:100vw;height:100vh;background:rgba(0,0,0,.5);z-index:900;display:none}
#storepreview-overlay.is-visible{display:block}
.section-header,.shopify-section-header,header.header{position:relative;z-index:1000!important}
.search-modal.storepreview-open,details-modal.storepreview-open .search-modal,#search-drawer.storepreview-open,predictive-search.storepreview-open{display:block!important;visibility:visible!important;opacity:1!important;position:fixed;top:0;left:0;right:0;z-index:1001}
cart-drawer.storepreview-open,#CartDrawer.storepreview-open,.cart-drawer.storepreview-open,#cart-drawer.storepreview-open{display:block!important;visibility:visible!important;opacity:1!important;position:fixed;top:0;right:0;height:100vh;max-width:400px;width:100%;transform:none!important;z-index:1001}
</style>`

// ShimScript is inserted before </body>. It fakes the search and cart
// drawers with two independent flags and one shared overlay.
const ShimScript = `<script id="storepreview-shim-script">
(function () {
  var OPEN_LABEL = "` + OpenLabel + `";
  var CLOSE_LABEL = "` + CloseLabel + `";
  var OPEN_CLASS = "storepreview-open";
  var state = { search: false, cart: false };
  var drawers = {
    search: { triggers: 'summary[aria-haspopup="dialog"],[data-search-toggle],a[href$="/search"],button[aria-controls*="search" i]', drawer: 'details-modal,.search-modal,#search-drawer,predictive-search' },
    cart: { triggers: '#cart-icon-bubble,[data-cart-toggle],a[href$="/cart"],button[aria-controls*="cart" i]', drawer: 'cart-drawer,#CartDrawer,.cart-drawer,#cart-drawer' }
  };

  function ready(fn) {
    if (document.readyState === "loading") {
      document.addEventListener("DOMContentLoaded", fn);
    } else {
      fn();
    }
  }

  ready(function () {
    var overlay = document.getElementById("storepreview-overlay");
    if (!overlay) {
      overlay = document.createElement("div");
      overlay.id = "storepreview-overlay";
      document.body.appendChild(overlay);
    }

    function label(trigger, open) {
      var el = trigger.querySelector("[data-drawer-label]");
      if (el) {
        el.textContent = open ? CLOSE_LABEL : OPEN_LABEL;
      }
    }

    function render() {
      Object.keys(drawers).forEach(function (key) {
        var open = state[key];
        document.querySelectorAll(drawers[key].drawer).forEach(function (el) {
          el.classList.toggle(OPEN_CLASS, open);
          if (open) {
            el.setAttribute("open", "");
          } else {
            el.removeAttribute("open");
          }
        });
        document.querySelectorAll(drawers[key].triggers).forEach(function (t) {
          label(t, open);
        });
      });
      overlay.classList.toggle("is-visible", state.search || state.cart);
    }

    Object.keys(drawers).forEach(function (key) {
      document.querySelectorAll(drawers[key].triggers).forEach(function (t) {
        t.addEventListener("click", function (e) {
          e.preventDefault();
          e.stopPropagation();
          state[key] = !state[key];
          render();
        });
      });
    });

    overlay.addEventListener("click", function () {
      state.search = false;
      state.cart = false;
      render();
    });

    render();
  });
})();
</script>`

var (
	headClosePattern = regexp.MustCompile(`(?i)</head\s*>`)
	bodyClosePattern = regexp.MustCompile(`(?i)</body\s*>`)
)

// InjectShim inserts ShimStyle before the first </head> and ShimScript
// before the last </body>. Missing tags fall back to prepending the style
// and appending the script.
func InjectShim(doc string) string {
	if loc := headClosePattern.FindStringIndex(doc); loc != nil {
		doc = doc[:loc[0]] + ShimStyle + doc[loc[0]:]
	} else {
		doc = ShimStyle + doc
	}

	locs := bodyClosePattern.FindAllStringIndex(doc, -1)
	if len(locs) == 0 {
		return doc + ShimScript
	}
	last := locs[len(locs)-1]
	var b strings.Builder
	b.Grow(len(doc) + len(ShimScript))
	b.WriteString(doc[:last[0]])
	b.WriteString(ShimScript)
	b.WriteString(doc[last[0]:])
	return b.String()
}
