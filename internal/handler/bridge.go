package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// BridgeHandler serves the endpoints the embedded UI and companion
// mobile app discover the server through.
type BridgeHandler struct {
	Version string
}

// NewBridgeHandler constructs a BridgeHandler.
func NewBridgeHandler(version string) *BridgeHandler {
	return &BridgeHandler{Version: version}
}

// Banner handles GET /: a small identity payload so a client probing the
// LAN can tell this is an Easy Bill server.
func (h *BridgeHandler) Banner(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"app":     "easybill",
		"version": h.Version,
	})
}

// authCallbackPage relays the activation token from the vendor's browser
// redirect into the locally running app. The token arrives in the query
// string; the page hands it to the opener window and closes itself.
const authCallbackPage = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Easy Bill</title></head>
<body>
<p>Activation received. You can close this window.</p>
<script>
(function () {
  var params = new URLSearchParams(window.location.search);
  var token = params.get("token") || "";
  var key = params.get("key") || "";
  if (window.opener) {
    window.opener.postMessage({ type: "easybill-activation", token: token, key: key }, "*");
    window.close();
  }
})();
</script>
</body></html>
`

// AuthCallback handles GET /auth/callback.
func (h *BridgeHandler) AuthCallback(c echo.Context) error {
	return c.HTML(http.StatusOK, authCallbackPage)
}
