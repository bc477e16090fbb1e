package echoapi

import (
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
)

const flashCookie = "flash"

// Page is a server-driven page: the client renders Component with Props.
type Page struct {
	Component string   `json:"component"`
	Props     echo.Map `json:"props"`
	URL       string   `json:"url"`
}

// render responds with a Page, consuming any pending flash message.
func render(ctx echo.Context, component string, props echo.Map) error {
	if props == nil {
		props = echo.Map{}
	}
	props["flash"] = popFlash(ctx)
	return ctx.JSON(http.StatusOK, Page{
		Component: component,
		Props:     props,
		URL:       ctx.Request().URL.RequestURI(),
	})
}

// redirectWithFlash answers with a 303 to path and leaves msg for the next page render.
func redirectWithFlash(ctx echo.Context, path, msg string) error {
	ctx.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return ctx.Redirect(http.StatusSeeOther, path)
}

func popFlash(ctx echo.Context) map[string]string {
	flash := map[string]string{}
	cookie, err := ctx.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return flash
	}
	if msg, err := url.QueryUnescape(cookie.Value); err == nil && msg != "" {
		flash["success"] = msg
	}
	ctx.SetCookie(&http.Cookie{
		Name:    flashCookie,
		Value:   "",
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})
	return flash
}
