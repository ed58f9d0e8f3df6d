package httpapi

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g4biGTJS/vsport-elo/internal/platform/logging"
)

func newTestProxy(allowed ...string) *ReverseProxy {
	return NewReverseProxy(ProxyConfig{
		AllowedHosts:  allowed,
		DefaultHost:   "schedulerzrh.aitcloud.de",
		RewriteDomain: "aitcloud.de",
		Logger:        logging.NewNop(),
	})
}

func TestProxyForbiddenHost(t *testing.T) {
	t.Parallel()

	p := newTestProxy("schedulerzrh.aitcloud.de")

	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/proxy?url="+url.QueryEscape("https://evil.test/x"), nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Forbidden host")
}

func TestProxyServesAllowedHostAndStripsHeaders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("X-Custom", "kept")
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	hostname := host[:strings.LastIndex(host, ":")]
	p := newTestProxy(hostname)

	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/proxy?url="+url.QueryEscape(srv.URL+"/page"), nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
	assert.Equal(t, "ALLOWALL", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "kept", rec.Header().Get("X-Custom"))
}

func TestProxyMintsSessionCookie(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	p := newTestProxy(host[:strings.LastIndex(host, ":")])

	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/proxy?url="+url.QueryEscape(srv.URL), nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, proxySessionCookie, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)

	// A request that already carries the cookie gets no new one.
	req := httptest.NewRequest(http.MethodGet, "/proxy?url="+url.QueryEscape(srv.URL), nil)
	req.AddCookie(&http.Cookie{Name: proxySessionCookie, Value: cookies[0].Value})
	rec = httptest.NewRecorder()
	p.ServeHTTP(rec, req)
	assert.Empty(t, rec.Result().Cookies())
}

func TestProxyFollowsRedirectsAndReplaysCookies(t *testing.T) {
	t.Parallel()

	var sawCookie string
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "upstream_session", Value: "abc"})
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		sawCookie = r.Header.Get("Cookie")
		_, _ = w.Write([]byte("landed"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	p := newTestProxy(host[:strings.LastIndex(host, ":")])

	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/proxy?url="+url.QueryEscape(srv.URL+"/start"), nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "landed", rec.Body.String())
	assert.Contains(t, sawCookie, "upstream_session=abc")
}

func TestProxyUpstreamFailureIs502(t *testing.T) {
	t.Parallel()

	p := newTestProxy("127.0.0.1")

	// Nothing listens on this port.
	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/proxy?url="+url.QueryEscape("http://127.0.0.1:1/x"), nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Proxy error")
}

func TestProxyTargetURLFromPath(t *testing.T) {
	t.Parallel()

	p := newTestProxy("schedulerzrh.aitcloud.de")

	req := httptest.NewRequest(http.MethodGet, "/proxy?path=/widgets/app.js&v=3", nil)
	target, err := p.targetURL(req)
	require.NoError(t, err)
	assert.Equal(t, "schedulerzrh.aitcloud.de", target.Hostname())
	assert.Equal(t, "/widgets/app.js", target.Path)
	assert.Equal(t, "v=3", target.RawQuery)
}

func TestRewriteHTML(t *testing.T) {
	t.Parallel()

	p := newTestProxy("schedulerzrh.aitcloud.de")
	body := `<html><head></head><body>
	<a href="https://vfscigaming.aitcloud.de/app">abs</a>
	<img src="/static/logo.png">
	<a href="/proxy?url=x">already proxied</a>
	<div style="background:url('/bg.png')"></div>
	<meta http-equiv="content-security-policy" content="default-src 'self'">
	</body></html>`

	out := p.rewriteHTML(body, "http://schedulerzrh.aitcloud.de/page")

	assert.Contains(t, out, `href="/proxy?url=`+url.QueryEscape("https://vfscigaming.aitcloud.de/app"))
	assert.Contains(t, out, `src="/proxy?url=`+url.QueryEscape("http://schedulerzrh.aitcloud.de/static/logo.png"))
	assert.Contains(t, out, `url('/proxy?url=`+url.QueryEscape("http://schedulerzrh.aitcloud.de/bg.png"))
	assert.Contains(t, out, `href="/proxy?url=x"`, "already proxied links stay untouched")
	assert.NotContains(t, out, "content-security-policy")
	assert.Contains(t, out, "XMLHttpRequest.prototype.open", "interceptor script must be injected")
	assert.Less(t, strings.Index(out, "<head>"), strings.Index(out, "XMLHttpRequest"), "script goes right after head")
}

func TestRewriteCSSAndJS(t *testing.T) {
	t.Parallel()

	p := newTestProxy("schedulerzrh.aitcloud.de")

	css := `body { background: url(https://vfscigaming.aitcloud.de/bg.png); }`
	outCSS := p.rewriteCSS(css)
	assert.Contains(t, outCSS, "/proxy?url="+url.QueryEscape("https://vfscigaming.aitcloud.de/bg.png"))

	js := `fetch("https://schedulerzrh.aitcloud.de/api/feed");var other="https://elsewhere.test/x";`
	outJS := p.rewriteJS(js)
	assert.Contains(t, outJS, `"/proxy?url=`+url.QueryEscape("https://schedulerzrh.aitcloud.de/api/feed"))
	assert.Contains(t, outJS, `"https://elsewhere.test/x"`, "foreign hosts stay untouched")
}

func TestSessionJarParentDomainCookies(t *testing.T) {
	t.Parallel()

	jar := newSessionJar()
	jar.store("sid1", "schedulerzrh.aitcloud.de", []string{
		"scoped=1; Path=/",
		"shared=2; Domain=.aitcloud.de; Path=/",
	})

	// The sibling host sees the parent-domain cookie but not the scoped one.
	header := jar.cookieHeader("sid1", "vfscigaming.aitcloud.de", "aitcloud.de")
	assert.Contains(t, header, "shared=2")
	assert.NotContains(t, header, "scoped=1")

	header = jar.cookieHeader("sid1", "schedulerzrh.aitcloud.de", "aitcloud.de")
	assert.Contains(t, header, "scoped=1")
	assert.Contains(t, header, "shared=2")

	assert.Empty(t, jar.cookieHeader("other-sid", "schedulerzrh.aitcloud.de", "aitcloud.de"))
}
