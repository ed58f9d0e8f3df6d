package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/g4biGTJS/vsport-elo/internal/platform/id"
	"github.com/g4biGTJS/vsport-elo/internal/platform/logging"
)

const (
	proxySessionCookie = "_psid"
	proxyMaxRedirects  = 15
	proxyMaxBodyBytes  = 20 << 20
)

// Headers that would break embedding the upstream widget in an iframe,
// plus hop-by-hop headers that must not be forwarded.
var proxyStripHeaders = map[string]struct{}{
	"X-Frame-Options":                     {},
	"Content-Security-Policy":             {},
	"Content-Security-Policy-Report-Only": {},
	"X-Content-Type-Options":              {},
	"Strict-Transport-Security":           {},
	"Transfer-Encoding":                   {},
	"Connection":                          {},
	"Keep-Alive":                          {},
	"Set-Cookie":                          {},
}

// sessionJar keeps upstream cookies server side, keyed by the proxy
// session ID and the cookie's host. The browser only ever sees _psid.
type sessionJar struct {
	mu   sync.Mutex
	jars map[string]map[string]map[string]string
}

func newSessionJar() *sessionJar {
	return &sessionJar{jars: make(map[string]map[string]map[string]string)}
}

func (j *sessionJar) cookieHeader(sid, host, parentDomain string) string {
	j.mu.Lock()
	defer j.mu.Unlock()

	byHost := j.jars[sid]
	if byHost == nil {
		return ""
	}
	merged := make(map[string]string)
	for name, value := range byHost[parentDomain] {
		merged[name] = value
	}
	for name, value := range byHost[host] {
		merged[name] = value
	}
	if len(merged) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(merged))
	for name, value := range merged {
		pairs = append(pairs, name+"="+value)
	}
	return strings.Join(pairs, "; ")
}

func (j *sessionJar) store(sid, host string, setCookies []string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	byHost := j.jars[sid]
	if byHost == nil {
		byHost = make(map[string]map[string]string)
		j.jars[sid] = byHost
	}
	for _, raw := range setCookies {
		parts := strings.Split(raw, ";")
		nameVal := strings.TrimSpace(parts[0])
		eq := strings.Index(nameVal, "=")
		if eq < 1 {
			continue
		}
		name := strings.TrimSpace(nameVal[:eq])
		value := strings.TrimSpace(nameVal[eq+1:])

		domain := host
		for _, attr := range parts[1:] {
			attr = strings.TrimSpace(attr)
			if len(attr) > 7 && strings.EqualFold(attr[:7], "domain=") {
				domain = strings.TrimPrefix(attr[7:], ".")
			}
		}
		jar := byHost[domain]
		if jar == nil {
			jar = make(map[string]string)
			byHost[domain] = jar
		}
		jar[name] = value
	}
}

// ProxyConfig tunes the rewriting proxy for the upstream widget pages.
type ProxyConfig struct {
	// AllowedHosts is the exact set of upstream hostnames the proxy
	// will fetch. Anything else is refused with 403.
	AllowedHosts []string
	// DefaultHost receives path-style requests (?path=...).
	DefaultHost string
	// RewriteDomain is the registrable domain whose URLs are rewritten
	// to flow back through the proxy, e.g. "aitcloud.de".
	RewriteDomain string
	Timeout       time.Duration
	Logger        *logging.Logger
}

// ReverseProxy serves same-origin copies of the upstream virtual-sports
// widget so it can be embedded in an iframe. HTML, CSS and JS bodies are
// rewritten so every upstream reference loops back through /proxy.
type ReverseProxy struct {
	allowed       map[string]struct{}
	defaultHost   string
	rewriteDomain string
	client        *http.Client
	timeout       time.Duration
	jar           *sessionJar
	ids           id.Generator
	logger        *logging.Logger

	absURLPattern   *regexp.Regexp
	attrURLPattern  *regexp.Regexp
	cssURLPattern   *regexp.Regexp
	jsURLPattern    *regexp.Regexp
	plainURLPattern *regexp.Regexp
	metaCSPPattern  *regexp.Regexp
	headPattern     *regexp.Regexp
}

func NewReverseProxy(cfg ProxyConfig) *ReverseProxy {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedHosts))
	for _, host := range cfg.AllowedHosts {
		host = strings.ToLower(strings.TrimSpace(host))
		if host != "" {
			allowed[host] = struct{}{}
		}
	}
	domain := regexp.QuoteMeta(cfg.RewriteDomain)

	return &ReverseProxy{
		allowed:       allowed,
		defaultHost:   cfg.DefaultHost,
		rewriteDomain: cfg.RewriteDomain,
		client: &http.Client{
			// Redirects are followed manually so each hop's cookies
			// land in the session jar.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		timeout: timeout,
		jar:     newSessionJar(),
		ids:     id.NewRandomGenerator(),
		logger:  logger,

		absURLPattern:   regexp.MustCompile(`(?i)(["'\x60(])\s*(https?://(?:[\w-]+\.)*` + domain + `)(/[^"'\x60\s)>]*)`),
		attrURLPattern:  regexp.MustCompile(`(?i)((?:href|src|action|data-src|data-href)\s*=\s*)(["'])(/[^"']*)(["'])`),
		cssURLPattern:   regexp.MustCompile(`(?i)url\(\s*(["']?)(/[^"')]+)(["']?)\s*\)`),
		jsURLPattern:    regexp.MustCompile(`(?i)(["'\x60])(https?://(?:[\w-]+\.)*` + domain + `)(/[^"'\x60\s)]*)`),
		plainURLPattern: regexp.MustCompile(`(?i)(https?://(?:[\w-]+\.)*` + domain + `)(/[^"'\s)]*)`),
		metaCSPPattern:  regexp.MustCompile(`(?i)<meta[^>]+http-equiv\s*=\s*["']content-security-policy["'][^>]*/?>`),
		headPattern:     regexp.MustCompile(`(?i)<head[^>]*>`),
	}
}

func (p *ReverseProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.ReverseProxy")
	defer span.End()

	sid := p.sessionID(w, r)

	target, err := p.targetURL(r)
	if err != nil {
		http.Error(w, "Proxy error: "+err.Error(), http.StatusBadGateway)
		return
	}
	if _, ok := p.allowed[strings.ToLower(target.Hostname())]; !ok {
		http.Error(w, "Forbidden host", http.StatusForbidden)
		return
	}

	result, err := p.fetch(ctx, sid, target.String(), 0)
	if err != nil {
		p.logger.WarnContext(ctx, "proxy fetch failed", "url", target.String(), "error", err)
		http.Error(w, "Proxy error: "+err.Error(), http.StatusBadGateway)
		return
	}

	for name, values := range result.header {
		if _, strip := proxyStripHeaders[http.CanonicalHeaderKey(name)]; strip {
			continue
		}
		for _, value := range values {
			w.Header().Add(name, value)
		}
	}
	w.Header().Set("X-Frame-Options", "ALLOWALL")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	contentType := strings.ToLower(result.header.Get("Content-Type"))
	switch {
	case strings.Contains(contentType, "text/html"):
		body := p.rewriteHTML(string(result.body), result.finalURL)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Del("Content-Length")
		w.WriteHeader(result.status)
		_, _ = io.WriteString(w, body)
	case strings.Contains(contentType, "css"):
		body := p.rewriteCSS(string(result.body))
		w.Header().Del("Content-Length")
		w.WriteHeader(result.status)
		_, _ = io.WriteString(w, body)
	case strings.Contains(contentType, "javascript"):
		body := p.rewriteJS(string(result.body))
		w.Header().Del("Content-Length")
		w.WriteHeader(result.status)
		_, _ = io.WriteString(w, body)
	default:
		w.WriteHeader(result.status)
		_, _ = w.Write(result.body)
	}
}

// sessionID reads the _psid cookie or mints one for new visitors.
func (p *ReverseProxy) sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(proxySessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	sid, err := p.ids.NewID()
	if err != nil {
		p.logger.Warn("mint proxy session id", "error", err)
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     proxySessionCookie,
		Value:    sid,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}

func (p *ReverseProxy) targetURL(r *http.Request) (*url.URL, error) {
	query := r.URL.Query()
	if raw := query.Get("url"); raw != "" {
		target, err := url.Parse(raw)
		if err != nil {
			return nil, crerr.Wrap(err, "parse target url")
		}
		return target, nil
	}

	path := strings.TrimLeft(query.Get("path"), "/")
	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)
	bb.WriteString("http://")
	bb.WriteString(p.defaultHost)
	bb.WriteString("/")
	bb.WriteString(path)

	extras := url.Values{}
	for key, values := range query {
		if key == "path" || key == "url" {
			continue
		}
		for _, value := range values {
			extras.Add(key, value)
		}
	}
	if encoded := extras.Encode(); encoded != "" {
		bb.WriteString("?")
		bb.WriteString(encoded)
	}
	return url.Parse(bb.String())
}

type proxyResult struct {
	status   int
	header   http.Header
	body     []byte
	finalURL string
}

func (p *ReverseProxy) fetch(ctx context.Context, sid, rawURL string, depth int) (proxyResult, error) {
	if depth > proxyMaxRedirects {
		return proxyResult{}, crerr.New("too many redirects")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return proxyResult{}, crerr.Wrap(err, "parse hop url")
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return proxyResult{}, crerr.Wrap(err, "build upstream request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/124 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "hu-HU,hu;q=0.9,en;q=0.8")
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("Referer", "http://"+p.defaultHost+"/")
	if cookies := p.jar.cookieHeader(sid, parsed.Hostname(), p.rewriteDomain); cookies != "" {
		req.Header.Set("Cookie", cookies)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return proxyResult{}, crerr.Wrap(err, "upstream request")
	}
	defer resp.Body.Close()

	if setCookies := resp.Header.Values("Set-Cookie"); len(setCookies) > 0 {
		p.jar.store(sid, parsed.Hostname(), setCookies)
	}

	switch resp.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		location := resp.Header.Get("Location")
		if location == "" {
			return proxyResult{}, crerr.New("redirect with no Location")
		}
		next, err := parsed.Parse(location)
		if err != nil {
			return proxyResult{}, crerr.Wrap(err, "parse redirect location")
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		return p.fetch(ctx, sid, next.String(), depth+1)
	}

	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)
	if _, err := io.Copy(bb, io.LimitReader(resp.Body, proxyMaxBodyBytes)); err != nil {
		return proxyResult{}, crerr.Wrap(err, "read upstream body")
	}
	body := append([]byte(nil), bb.B...)

	return proxyResult{
		status:   resp.StatusCode,
		header:   resp.Header.Clone(),
		body:     body,
		finalURL: rawURL,
	}, nil
}

func proxyPath(absolute string) string {
	return "/proxy?url=" + url.QueryEscape(absolute)
}

func (p *ReverseProxy) rewriteHTML(body, finalURL string) string {
	base, baseErr := url.Parse(finalURL)

	body = p.absURLPattern.ReplaceAllStringFunc(body, func(match string) string {
		sub := p.absURLPattern.FindStringSubmatch(match)
		return sub[1] + proxyPath(sub[2]+sub[3])
	})

	body = p.attrURLPattern.ReplaceAllStringFunc(body, func(match string) string {
		sub := p.attrURLPattern.FindStringSubmatch(match)
		path := sub[3]
		if sub[2] != sub[4] || baseErr != nil ||
			strings.HasPrefix(path, "/proxy") || strings.HasPrefix(path, "//") {
			return match
		}
		abs, err := base.Parse(path)
		if err != nil {
			return match
		}
		return sub[1] + sub[2] + proxyPath(abs.String()) + sub[4]
	})

	body = p.cssURLPattern.ReplaceAllStringFunc(body, func(match string) string {
		sub := p.cssURLPattern.FindStringSubmatch(match)
		path := sub[2]
		if sub[1] != sub[3] || baseErr != nil || strings.HasPrefix(path, "/proxy") {
			return match
		}
		abs, err := base.Parse(path)
		if err != nil {
			return match
		}
		return "url(" + sub[1] + proxyPath(abs.String()) + sub[3] + ")"
	})

	body = p.metaCSPPattern.ReplaceAllString(body, "")

	// Dynamic fetch/XHR calls inside the widget also need to loop back
	// through the proxy, so an interceptor goes in right after <head>.
	script := fmt.Sprintf(proxyInterceptorScript, finalURL, p.rewriteDomain)
	injected := false
	body = p.headPattern.ReplaceAllStringFunc(body, func(match string) string {
		if injected {
			return match
		}
		injected = true
		return match + script
	})
	return body
}

func (p *ReverseProxy) rewriteCSS(body string) string {
	return p.plainURLPattern.ReplaceAllStringFunc(body, func(match string) string {
		sub := p.plainURLPattern.FindStringSubmatch(match)
		return proxyPath(sub[1] + sub[2])
	})
}

func (p *ReverseProxy) rewriteJS(body string) string {
	return p.jsURLPattern.ReplaceAllStringFunc(body, func(match string) string {
		sub := p.jsURLPattern.FindStringSubmatch(match)
		return sub[1] + proxyPath(sub[2]+sub[3])
	})
}

const proxyInterceptorScript = `<script>
(function(){
  var _BASE = '%s';
  var _DOMAIN = '%s';
  function rewrite(url){
    if(!url || url.startsWith('data:') || url.startsWith('blob:') || url.startsWith('/proxy')) return url;
    try {
      var abs = new URL(url, _BASE).toString();
      if(abs.includes(_DOMAIN)) return '/proxy?url='+encodeURIComponent(abs);
    } catch(e){}
    return url;
  }
  var _fetch = window.fetch;
  window.fetch = function(input, init){
    if(typeof input === 'string') input = rewrite(input);
    else if(input && input.url) input = new Request(rewrite(input.url), input);
    return _fetch.call(this, input, init);
  };
  var _open = XMLHttpRequest.prototype.open;
  XMLHttpRequest.prototype.open = function(m, url){
    url = rewrite(url);
    return _open.apply(this, [m, url].concat([].slice.call(arguments,2)));
  };
})();
</script>`
