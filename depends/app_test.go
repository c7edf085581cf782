package depends_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bool64/ctxd"
	"github.com/bool64/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggest/mockish"
	"github.com/swaggest/mockish/depends"
	"github.com/swaggest/mockish/nethttp"
	"github.com/swaggest/mockish/response"
	"github.com/swaggest/usecase/status"
)

type greetingKey struct{}

func greetingHandler(a *depends.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := a.Resolve(r, greetingKey{})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(map[string]interface{}{"greeting": v}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// newTree creates root app with sub app at /sub and sub-sub app at /sub/deep.
func newTree() (root, sub, deep *depends.App) {
	root = depends.NewApp()
	sub = depends.NewApp()
	deep = depends.NewApp()

	for _, a := range []*depends.App{root, sub, deep} {
		a.Provide(greetingKey{}, depends.Value("hello"))
		a.Get("/greeting", greetingHandler(a))
	}

	sub.Mount("/deep", deep)
	root.Mount("/sub", sub)

	return root, sub, deep
}

func expectGreeting(t *testing.T, c *httpmock.Client, uri, greeting string) {
	t.Helper()

	c.Reset().WithMethod(http.MethodGet).WithURI(uri)
	require.NoError(t, c.ExpectResponseStatus(http.StatusOK))
	require.NoError(t, c.ExpectResponseBody([]byte(`{"greeting":"`+greeting+`"}`)))
}

func TestPatch(t *testing.T) {
	root, sub, deep := newTree()

	srv := httptest.NewServer(root)
	defer srv.Close()

	c := httpmock.NewClient(srv.URL)
	uris := []string{"/greeting", "/sub/greeting", "/sub/deep/greeting"}

	for _, uri := range uris {
		expectGreeting(t, c, uri, "hello")
	}

	require.NoError(t, depends.Patch(depends.Overrides{greetingKey{}: depends.Value("patched")}, false, root))

	for _, uri := range uris {
		expectGreeting(t, c, uri, "patched")
	}

	for _, a := range []*depends.App{root, sub, deep} {
		assert.Len(t, a.Overrides(), 1)
	}

	require.NoError(t, depends.Remove([]interface{}{greetingKey{}}, root))

	for _, uri := range uris {
		expectGreeting(t, c, uri, "hello")
	}
}

func TestPatch_subAppOnly(t *testing.T) {
	root, sub, deep := newTree()

	require.NoError(t, depends.Patch(depends.Overrides{greetingKey{}: depends.Value("patched")}, false, sub))

	assert.Empty(t, root.Overrides())
	assert.Len(t, sub.Overrides(), 1)
	assert.Len(t, deep.Overrides(), 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	v, err := root.Resolve(req, greetingKey{})
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	v, err = deep.Resolve(req, greetingKey{})
	require.NoError(t, err)
	assert.Equal(t, "patched", v)
}

func TestClear(t *testing.T) {
	root, sub, deep := newTree()

	type otherKey struct{}

	require.NoError(t, depends.Patch(depends.Overrides{
		greetingKey{}: depends.Value("patched"),
		otherKey{}:    depends.Value(123),
	}, false, root))

	assert.Len(t, deep.Overrides(), 2)

	require.NoError(t, depends.Remove([]interface{}{otherKey{}, "missing"}, root))
	assert.Len(t, deep.Overrides(), 1)

	require.NoError(t, depends.Clear(root))

	for _, a := range []*depends.App{root, sub, deep} {
		assert.Empty(t, a.Overrides())
	}

	// Nil overrides clear regardless of remove flag.
	require.NoError(t, depends.Patch(depends.Overrides{otherKey{}: depends.Value(1)}, false, root))
	require.NoError(t, depends.Patch(nil, true, root))
	assert.Empty(t, deep.Overrides())
}

func TestPatch_notApp(t *testing.T) {
	root, _, _ := newTree()

	var nilApp *depends.App

	for _, h := range []http.Handler{http.NewServeMux(), nilApp, nil} {
		err := depends.Patch(depends.Overrides{greetingKey{}: depends.Value("patched")}, false, root, h)
		require.Error(t, err)
		assert.ErrorIs(t, err, depends.ErrNotApp)
		assert.Equal(t, status.InvalidArgument, mockish.StatusOf(err))
	}

	// Failed patch leaves apps intact.
	assert.Empty(t, root.Overrides())

	assert.ErrorIs(t, depends.Clear(http.NotFoundHandler()), depends.ErrNotApp)
}

func TestApp_Resolve_unknown(t *testing.T) {
	a := depends.NewApp()

	_, err := a.Resolve(httptest.NewRequest(http.MethodGet, "/", nil), greetingKey{})
	assert.ErrorIs(t, err, depends.ErrUnknownDependency)
	assert.Equal(t, status.NotFound, mockish.StatusOf(err))

	// Override does not need a provider.
	require.NoError(t, depends.Patch(depends.Overrides{greetingKey{}: depends.Value("patched")}, false, a))

	v, err := a.Resolve(httptest.NewRequest(http.MethodGet, "/", nil), greetingKey{})
	require.NoError(t, err)
	assert.Equal(t, "patched", v)
}

func TestApp_Provide_nil(t *testing.T) {
	assert.Panics(t, func() {
		depends.NewApp().Provide(greetingKey{}, nil)
	})
}

func TestApp_SubApps(t *testing.T) {
	root, sub, deep := newTree()

	root.Mount("/plain", http.NotFoundHandler())

	assert.Equal(t, []*depends.App{sub}, root.SubApps())
	assert.Equal(t, []*depends.App{deep}, sub.SubApps())
	assert.Empty(t, deep.SubApps())
}

type clientKey struct{}

type roundTripper struct {
	stub *mockish.Stub
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return mockish.As[*http.Response](rt.stub.Call(req.URL.Path))
}

func TestPatch_upstream(t *testing.T) {
	upstream, upstreamURL := httpmock.NewServer()
	defer upstream.Close()

	app := depends.NewApp()
	app.Provide(clientKey{}, depends.Value(http.DefaultClient))
	app.Get("/weather", func(w http.ResponseWriter, r *http.Request) {
		client, err := mockish.As[*http.Client](app.Resolve(r, clientKey{}))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)

			return
		}

		resp, err := client.Get(upstreamURL + "/weather")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)

			return
		}

		defer func() {
			_ = resp.Body.Close() //nolint:errcheck
		}()

		w.Header().Set("Content-Type", resp.Header.Get("Content-Type"))
		w.WriteHeader(resp.StatusCode)
		_, _ = io.Copy(w, resp.Body) //nolint:errcheck
	})

	srv := httptest.NewServer(app)
	defer srv.Close()

	c := httpmock.NewClient(srv.URL)

	upstream.Expect(httpmock.Expectation{
		Method:         http.MethodGet,
		RequestURI:     "/weather",
		ResponseHeader: map[string]string{"Content-Type": "application/json"},
		ResponseBody:   []byte(`{"temp":20}`),
	})

	c.WithMethod(http.MethodGet).WithURI("/weather")
	require.NoError(t, c.ExpectResponseStatus(http.StatusOK))
	require.NoError(t, c.ExpectResponseBody([]byte(`{"temp":20}`)))
	require.NoError(t, upstream.ExpectationsWereMet())

	fixture, err := nethttp.FromJSON(map[string]int{"temp": 25})
	require.NoError(t, err)

	rt := mockish.MustNew(mockish.WithMethod("RoundTrip"), mockish.ReturnCall(func(_ ...interface{}) (interface{}, error) {
		return fixture.Clone().Response, nil
	}))

	require.NoError(t, depends.Patch(depends.Overrides{
		clientKey{}: depends.Value(&http.Client{Transport: roundTripper{stub: rt}}),
	}, false, app))

	c.Reset().WithMethod(http.MethodGet).WithURI("/weather")
	require.NoError(t, c.ExpectResponseStatus(http.StatusOK))
	require.NoError(t, c.ExpectResponseBody([]byte(`{"temp":25}`)))

	rt.AssertCalled(t, "RoundTrip", "/weather")

	unavailable, err := nethttp.NewResponse(
		response.WithStatusCode(http.StatusServiceUnavailable),
		response.WithContent(`{"error":"maintenance"}`),
		response.WithContentType(response.ContentTypeJSON),
	)
	require.NoError(t, err)

	rt = mockish.MustNew(mockish.WithMethod("RoundTrip"), mockish.ReturnOnce(unavailable.Response))
	require.NoError(t, depends.Patch(depends.Overrides{
		clientKey{}: depends.Value(&http.Client{Transport: roundTripper{stub: rt}}),
	}, false, app))

	c.Reset().WithMethod(http.MethodGet).WithURI("/weather")
	require.NoError(t, c.ExpectResponseStatus(http.StatusServiceUnavailable))
	require.NoError(t, c.ExpectResponseBody([]byte(`{"error":"maintenance"}`)))

	c.Reset().WithMethod(http.MethodGet).WithURI("/weather")
	require.NoError(t, c.ExpectResponseStatus(http.StatusBadGateway))

	require.NoError(t, depends.Clear(app))

	upstream.Expect(httpmock.Expectation{
		Method:         http.MethodGet,
		RequestURI:     "/weather",
		ResponseHeader: map[string]string{"Content-Type": "application/json"},
		ResponseBody:   []byte(`{"temp":21}`),
	})

	c.Reset().WithMethod(http.MethodGet).WithURI("/weather")
	require.NoError(t, c.ExpectResponseBody([]byte(`{"temp":21}`)))
	require.NoError(t, upstream.ExpectationsWereMet())
}

type logEntry struct {
	msg           string
	keysAndValues []interface{}
}

type logRecorder struct {
	debug []logEntry
}

var _ ctxd.Logger = &logRecorder{}

func (l *logRecorder) Debug(_ context.Context, msg string, keysAndValues ...interface{}) {
	l.debug = append(l.debug, logEntry{msg: msg, keysAndValues: keysAndValues})
}

func (l *logRecorder) Info(_ context.Context, _ string, _ ...interface{}) {}

func (l *logRecorder) Important(_ context.Context, _ string, _ ...interface{}) {}

func (l *logRecorder) Warn(_ context.Context, _ string, _ ...interface{}) {}

func (l *logRecorder) Error(_ context.Context, _ string, _ ...interface{}) {}

func TestWithLogger(t *testing.T) {
	l := &logRecorder{}
	a := depends.NewApp(depends.WithLogger(l))

	require.NoError(t, depends.Patch(depends.Overrides{greetingKey{}: depends.Value("patched")}, false, a))
	require.NoError(t, depends.Clear(a))

	require.Len(t, l.debug, 2)
	assert.Equal(t, "dependency overrides patched", l.debug[0].msg)
	assert.Equal(t, []interface{}{"keys", 1, "remove", false, "active", 1}, l.debug[0].keysAndValues)
	assert.Equal(t, []interface{}{"keys", 0, "remove", false, "active", 0}, l.debug[1].keysAndValues)
}

func TestPatch_cycle(t *testing.T) {
	a := depends.NewApp()
	b := depends.NewApp()

	a.Mount("/b", b)
	b.Mount("/a", a)

	require.NoError(t, depends.Patch(depends.Overrides{greetingKey{}: depends.Value(1)}, false, a))
	assert.Len(t, b.Overrides(), 1)

	require.NoError(t, depends.Clear(a, b))
	assert.Empty(t, a.Overrides())
	assert.Empty(t, b.Overrides())
}
