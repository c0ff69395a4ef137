package pipeline

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viewident/viewident/internal/identity"
)

type wrapperView struct {
	identity.Meta
	Raw any
}

func newRequest() *http.Request {
	return &http.Request{Method: http.MethodGet, URL: &url.URL{Path: "/"}}
}

func TestStoreKey_HTTPResolvesRequest(t *testing.T) {
	res := identity.NewResolver()
	raw := newRequest()
	view := &wrapperView{Meta: identity.NewMeta(), Raw: raw}

	key, err := StoreKey(HTTP(view), res)
	require.NoError(t, err)
	assert.Same(t, raw, key)

	// A second stage wrapping the same request lands on the same key.
	other := &wrapperView{Meta: identity.NewMeta(), Raw: raw}

	key2, err := StoreKey(HTTP(other), res)
	require.NoError(t, err)
	assert.Same(t, key, key2)
}

func TestStoreKey_EventUsesPayloadDirectly(t *testing.T) {
	res := identity.NewResolver()
	payload := &struct{ Topic string }{Topic: "orders"}

	key, err := StoreKey(Event(payload), res)
	require.NoError(t, err)
	assert.Same(t, payload, key)
}

func TestStoreKey_RPCUsesCallContext(t *testing.T) {
	res := identity.NewResolver()
	callCtx := &struct{ Method string }{Method: "Sum"}

	key, err := StoreKey(RPC(callCtx), res)
	require.NoError(t, err)
	assert.Same(t, callCtx, key)
}

func TestStoreKey_ResolverThirdArgument(t *testing.T) {
	res := identity.NewResolver()
	shared := &struct{ User string }{User: "u"}

	key, err := StoreKey(ResolverCall("parent", map[string]any{"id": 1}, shared, "info"), res)
	require.NoError(t, err)
	assert.Same(t, shared, key)
}

func TestStoreKey_ResolverTooFewArguments(t *testing.T) {
	res := identity.NewResolver()

	_, err := StoreKey(ResolverCall("parent", "args"), res)
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestStoreKey_UnsupportedKindIsLoud(t *testing.T) {
	res := identity.NewResolver()

	_, err := StoreKey(Unknown(), res)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestStoreKey_NilExecution(t *testing.T) {
	res := identity.NewResolver()

	_, err := StoreKey(nil, res)
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}

// kindOnly claims a supported kind but implements no accessor.
type kindOnly struct {
	kind Kind
}

func (e kindOnly) StageKind() Kind { return e.kind }

func TestStoreKey_ShapeMismatch(t *testing.T) {
	res := identity.NewResolver()

	for _, kind := range []Kind{KindHTTP, KindEvent, KindRPC, KindResolver} {
		_, err := StoreKey(kindOnly{kind: kind}, res)
		assert.ErrorIs(t, err, ErrUnsupportedKind, kind.String())
	}
}

func TestIsolatedKey_FreshPerCall(t *testing.T) {
	a := IsolatedKey()
	b := IsolatedKey()

	assert.NotSame(t, a, b)

	// Nothing written under one isolated key is visible under another.
	store := identity.NewStore("test")
	store.Set(a, "x")

	_, ok := store.Get(b)
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "http", KindHTTP.String())
	assert.Equal(t, "event", KindEvent.String())
	assert.Equal(t, "rpc", KindRPC.String())
	assert.Equal(t, "resolver", KindResolver.String())
	assert.Equal(t, "unknown", KindUnknown.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
