package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/grantcarthew/storagectl/internal/cdp"
	"github.com/grantcarthew/storagectl/internal/cdp/cdptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestDomain(t *testing.T) (*Domain, *cdp.Session, *cdptest.Conn) {
	t.Helper()
	conn := cdptest.NewConn()
	s := cdp.NewSession(conn)
	t.Cleanup(func() { s.Close("test done") })
	return New(s), s, conn
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	t.Cleanup(cancel)
	return ctx
}

func paramsOf(t *testing.T, conn *cdptest.Conn, method string) map[string]json.RawMessage {
	t.Helper()
	raw, ok := conn.LastParams(method)
	require.True(t, ok, "no request for %s", method)
	var fields map[string]json.RawMessage
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &fields))
	}
	return fields
}

func TestGetUsageAndQuota(t *testing.T) {
	t.Parallel()

	d, _, conn := newTestDomain(t)
	conn.Result("Storage.getUsageAndQuota", map[string]any{
		"usage":          100,
		"quota":          1000,
		"overrideActive": false,
		"usageBreakdown": []map[string]any{
			{"storageType": "cookies", "usage": 10},
		},
	})

	got, err := d.GetUsageAndQuota(testContext(t), "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, 100.0, got.Usage)
	assert.Equal(t, 1000.0, got.Quota)
	assert.False(t, got.OverrideActive)
	require.Len(t, got.UsageBreakdown, 1)
	assert.Equal(t, StorageTypeCookies, got.UsageBreakdown[0].StorageType)
	assert.Equal(t, 10.0, got.UsageBreakdown[0].Usage)

	usage, ok := got.Breakdown(StorageTypeCookies)
	assert.True(t, ok)
	assert.Equal(t, 10.0, usage)

	params := paramsOf(t, conn, "Storage.getUsageAndQuota")
	assert.Equal(t, `"https://example.com"`, string(params["origin"]))
}

func TestGetUsageAndQuota_MalformedResult(t *testing.T) {
	t.Parallel()

	d, s, conn := newTestDomain(t)
	conn.Result("Storage.getUsageAndQuota", map[string]any{"usage": 100})

	_, err := d.GetUsageAndQuota(testContext(t), "https://example.com")
	assert.True(t, errors.Is(err, cdp.ErrMalformedResponse), "got %v", err)
	assert.True(t, errors.Is(err, cdp.ErrMissingField), "got %v", err)
	assert.NoError(t, s.Err())
}

func TestGetUsageAndQuota_ProtocolError(t *testing.T) {
	t.Parallel()

	d, _, conn := newTestDomain(t)
	conn.Handle("Storage.getUsageAndQuota", func(json.RawMessage) (any, *cdp.ProtocolError) {
		return nil, &cdp.ProtocolError{Code: -32000, Message: "Not a valid origin"}
	})

	_, err := d.GetUsageAndQuota(testContext(t), "nope")
	var perr *cdp.ProtocolError
	require.True(t, errors.As(err, &perr), "got %v", err)
	assert.Equal(t, -32000, perr.Code)
	assert.Equal(t, "Not a valid origin", perr.Message)
}

func TestOverrideQuotaForOrigin_OptionalSize(t *testing.T) {
	t.Parallel()

	d, _, conn := newTestDomain(t)
	conn.Result("Storage.overrideQuotaForOrigin", nil)
	ctx := testContext(t)

	require.NoError(t, d.OverrideQuotaForOrigin(ctx, "https://example.com", cdp.None[float64]()))
	params := paramsOf(t, conn, "Storage.overrideQuotaForOrigin")
	assert.NotContains(t, params, "quotaSize")

	require.NoError(t, d.OverrideQuotaForOrigin(ctx, "https://example.com", cdp.Some(0.0)))
	params = paramsOf(t, conn, "Storage.overrideQuotaForOrigin")
	assert.Equal(t, "0", string(params["quotaSize"]))
}

func TestClearDataForOrigin(t *testing.T) {
	t.Parallel()

	d, _, conn := newTestDomain(t)
	conn.Result("Storage.clearDataForOrigin", nil)

	err := d.ClearDataForOrigin(testContext(t), "https://example.com",
		[]StorageType{StorageTypeCookies, StorageTypeCacheStorage})
	require.NoError(t, err)

	params := paramsOf(t, conn, "Storage.clearDataForOrigin")
	assert.Equal(t, `"cookies,cache_storage"`, string(params["storageTypes"]))
}

func TestGetCookies(t *testing.T) {
	t.Parallel()

	d, _, conn := newTestDomain(t)
	conn.Result("Storage.getCookies", json.RawMessage(`{"cookies":[`+wireCookie+`]}`))
	ctx := testContext(t)

	cookies, err := d.GetCookies(ctx, cdp.None[string]())
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.NotContains(t, paramsOf(t, conn, "Storage.getCookies"), "browserContextId")

	_, err = d.GetCookies(ctx, cdp.Some("CTX1"))
	require.NoError(t, err)
	assert.Equal(t, `"CTX1"`, string(paramsOf(t, conn, "Storage.getCookies")["browserContextId"]))
}

func TestSetCookies(t *testing.T) {
	t.Parallel()

	d, _, conn := newTestDomain(t)
	conn.Result("Storage.setCookies", nil)

	err := d.SetCookies(testContext(t), []CookieParam{{Name: "a", Value: "1", Domain: cdp.Some("example.com")}}, cdp.None[string]())
	require.NoError(t, err)

	params := paramsOf(t, conn, "Storage.setCookies")
	assert.JSONEq(t, `[{"name":"a","value":"1","domain":"example.com"}]`, string(params["cookies"]))
	assert.NotContains(t, params, "browserContextId")
}

func TestTrustTokens(t *testing.T) {
	t.Parallel()

	d, _, conn := newTestDomain(t)
	conn.Result("Storage.getTrustTokens", map[string]any{
		"tokens": []map[string]any{{"issuerOrigin": "https://issuer.example", "count": 3}},
	})
	conn.Result("Storage.clearTrustTokens", map[string]any{"didDeleteTokens": true})
	ctx := testContext(t)

	tokens, err := d.GetTrustTokens(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "https://issuer.example", tokens[0].IssuerOrigin)
	assert.Equal(t, 3.0, tokens[0].Count)

	deleted, err := d.ClearTrustTokens(ctx, "https://issuer.example")
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestGetStorageKeyForFrame(t *testing.T) {
	t.Parallel()

	d, _, conn := newTestDomain(t)
	conn.Result("Storage.getStorageKeyForFrame", map[string]any{"storageKey": "https://example.com/"})

	key, err := d.GetStorageKeyForFrame(testContext(t), "FRAME1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/", key)
	assert.Equal(t, `"FRAME1"`, string(paramsOf(t, conn, "Storage.getStorageKeyForFrame")["frameId"]))
}

func TestUnknownMethodFails(t *testing.T) {
	t.Parallel()

	d, _, _ := newTestDomain(t)

	_, err := d.Raw(testContext(t), "notARealMethod", nil)
	var perr *cdp.ProtocolError
	require.True(t, errors.As(err, &perr), "got %v", err)
	assert.Equal(t, -32601, perr.Code)
	assert.Contains(t, perr.Message, "Storage.notARealMethod")
}

func TestEvents_DeliveredByExactName(t *testing.T) {
	t.Parallel()

	d, _, conn := newTestDomain(t)
	conn.Result("Storage.trackCacheStorageForOrigin", nil)
	ctx := testContext(t)

	content := d.OnCacheStorageContentUpdated()
	defer content.Close()
	idbList := d.OnIndexedDBListUpdated()
	defer idbList.Close()

	require.NoError(t, conn.Emit(EventCacheStorageContentUpdated, map[string]any{
		"origin":    "https://example.com",
		"cacheName": "v1",
	}))
	// A command after the event guarantees the event has been dispatched.
	require.NoError(t, d.TrackCacheStorageForOrigin(ctx, "https://example.com"))

	evt, err := content.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", evt.Origin)
	assert.Equal(t, "v1", evt.CacheName)
	assert.False(t, evt.StorageKey.IsSet())

	short, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	_, err = idbList.Next(short)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEvents_DecodeFailureIsIsolated(t *testing.T) {
	t.Parallel()

	d, _, conn := newTestDomain(t)
	ctx := testContext(t)

	updates := d.OnIndexedDBContentUpdated()
	defer updates.Close()

	// Missing objectStoreName: dropped.
	require.NoError(t, conn.Emit(EventIndexedDBContentUpdated, map[string]any{
		"origin":       "https://example.com",
		"databaseName": "db",
	}))
	require.NoError(t, conn.Emit(EventIndexedDBContentUpdated, map[string]any{
		"origin":          "https://example.com",
		"storageKey":      "https://example.com/",
		"databaseName":    "db",
		"objectStoreName": "store",
	}))

	evt, err := updates.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "store", evt.ObjectStoreName)
	assert.Equal(t, "https://example.com/", evt.StorageKey.Or(""))
}

func TestEvents_EndWhenSessionCloses(t *testing.T) {
	t.Parallel()

	conn := cdptest.NewConn()
	s := cdp.NewSession(conn)
	d := New(s)

	list := d.OnCacheStorageListUpdated()
	require.NoError(t, s.Close("done"))

	n := 0
	for range list.All(context.Background()) {
		n++
	}
	assert.Zero(t, n)

	_, err := list.Next(context.Background())
	assert.ErrorIs(t, err, cdp.ErrSessionClosed)
}
