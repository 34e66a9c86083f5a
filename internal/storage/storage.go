// Package storage is the typed binding for the CDP Storage domain.
package storage

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/grantcarthew/storagectl/internal/cdp"
)

// Session is what the binding needs from the session layer.
type Session interface {
	cdp.Caller
	cdp.Subscriber
}

// Domain exposes the Storage commands and events over a session.
type Domain struct {
	s Session
}

// New returns the Storage domain bound to s.
func New(s Session) *Domain {
	return &Domain{s: s}
}

// UsageAndQuota is the result of GetUsageAndQuota.
type UsageAndQuota struct {
	Usage          float64        `json:"usage"`
	Quota          float64        `json:"quota"`
	OverrideActive bool           `json:"overrideActive"`
	UsageBreakdown []UsageForType `json:"usageBreakdown"`
}

func (r *UsageAndQuota) UnmarshalJSON(data []byte) error {
	f, err := cdp.DecodeFields(data)
	if err != nil {
		return err
	}
	if err := cdp.Required(f, "usage", &r.Usage); err != nil {
		return err
	}
	if err := cdp.Required(f, "quota", &r.Quota); err != nil {
		return err
	}
	if err := cdp.Required(f, "overrideActive", &r.OverrideActive); err != nil {
		return err
	}
	return cdp.Required(f, "usageBreakdown", &r.UsageBreakdown)
}

// Breakdown returns the usage recorded for t, if any.
func (r UsageAndQuota) Breakdown(t StorageType) (float64, bool) {
	for _, u := range r.UsageBreakdown {
		if u.StorageType == t {
			return u.Usage, true
		}
	}
	return 0, false
}

type storageKeyResult struct {
	StorageKey string
}

func (r *storageKeyResult) UnmarshalJSON(data []byte) error {
	f, err := cdp.DecodeFields(data)
	if err != nil {
		return err
	}
	return cdp.Required(f, "storageKey", &r.StorageKey)
}

type cookiesResult struct {
	Cookies []Cookie
}

func (r *cookiesResult) UnmarshalJSON(data []byte) error {
	f, err := cdp.DecodeFields(data)
	if err != nil {
		return err
	}
	return cdp.Required(f, "cookies", &r.Cookies)
}

type trustTokensResult struct {
	Tokens []TrustTokens
}

func (r *trustTokensResult) UnmarshalJSON(data []byte) error {
	f, err := cdp.DecodeFields(data)
	if err != nil {
		return err
	}
	return cdp.Required(f, "tokens", &r.Tokens)
}

type clearTrustTokensResult struct {
	DidDeleteTokens bool
}

func (r *clearTrustTokensResult) UnmarshalJSON(data []byte) error {
	f, err := cdp.DecodeFields(data)
	if err != nil {
		return err
	}
	return cdp.Required(f, "didDeleteTokens", &r.DidDeleteTokens)
}

// joinTypes renders storage types as the comma-separated list the
// clear commands expect.
func joinTypes(types []StorageType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

// GetStorageKeyForFrame returns the storage key of a frame.
func (d *Domain) GetStorageKeyForFrame(ctx context.Context, frameID string) (string, error) {
	r, err := cdp.Call[storageKeyResult](ctx, d.s, "Storage.getStorageKeyForFrame", cdp.Params{"frameId": frameID})
	return r.StorageKey, err
}

// ClearDataForOrigin clears the given storage types for an origin.
func (d *Domain) ClearDataForOrigin(ctx context.Context, origin string, types []StorageType) error {
	return cdp.Exec(ctx, d.s, "Storage.clearDataForOrigin", cdp.Params{
		"origin":       origin,
		"storageTypes": joinTypes(types),
	})
}

// ClearDataForStorageKey clears the given storage types for a storage key.
func (d *Domain) ClearDataForStorageKey(ctx context.Context, storageKey string, types []StorageType) error {
	return cdp.Exec(ctx, d.s, "Storage.clearDataForStorageKey", cdp.Params{
		"storageKey":   storageKey,
		"storageTypes": joinTypes(types),
	})
}

// GetCookies returns all browser cookies, optionally for one browser context.
func (d *Domain) GetCookies(ctx context.Context, browserContextID cdp.Opt[string]) ([]Cookie, error) {
	params := cdp.SetOpt(cdp.Params{}, "browserContextId", browserContextID)
	r, err := cdp.Call[cookiesResult](ctx, d.s, "Storage.getCookies", params)
	return r.Cookies, err
}

// SetCookies sets the given cookies.
func (d *Domain) SetCookies(ctx context.Context, cookies []CookieParam, browserContextID cdp.Opt[string]) error {
	params := cdp.Params{"cookies": cookies}
	cdp.SetOpt(params, "browserContextId", browserContextID)
	return cdp.Exec(ctx, d.s, "Storage.setCookies", params)
}

// ClearCookies clears all cookies, optionally for one browser context.
func (d *Domain) ClearCookies(ctx context.Context, browserContextID cdp.Opt[string]) error {
	params := cdp.SetOpt(cdp.Params{}, "browserContextId", browserContextID)
	return cdp.Exec(ctx, d.s, "Storage.clearCookies", params)
}

// GetUsageAndQuota returns usage and quota information for an origin.
func (d *Domain) GetUsageAndQuota(ctx context.Context, origin string) (UsageAndQuota, error) {
	return cdp.Call[UsageAndQuota](ctx, d.s, "Storage.getUsageAndQuota", cdp.Params{"origin": origin})
}

// OverrideQuotaForOrigin overrides the quota of an origin. An absent size
// removes a previous override.
func (d *Domain) OverrideQuotaForOrigin(ctx context.Context, origin string, quotaSize cdp.Opt[float64]) error {
	params := cdp.SetOpt(cdp.Params{"origin": origin}, "quotaSize", quotaSize)
	return cdp.Exec(ctx, d.s, "Storage.overrideQuotaForOrigin", params)
}

// TrackCacheStorageForOrigin enables cache storage events for an origin.
func (d *Domain) TrackCacheStorageForOrigin(ctx context.Context, origin string) error {
	return cdp.Exec(ctx, d.s, "Storage.trackCacheStorageForOrigin", cdp.Params{"origin": origin})
}

// TrackIndexedDBForOrigin enables IndexedDB events for an origin.
func (d *Domain) TrackIndexedDBForOrigin(ctx context.Context, origin string) error {
	return cdp.Exec(ctx, d.s, "Storage.trackIndexedDBForOrigin", cdp.Params{"origin": origin})
}

// UntrackCacheStorageForOrigin disables cache storage events for an origin.
func (d *Domain) UntrackCacheStorageForOrigin(ctx context.Context, origin string) error {
	return cdp.Exec(ctx, d.s, "Storage.untrackCacheStorageForOrigin", cdp.Params{"origin": origin})
}

// UntrackIndexedDBForOrigin disables IndexedDB events for an origin.
func (d *Domain) UntrackIndexedDBForOrigin(ctx context.Context, origin string) error {
	return cdp.Exec(ctx, d.s, "Storage.untrackIndexedDBForOrigin", cdp.Params{"origin": origin})
}

// GetTrustTokens returns the trust tokens held by the browser.
func (d *Domain) GetTrustTokens(ctx context.Context) ([]TrustTokens, error) {
	r, err := cdp.Call[trustTokensResult](ctx, d.s, "Storage.getTrustTokens", nil)
	return r.Tokens, err
}

// ClearTrustTokens removes all trust tokens of an issuer. It reports
// whether any tokens were deleted.
func (d *Domain) ClearTrustTokens(ctx context.Context, issuerOrigin string) (bool, error) {
	r, err := cdp.Call[clearTrustTokensResult](ctx, d.s, "Storage.clearTrustTokens", cdp.Params{"issuerOrigin": issuerOrigin})
	return r.DidDeleteTokens, err
}

// Raw sends an arbitrary Storage command, for methods this binding does
// not wrap.
func (d *Domain) Raw(ctx context.Context, method string, params cdp.Params) (json.RawMessage, error) {
	if !strings.HasPrefix(method, "Storage.") {
		method = "Storage." + method
	}
	return d.s.SendContext(ctx, method, params)
}
