package storage

import (
	"encoding/json"

	"github.com/grantcarthew/storagectl/internal/cdp"
)

// StorageType is a kind of browser storage.
//
// The set of values is closed: decoding any other wire string fails with
// *cdp.UnknownEnumValueError. Two StorageType values are equal when their
// canonical strings are equal, so == is the value comparison. Matches
// additionally compares a value against a raw wire string, which is how
// callers test payload strings they have not decoded.
type StorageType string

const (
	StorageTypeAppcache       StorageType = "appcache"
	StorageTypeCookies        StorageType = "cookies"
	StorageTypeFileSystems    StorageType = "file_systems"
	StorageTypeIndexedDB      StorageType = "indexeddb"
	StorageTypeLocalStorage   StorageType = "local_storage"
	StorageTypeShaderCache    StorageType = "shader_cache"
	StorageTypeWebSQL         StorageType = "websql"
	StorageTypeServiceWorkers StorageType = "service_workers"
	StorageTypeCacheStorage   StorageType = "cache_storage"
	StorageTypeInterestGroups StorageType = "interest_groups"
	StorageTypeSharedStorage  StorageType = "shared_storage"
	StorageTypeStorageBuckets StorageType = "storage_buckets"
	StorageTypeAll            StorageType = "all"
	StorageTypeOther          StorageType = "other"
)

// StorageTypes lists every StorageType in protocol order.
var StorageTypes = []StorageType{
	StorageTypeAppcache,
	StorageTypeCookies,
	StorageTypeFileSystems,
	StorageTypeIndexedDB,
	StorageTypeLocalStorage,
	StorageTypeShaderCache,
	StorageTypeWebSQL,
	StorageTypeServiceWorkers,
	StorageTypeCacheStorage,
	StorageTypeInterestGroups,
	StorageTypeSharedStorage,
	StorageTypeStorageBuckets,
	StorageTypeAll,
	StorageTypeOther,
}

// ParseStorageType decodes a wire string.
func ParseStorageType(raw string) (StorageType, error) {
	return cdp.ParseEnum("StorageType", raw, StorageTypes)
}

// String returns the canonical wire string.
func (t StorageType) String() string {
	return string(t)
}

// Matches reports whether raw is the canonical wire string of t.
func (t StorageType) Matches(raw string) bool {
	return string(t) == raw
}

func (t *StorageType) UnmarshalJSON(data []byte) error {
	v, err := cdp.UnmarshalEnum("StorageType", data, StorageTypes)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// CookieSameSite is the SameSite attribute of a cookie.
type CookieSameSite string

const (
	CookieSameSiteStrict CookieSameSite = "Strict"
	CookieSameSiteLax    CookieSameSite = "Lax"
	CookieSameSiteNone   CookieSameSite = "None"
)

var cookieSameSites = []CookieSameSite{CookieSameSiteStrict, CookieSameSiteLax, CookieSameSiteNone}

// ParseCookieSameSite decodes a wire string.
func ParseCookieSameSite(raw string) (CookieSameSite, error) {
	return cdp.ParseEnum("CookieSameSite", raw, cookieSameSites)
}

func (s *CookieSameSite) UnmarshalJSON(data []byte) error {
	v, err := cdp.UnmarshalEnum("CookieSameSite", data, cookieSameSites)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// CookiePriority is the Priority attribute of a cookie.
type CookiePriority string

const (
	CookiePriorityLow    CookiePriority = "Low"
	CookiePriorityMedium CookiePriority = "Medium"
	CookiePriorityHigh   CookiePriority = "High"
)

var cookiePriorities = []CookiePriority{CookiePriorityLow, CookiePriorityMedium, CookiePriorityHigh}

// ParseCookiePriority decodes a wire string.
func ParseCookiePriority(raw string) (CookiePriority, error) {
	return cdp.ParseEnum("CookiePriority", raw, cookiePriorities)
}

func (p *CookiePriority) UnmarshalJSON(data []byte) error {
	v, err := cdp.UnmarshalEnum("CookiePriority", data, cookiePriorities)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// CookieSourceScheme records whether a cookie was set by a secure origin.
type CookieSourceScheme string

const (
	CookieSourceSchemeUnset     CookieSourceScheme = "Unset"
	CookieSourceSchemeNonSecure CookieSourceScheme = "NonSecure"
	CookieSourceSchemeSecure    CookieSourceScheme = "Secure"
)

var cookieSourceSchemes = []CookieSourceScheme{CookieSourceSchemeUnset, CookieSourceSchemeNonSecure, CookieSourceSchemeSecure}

func (s *CookieSourceScheme) UnmarshalJSON(data []byte) error {
	v, err := cdp.UnmarshalEnum("CookieSourceScheme", data, cookieSourceSchemes)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// UsageForType is the usage of one storage type.
type UsageForType struct {
	StorageType StorageType `json:"storageType"`
	Usage       float64     `json:"usage"`
}

func (u *UsageForType) UnmarshalJSON(data []byte) error {
	f, err := cdp.DecodeFields(data)
	if err != nil {
		return err
	}
	if err := cdp.Required(f, "storageType", &u.StorageType); err != nil {
		return err
	}
	return cdp.Required(f, "usage", &u.Usage)
}

// Cookie is a cookie as reported by the browser.
type Cookie struct {
	Name         string
	Value        string
	Domain       string
	Path         string
	Expires      float64 // seconds since epoch; -1 for session cookies
	Size         int
	HTTPOnly     bool
	Secure       bool
	Session      bool
	SameSite     cdp.Opt[CookieSameSite]
	Priority     CookiePriority
	SourceScheme cdp.Opt[CookieSourceScheme]
	SourcePort   cdp.Opt[int]
	PartitionKey cdp.Opt[json.RawMessage]
}

func (c *Cookie) UnmarshalJSON(data []byte) error {
	f, err := cdp.DecodeFields(data)
	if err != nil {
		return err
	}
	errs := []error{
		cdp.Required(f, "name", &c.Name),
		cdp.Required(f, "value", &c.Value),
		cdp.Required(f, "domain", &c.Domain),
		cdp.Required(f, "path", &c.Path),
		cdp.Required(f, "expires", &c.Expires),
		cdp.Required(f, "size", &c.Size),
		cdp.Required(f, "httpOnly", &c.HTTPOnly),
		cdp.Required(f, "secure", &c.Secure),
		cdp.Required(f, "session", &c.Session),
		cdp.Required(f, "priority", &c.Priority),
		cdp.Optional(f, "sameSite", &c.SameSite),
		cdp.Optional(f, "sourceScheme", &c.SourceScheme),
		cdp.Optional(f, "sourcePort", &c.SourcePort),
		cdp.Optional(f, "partitionKey", &c.PartitionKey),
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON writes the cookie in wire form, leaving absent optional
// attributes out.
func (c Cookie) MarshalJSON() ([]byte, error) {
	p := cdp.Params{
		"name":     c.Name,
		"value":    c.Value,
		"domain":   c.Domain,
		"path":     c.Path,
		"expires":  c.Expires,
		"size":     c.Size,
		"httpOnly": c.HTTPOnly,
		"secure":   c.Secure,
		"session":  c.Session,
		"priority": c.Priority,
	}
	cdp.SetOpt(p, "sameSite", c.SameSite)
	cdp.SetOpt(p, "sourceScheme", c.SourceScheme)
	cdp.SetOpt(p, "sourcePort", c.SourcePort)
	cdp.SetOpt(p, "partitionKey", c.PartitionKey)
	return json.Marshal(map[string]any(p))
}

// CookieParam describes a cookie to set. Only Name and Value are required.
type CookieParam struct {
	Name     string
	Value    string
	URL      cdp.Opt[string]
	Domain   cdp.Opt[string]
	Path     cdp.Opt[string]
	Secure   cdp.Opt[bool]
	HTTPOnly cdp.Opt[bool]
	SameSite cdp.Opt[CookieSameSite]
	Expires  cdp.Opt[float64]
	Priority cdp.Opt[CookiePriority]
}

// MarshalJSON omits every attribute that was not set.
func (c CookieParam) MarshalJSON() ([]byte, error) {
	p := cdp.Params{"name": c.Name, "value": c.Value}
	cdp.SetOpt(p, "url", c.URL)
	cdp.SetOpt(p, "domain", c.Domain)
	cdp.SetOpt(p, "path", c.Path)
	cdp.SetOpt(p, "secure", c.Secure)
	cdp.SetOpt(p, "httpOnly", c.HTTPOnly)
	cdp.SetOpt(p, "sameSite", c.SameSite)
	cdp.SetOpt(p, "expires", c.Expires)
	cdp.SetOpt(p, "priority", c.Priority)
	return json.Marshal(map[string]any(p))
}

// TrustTokens is the number of trust tokens held for an issuer.
type TrustTokens struct {
	IssuerOrigin string  `json:"issuerOrigin"`
	Count        float64 `json:"count"`
}

func (t *TrustTokens) UnmarshalJSON(data []byte) error {
	f, err := cdp.DecodeFields(data)
	if err != nil {
		return err
	}
	if err := cdp.Required(f, "issuerOrigin", &t.IssuerOrigin); err != nil {
		return err
	}
	return cdp.Required(f, "count", &t.Count)
}
