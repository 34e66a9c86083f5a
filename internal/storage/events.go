package storage

import (
	"github.com/grantcarthew/storagectl/internal/cdp"
)

// Event method names.
const (
	EventCacheStorageContentUpdated = "Storage.cacheStorageContentUpdated"
	EventCacheStorageListUpdated    = "Storage.cacheStorageListUpdated"
	EventIndexedDBContentUpdated    = "Storage.indexedDBContentUpdated"
	EventIndexedDBListUpdated       = "Storage.indexedDBListUpdated"
)

// CacheStorageContentUpdated is sent when a cache's content changes.
type CacheStorageContentUpdated struct {
	Origin     string          `json:"origin"`
	StorageKey cdp.Opt[string] `json:"storageKey"`
	BucketID   cdp.Opt[string] `json:"bucketId"`
	CacheName  string          `json:"cacheName"`
}

func (e *CacheStorageContentUpdated) UnmarshalJSON(data []byte) error {
	f, err := cdp.DecodeFields(data)
	if err != nil {
		return err
	}
	if err := decodeOrigin(f, &e.Origin, &e.StorageKey, &e.BucketID); err != nil {
		return err
	}
	return cdp.Required(f, "cacheName", &e.CacheName)
}

// CacheStorageListUpdated is sent when the list of caches of an origin changes.
type CacheStorageListUpdated struct {
	Origin     string          `json:"origin"`
	StorageKey cdp.Opt[string] `json:"storageKey"`
	BucketID   cdp.Opt[string] `json:"bucketId"`
}

func (e *CacheStorageListUpdated) UnmarshalJSON(data []byte) error {
	f, err := cdp.DecodeFields(data)
	if err != nil {
		return err
	}
	return decodeOrigin(f, &e.Origin, &e.StorageKey, &e.BucketID)
}

// IndexedDBContentUpdated is sent when an object store's content changes.
type IndexedDBContentUpdated struct {
	Origin          string          `json:"origin"`
	StorageKey      cdp.Opt[string] `json:"storageKey"`
	BucketID        cdp.Opt[string] `json:"bucketId"`
	DatabaseName    string          `json:"databaseName"`
	ObjectStoreName string          `json:"objectStoreName"`
}

func (e *IndexedDBContentUpdated) UnmarshalJSON(data []byte) error {
	f, err := cdp.DecodeFields(data)
	if err != nil {
		return err
	}
	if err := decodeOrigin(f, &e.Origin, &e.StorageKey, &e.BucketID); err != nil {
		return err
	}
	if err := cdp.Required(f, "databaseName", &e.DatabaseName); err != nil {
		return err
	}
	return cdp.Required(f, "objectStoreName", &e.ObjectStoreName)
}

// IndexedDBListUpdated is sent when the list of databases of an origin changes.
type IndexedDBListUpdated struct {
	Origin     string          `json:"origin"`
	StorageKey cdp.Opt[string] `json:"storageKey"`
	BucketID   cdp.Opt[string] `json:"bucketId"`
}

func (e *IndexedDBListUpdated) UnmarshalJSON(data []byte) error {
	f, err := cdp.DecodeFields(data)
	if err != nil {
		return err
	}
	return decodeOrigin(f, &e.Origin, &e.StorageKey, &e.BucketID)
}

func decodeOrigin(f cdp.Fields, origin *string, storageKey, bucketID *cdp.Opt[string]) error {
	if err := cdp.Required(f, "origin", origin); err != nil {
		return err
	}
	if err := cdp.Optional(f, "storageKey", storageKey); err != nil {
		return err
	}
	return cdp.Optional(f, "bucketId", bucketID)
}

// OnCacheStorageContentUpdated streams Storage.cacheStorageContentUpdated.
func (d *Domain) OnCacheStorageContentUpdated() *cdp.Stream[CacheStorageContentUpdated] {
	return cdp.Listen[CacheStorageContentUpdated](d.s, EventCacheStorageContentUpdated)
}

// OnCacheStorageListUpdated streams Storage.cacheStorageListUpdated.
func (d *Domain) OnCacheStorageListUpdated() *cdp.Stream[CacheStorageListUpdated] {
	return cdp.Listen[CacheStorageListUpdated](d.s, EventCacheStorageListUpdated)
}

// OnIndexedDBContentUpdated streams Storage.indexedDBContentUpdated.
func (d *Domain) OnIndexedDBContentUpdated() *cdp.Stream[IndexedDBContentUpdated] {
	return cdp.Listen[IndexedDBContentUpdated](d.s, EventIndexedDBContentUpdated)
}

// OnIndexedDBListUpdated streams Storage.indexedDBListUpdated.
func (d *Domain) OnIndexedDBListUpdated() *cdp.Stream[IndexedDBListUpdated] {
	return cdp.Listen[IndexedDBListUpdated](d.s, EventIndexedDBListUpdated)
}
