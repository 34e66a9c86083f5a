package storage

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/grantcarthew/storagectl/internal/cdp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageType_RoundTrip(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(StorageTypeCacheStorage)
	require.NoError(t, err)
	assert.Equal(t, `"cache_storage"`, string(data))

	var decoded StorageType
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, StorageTypeCacheStorage, decoded)
}

func TestStorageType_ParseCanonicalString(t *testing.T) {
	t.Parallel()

	got, err := ParseStorageType("cache_storage")
	require.NoError(t, err)
	assert.True(t, got == StorageTypeCacheStorage)
	assert.True(t, StorageTypeCacheStorage.Matches("cache_storage"))
	assert.False(t, StorageTypeCacheStorage.Matches("cacheStorage"))
	assert.Equal(t, "cache_storage", got.String())
}

func TestStorageType_EveryValueParses(t *testing.T) {
	t.Parallel()

	for _, st := range StorageTypes {
		got, err := ParseStorageType(string(st))
		require.NoError(t, err, st)
		assert.Equal(t, st, got)
	}
}

func TestStorageType_UnknownValue(t *testing.T) {
	t.Parallel()

	_, err := ParseStorageType("flash_cookies")
	require.Error(t, err)
	assert.True(t, errors.Is(err, cdp.ErrUnknownEnumValue))

	var st StorageType
	err = json.Unmarshal([]byte(`"flash_cookies"`), &st)
	assert.True(t, errors.Is(err, cdp.ErrUnknownEnumValue))

	var uerr *cdp.UnknownEnumValueError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "StorageType", uerr.Type)
	assert.Equal(t, "flash_cookies", uerr.Value)
}

func TestUsageForType_Decode(t *testing.T) {
	t.Parallel()

	var u UsageForType
	require.NoError(t, json.Unmarshal([]byte(`{"storageType":"indexeddb","usage":42}`), &u))
	assert.Equal(t, StorageTypeIndexedDB, u.StorageType)
	assert.Equal(t, 42.0, u.Usage)

	err := json.Unmarshal([]byte(`{"storageType":"nope","usage":42}`), &u)
	assert.True(t, errors.Is(err, cdp.ErrUnknownEnumValue))

	err = json.Unmarshal([]byte(`{"storageType":"cookies"}`), &u)
	assert.True(t, errors.Is(err, cdp.ErrMissingField))
}

const wireCookie = `{
	"name":"sid","value":"abc","domain":".example.com","path":"/",
	"expires":-1,"size":6,"httpOnly":true,"secure":true,"session":true,
	"sameSite":"Lax","priority":"Medium","sourceScheme":"Secure","sourcePort":443
}`

func TestCookie_Decode(t *testing.T) {
	t.Parallel()

	var c Cookie
	require.NoError(t, json.Unmarshal([]byte(wireCookie), &c))

	assert.Equal(t, "sid", c.Name)
	assert.Equal(t, ".example.com", c.Domain)
	assert.True(t, c.HTTPOnly)
	assert.Equal(t, CookiePriorityMedium, c.Priority)
	assert.Equal(t, CookieSameSiteLax, c.SameSite.Or(""))
	assert.Equal(t, 443, c.SourcePort.Or(0))
	assert.False(t, c.PartitionKey.IsSet())
}

func TestCookie_DecodeFailsLoudly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "missing required", input: `{"name":"sid"}`, want: cdp.ErrMissingField},
		{name: "unknown priority", input: `{"name":"a","value":"b","domain":"d","path":"/","expires":0,"size":1,"httpOnly":false,"secure":false,"session":true,"priority":"Urgent"}`, want: cdp.ErrUnknownEnumValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var c Cookie
			err := json.Unmarshal([]byte(tt.input), &c)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	var c Cookie
	err := json.Unmarshal([]byte(`{"name":1}`), &c)
	var ferr *cdp.FieldError
	require.True(t, errors.As(err, &ferr), "got %v", err)
	assert.Equal(t, "name", ferr.Field)
}

func TestCookie_EncodeOmitsAbsentAttributes(t *testing.T) {
	t.Parallel()

	var c Cookie
	require.NoError(t, json.Unmarshal([]byte(wireCookie), &c))

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, `"Lax"`, string(fields["sameSite"]))
	assert.NotContains(t, fields, "partitionKey")
}

func TestCookieParam_OmitsUnsetAttributes(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(CookieParam{
		Name:   "sid",
		Value:  "abc",
		Secure: cdp.Some(false),
		Path:   cdp.Some("/"),
	})
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))

	assert.Equal(t, `false`, string(fields["secure"]))
	assert.Equal(t, `"/"`, string(fields["path"]))
	for _, key := range []string{"url", "domain", "httpOnly", "sameSite", "expires", "priority"} {
		assert.NotContains(t, fields, key)
	}
}
