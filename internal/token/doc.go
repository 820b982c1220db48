// Package token owns the OAuth2 access-token lifecycle.
//
// The Cache hands back an access token that is valid for immediate use,
// refreshing it against the Zoho accounts endpoint when the cached record is
// missing, unreadable or within the refresh buffer of its expiry. Durable
// storage is a cache, not a source of truth: any load failure falls through
// to a refresh.
package token
