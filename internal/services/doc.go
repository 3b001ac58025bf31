// Package services wraps the HTTP collaborators used by the sort pipeline.
//
// # Playlist Provider
//
// [PlaylistService] reads playlist contents and writes a new order back.
// [SpotifyService] implements it on top of github.com/zmb3/spotify/v2 with
// OAuth2 tokens issued by the spotifyauth package. Items are fetched in pages of
// [PageSize] until a page reports no next page. Write-back replaces the
// playlist with the first [PageSize] IDs and appends the rest in chunks of the
// same size, so the final order matches the slice exactly.
//
// # Lookup Provider
//
// [LookupService] resolves a tempo and key for a title/artist pair.
// [GetSongBPMService] implements it against the GetSongBPM search endpoint.
// Requests are rate limited with golang.org/x/time/rate, bounded by a per-call
// timeout and retried on 429/5xx with exponential backoff.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : no token has been supplied
//   - [shared.ErrPlaylistNotFound] : the playlist ID does not exist
//   - [shared.ErrAPIRequest] : the provider rejected a request
//   - [shared.ErrWriteBack] : a replace or append call failed
//   - [shared.ErrLookupUnavailable] : transport failure, timeout or non-2xx status
//   - [shared.ErrNoResultFound] : the lookup answered with an empty or error result
//   - [shared.ErrMalformedLookupPayload] : the lookup answered with an unexpected shape
package services
