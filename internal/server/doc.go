// Package server provides HTTP routing, middleware, and OAuth handling for the CLI's authorization flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [RequestLogger] is the only middleware the listener installs.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code through an
// [Exchanger], and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Callback Listener
//
// When the user runs `camsort spotify auth`, a [CallbackServer] listens on the host and path of the configured
// redirect URI (see [CallbackAddr]), handles the callback, and shuts down after receiving the token.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
