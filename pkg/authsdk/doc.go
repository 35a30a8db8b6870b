/*
Package authsdk provides the external error surface of the ltcms auth core
and a small Go client for its HTTP API.

# Errors

Every rejection the server writes is an *APIError serialized as

	{"error": "<message>"}

with Cache-Control: no-store. Kind is one of a handful of coarse
categories (unauthenticated, unauthorized, forbidden, bad_request,
too_many_requests, internal) and is never serialized. The predefined values
(ErrInvalidCredentials, ErrInvalidToken, ErrCSRFMismatch, ...) carry the
exact user-visible messages. Errors decoded by the client compare equal to
them with errors.Is:

	_, err := client.Login(ctx, "alice", "wrong")
	if errors.Is(err, authsdk.ErrInvalidCredentials) {
		// ask again
	}

# Client

SDKClient holds a cookie jar, so it behaves like a browser. Login stores the
session and CSRF cookies; Session.Do sends them back and copies the CSRF
cookie into the x-csrf-token header on state-changing requests:

	client := authsdk.NewSDKClient("http://localhost:8080")

	session, err := client.Login(ctx, "alice", "correct horse")
	if err != nil {
		return err
	}

	me, err := session.Me(ctx)

	resp, err := session.Do(ctx, http.MethodPost, "/api/tutorials", body)

	err = session.Logout(ctx)

Non-browser callers can skip the jar and send the token as a header:

	session := client.NewSessionFromToken(token)
	me, err := session.Me(ctx)

Cookies are issued with the Secure attribute unless the server runs with
AUTH_COOKIE_SECURE=false, and a standard cookie jar only returns Secure
cookies over https.
*/
package authsdk
