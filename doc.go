// Package kebapi implements a small venues-and-favourites API with
// credential verification, JWT session tokens, and role/ownership based
// authorization.
//
// The package exposes four cooperating pieces: the hash-bundle codec
// (GenerateHashBundle, VerifyHashBundle), the TokenService that mints and
// validates signed claims, the Authenticator that turns an identifier and
// password into a SecurityToken, and the Authorizer that decides whether a
// set of verified claims may act on a resource path. Persistence and the
// fiber HTTP surface are built around those pieces.
package kebapi
