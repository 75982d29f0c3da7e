// Package auth provides username/password authentication backed by stateless,
// HMAC signed bearer tokens.
//
// Login flow:
//   - Auther.Login looks the user up through a UserStore, verifies the
//     submitted password with a CredentialHasher and issues a token through a
//     TokenCodec. Unknown users, inactive users and wrong passwords all fail
//     with ErrInvalidCredentials so callers cannot enumerate usernames.
//   - Store or signing faults surface as ErrInternal wrapping the cause. The
//     cause is for server logs only.
//
// Token lifecycle:
//   - Tokens are JWTs carrying the username as subject plus iat/exp. They are
//     never stored server side, so Logout is an acknowledgement only and a
//     token stays valid until it expires.
//   - Auther.Validate never touches the UserStore. A user disabled after
//     issuance keeps a valid token until exp.
//
// Errors:
//   - Every failure is a *goerrors.Error with a stable text code. KindOf maps
//     any error to the ErrorKind taxonomy used by the HTTP layer.
package auth
