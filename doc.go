// Package adminauth implements the client-side session lifecycle for the
// Caredesk admin front end: a versioned session store, an authorized HTTP
// client, navigation guards, and the multi-step signup wizard that feeds
// the session-creation flow.
//
// Session lifecycle:
//   - Store is the single source of truth for the current bearer token and
//     user summary. Mutations go through Login and Logout only, are totally
//     ordered by a version counter, and are mirrored into a TokenStore so a
//     session survives a restart. Guards and the HTTP client read the store,
//     they never hold their own copy.
//   - A token restored at startup may not carry a user profile. DeriveAuthState
//     reports that as ProfilePending so consumers can render a loading state
//     instead of treating the session as anonymous.
//
// Request authorization:
//   - Client decorates every outbound request with the stored bearer token
//     and maps authorization failures to typed errors. A 401 clears the
//     session before the error is returned, so a guard evaluated in the
//     error path already observes the anonymous state. Navigation is left
//     to the caller; the client never redirects.
//
// Signup wizard:
//   - Wizard walks the account/profile/organization/review steps, validating
//     each step with the rules in validate.go before advancing. Submit
//     re-validates everything, posts through the client, and commits the
//     resulting session with the version observed when the submit started,
//     so a signup that races a logout cannot resurrect the session.
package adminauth
