// Package registry implements the npm-compatible account endpoints: the
// couchdb-style login-or-create upsert and bearer token introspection.
//
// # Login or Create
//
// npm clients send the same PUT request for both "npm login" and
// "npm adduser":
//
//	PUT /-/user/org.couchdb.user:<username>
//	{"_id": "org.couchdb.user:alice", "name": "alice", "password": "...",
//	 "type": "user", "email": "a@example.com", "roles": [], "date": "..."}
//
// The server disambiguates intent: login is always attempted first, and
// account creation is a fallback taken only when the name is unknown and
// the payload carries an email. The Engine implements that decision as a
// small state machine, including the single retry that absorbs creation
// conflicts under concurrent registration.
//
// # Introspection
//
// GET /-/whoami resolves an Authorization bearer token to the account name.
// Every credential failure maps to the same 401; callers cannot tell a bad
// token from a missing scope.
package registry
