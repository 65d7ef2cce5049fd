// Package identity implements the local identity-and-audit subsystem behind
// the AI voice studio shell: a user store, a session manager, and an
// append-only activity log composed behind a single Authorization facade the
// UI layer consumes.
//
// Storage:
//   - Every collection (accounts, activity entries, the current session,
//     per-account settings and clip history) is serialized JSON under a
//     logical key in a Store. Store implementations cover in-memory, flat
//     files, SQLite via Bun, and Redis; swapping backends never touches the
//     domain code.
//   - Reads self-heal: a value that fails to decode is treated as absent and
//     the offending key is removed, so corrupted persisted data never
//     propagates past the storage layer.
//
// Sessions:
//   - The session is a redacted projection of the account (no credential
//     material). The HTTP transport carries it as a signed HS256 cookie.
//     Restoring at startup trusts the persisted projection; it does not
//     re-check the credential or blocked flag against the account store.
//
// Auditing:
//   - Every successful state-changing operation appends exactly one
//     ActivityEntry attributed to the acting session. Appends are
//     best-effort: failures are logged and never block the caller.
package identity
