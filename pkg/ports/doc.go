/*
Package ports defines the driven ports (interfaces) of the landsketch core.

These interfaces decouple the painting engine and the submission pipeline from
browser-era collaborators (session storage, page navigation, alert dialogs),
so the core's write contract is testable without any of them.

# Key Interfaces

  - KVStore: Session-scoped string key/value storage (memory, file, Redis).
  - Navigator: Transfers control to another view (e.g. the results view).
  - Notifier: Blocking, user-visible notification of a failed user action.
*/
package ports
