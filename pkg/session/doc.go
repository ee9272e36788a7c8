/*
Package session hosts many painting sessions in one process.

Each session owns a Studio and a view of the shared key/value store scoped to
its ID. Access to one session is serialised by a per-session lock that is
garbage collected through reference counting; different sessions proceed in
parallel.
*/
package session
