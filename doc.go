/*

Package dao defines interfaces used throughout the governance engine, such
as storage, persistence, addresses, events and context helpers.

Extensions live under x/ and operate on a KVStore that is handed to them for
the duration of a single operation. The app package owns the committed store
and serializes every state change, so extensions never hold locks of their
own.

*/

package dao
