// Package events provides a minimal publish/subscribe bus for change
// notifications.
//
// # Overview
//
// A Bus carries no payload. Emitting says "something changed" and every
// subscriber decides for itself what to re-read. shelf uses one bus per
// observable store: the client store emits after a new client is set and
// the books store emits after its lists change.
//
// # Delivery
//
//   - Synchronous: Emit returns after every handler has run.
//   - Ordered: handlers run in the order they subscribed.
//   - Snapshotted: the handler list is copied before dispatch, so a handler
//     that subscribes or unsubscribes during Emit does not change which
//     handlers the current pass calls.
//   - Fire and forget: emitting with no subscribers drops the notification.
//
// # Unsubscribing
//
// Subscribe returns a func that removes exactly the registration it came
// from. Removal is by identity, so registering the same function twice
// yields two independent registrations.
package events
