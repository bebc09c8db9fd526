// Package integration contains the Channel bounded context.
// It describes the external sales channels orders are imported from and the
// exceptions raised while reconciling those orders.
//
// Key concepts:
//   - Channel: an external sales origin with default order attributes and a
//     status vocabulary mapped onto internal actions
//   - ChannelActionMapping: external status string -> internal action plus fulfillment methods
//   - ChannelException: a persisted problem raised against an order under a channel
//
// Repository interfaces live here; the gorm implementations are in
// infrastructure/persistence.
package integration
