package trade

import (
	"context"

	"github.com/erp/channelsync/internal/domain/integration"
	"github.com/erp/channelsync/internal/domain/trade"
)

// TransactionScope provides transactional access to the repositories touched by
// channel sync and order creation. All repository operations inside Execute are
// committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to repositories bound to one transaction
type TransactionalRepositories interface {
	SalesOrders() trade.SalesOrderRepository
	Payments() trade.PaymentRepository
	Channels() integration.ChannelRepository
	Exceptions() integration.ChannelExceptionRepository
}

// NoOpTransactionScope runs fn directly against the given repositories.
// Used in tests and where transaction support is not required.
type NoOpTransactionScope struct {
	repos staticRepositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	orders trade.SalesOrderRepository,
	payments trade.PaymentRepository,
	channels integration.ChannelRepository,
	exceptions integration.ChannelExceptionRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: staticRepositories{
		orders:     orders,
		payments:   payments,
		channels:   channels,
		exceptions: exceptions,
	}}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.repos)
}

type staticRepositories struct {
	orders     trade.SalesOrderRepository
	payments   trade.PaymentRepository
	channels   integration.ChannelRepository
	exceptions integration.ChannelExceptionRepository
}

func (r staticRepositories) SalesOrders() trade.SalesOrderRepository            { return r.orders }
func (r staticRepositories) Payments() trade.PaymentRepository                  { return r.payments }
func (r staticRepositories) Channels() integration.ChannelRepository            { return r.channels }
func (r staticRepositories) Exceptions() integration.ChannelExceptionRepository { return r.exceptions }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
