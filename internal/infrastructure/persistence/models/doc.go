// Package models holds the gorm table mappings. Each model converts to and
// from its domain type with ToDomain and a ...FromDomain constructor, so no
// gorm tag ever reaches the domain packages.
//
// Aggregate roots (orders, channels, users) embed Aggregate for the
// optimistic lock version; child rows embed Entity or declare their own keys.
package models

// All returns every model in dependency order, for AutoMigrate on sqlite and in tests.
func All() []interface{} {
	return []interface{}{
		&ChannelModel{},
		&ChannelActionMappingModel{},
		&UserModel{},
		&UserChannelAccessModel{},
		&SalesOrderModel{},
		&SalesOrderLineModel{},
		&SalesPaymentModel{},
		&ChannelExceptionModel{},
	}
}
