package integration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/erp/channelsync/internal/domain/identity"
	"github.com/erp/channelsync/internal/domain/integration"
	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/erp/channelsync/internal/domain/trade"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML document loaded by `channelsync seed`
type SeedFile struct {
	Channels []ChannelSeed `yaml:"channels" validate:"dive"`
	Users    []UserSeed    `yaml:"users" validate:"dive"`
}

// ChannelSeed describes one channel and its status mappings
type ChannelSeed struct {
	Code           string        `yaml:"code" validate:"required,max=50"`
	Name           string        `yaml:"name" validate:"required,max=200"`
	Source         string        `yaml:"source" validate:"required,oneof=manual webshop marketplace pos"`
	CompanyID      string        `yaml:"company_id" validate:"required,uuid"`
	WarehouseID    string        `yaml:"warehouse_id" validate:"required,uuid"`
	Currency       string        `yaml:"currency" validate:"required,len=3"`
	PaymentTermID  string        `yaml:"payment_term_id" validate:"required,uuid"`
	PriceListID    string        `yaml:"price_list_id" validate:"omitempty,uuid"`
	InvoiceMethod  string        `yaml:"invoice_method" validate:"omitempty,oneof=manual order shipment"`
	ShipmentMethod string        `yaml:"shipment_method" validate:"omitempty,oneof=manual order invoice"`
	Mappings       []MappingSeed `yaml:"mappings" validate:"dive"`
}

// MappingSeed maps one external status to an action
type MappingSeed struct {
	Status         string `yaml:"status" validate:"required,max=100"`
	Action         string `yaml:"action" validate:"required,oneof=process_manually process_automatically import_as_past ignore"`
	InvoiceMethod  string `yaml:"invoice_method" validate:"required,oneof=manual order shipment"`
	ShipmentMethod string `yaml:"shipment_method" validate:"required,oneof=manual order invoice"`
}

// UserSeed grants channel access to a user; channels are referenced by code
type UserSeed struct {
	Username       string   `yaml:"username" validate:"required,max=100"`
	CurrentChannel string   `yaml:"current_channel"`
	Create         []string `yaml:"create"`
	Read           []string `yaml:"read"`
}

// SeedResult counts what a seed run wrote
type SeedResult struct {
	ChannelsCreated int `json:"channels_created"`
	ChannelsUpdated int `json:"channels_updated"`
	Users           int `json:"users"`
}

// SeedService upserts channels and user channel access from a YAML document.
// Channels are matched by code and users by username, so seeding is repeatable.
type SeedService struct {
	channels integration.ChannelRepository
	users    identity.UserRepository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewSeedService creates a new SeedService
func NewSeedService(channels integration.ChannelRepository, users identity.UserRepository, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{
		channels: channels,
		users:    users,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// ParseSeed decodes and validates a seed document
func (s *SeedService) ParseSeed(r io.Reader) (*SeedFile, error) {
	var file SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := s.validate.Struct(&file); err != nil {
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}
	return &file, nil
}

// Seed applies a seed document
func (s *SeedService) Seed(ctx context.Context, r io.Reader) (*SeedResult, error) {
	file, err := s.ParseSeed(r)
	if err != nil {
		return nil, err
	}

	result := &SeedResult{}
	codes := make(map[string]uuid.UUID, len(file.Channels))
	for _, cs := range file.Channels {
		channel, created, err := s.upsertChannel(ctx, cs)
		if err != nil {
			return result, fmt.Errorf("channel %s: %w", cs.Code, err)
		}
		codes[channel.Code] = channel.ID
		if created {
			result.ChannelsCreated++
		} else {
			result.ChannelsUpdated++
		}
	}

	for _, us := range file.Users {
		if err := s.upsertUser(ctx, us, codes); err != nil {
			return result, fmt.Errorf("user %s: %w", us.Username, err)
		}
		result.Users++
	}

	s.logger.Info("seed applied",
		zap.Int("channels_created", result.ChannelsCreated),
		zap.Int("channels_updated", result.ChannelsUpdated),
		zap.Int("users", result.Users))
	return result, nil
}

func (s *SeedService) upsertChannel(ctx context.Context, cs ChannelSeed) (*integration.Channel, bool, error) {
	channel, err := integration.NewChannel(cs.Code, cs.Name, integration.ChannelSource(cs.Source),
		uuid.MustParse(cs.CompanyID), uuid.MustParse(cs.WarehouseID), cs.Currency, uuid.MustParse(cs.PaymentTermID))
	if err != nil {
		return nil, false, err
	}

	existing, err := s.channels.FindByCode(ctx, channel.Code)
	created := errors.Is(err, integration.ErrChannelNotFound)
	switch {
	case created:
	case err != nil:
		return nil, false, err
	default:
		channel.BaseAggregateRoot = existing.BaseAggregateRoot
		channel.Touch()
	}

	if cs.PriceListID != "" {
		id := uuid.MustParse(cs.PriceListID)
		channel.SetPriceList(&id)
	}
	if err := channel.SetFulfillmentMethods(trade.InvoiceMethod(cs.InvoiceMethod), trade.ShipmentMethod(cs.ShipmentMethod)); err != nil {
		return nil, false, err
	}
	for _, ms := range cs.Mappings {
		if _, err := channel.MapStatus(ms.Status, integration.ChannelAction(ms.Action),
			trade.InvoiceMethod(ms.InvoiceMethod), trade.ShipmentMethod(ms.ShipmentMethod)); err != nil {
			return nil, false, err
		}
	}
	if err := s.channels.Save(ctx, channel); err != nil {
		return nil, false, err
	}
	return channel, created, nil
}

func (s *SeedService) upsertUser(ctx context.Context, us UserSeed, codes map[string]uuid.UUID) error {
	user, err := s.users.FindByUsername(ctx, us.Username)
	if errors.Is(err, shared.ErrNotFound) {
		user, err = identity.NewUser(us.Username)
	}
	if err != nil {
		return err
	}

	resolve := func(code string) (uuid.UUID, error) {
		code = strings.TrimSpace(code)
		if id, ok := codes[code]; ok {
			return id, nil
		}
		channel, err := s.channels.FindByCode(ctx, code)
		if err != nil {
			return uuid.Nil, err
		}
		codes[code] = channel.ID
		return channel.ID, nil
	}

	user.AllowedCreateChannels = make([]uuid.UUID, 0, len(us.Create))
	user.AllowedReadChannels = make([]uuid.UUID, 0, len(us.Read)+len(us.Create))
	for _, code := range us.Create {
		id, err := resolve(code)
		if err != nil {
			return err
		}
		if err := user.Grant(id, identity.ChannelAccessCreate); err != nil {
			return err
		}
	}
	for _, code := range us.Read {
		id, err := resolve(code)
		if err != nil {
			return err
		}
		if err := user.Grant(id, identity.ChannelAccessRead); err != nil {
			return err
		}
	}

	if us.CurrentChannel == "" {
		user.SetCurrentChannel(nil)
	} else {
		id, err := resolve(us.CurrentChannel)
		if err != nil {
			return err
		}
		user.SetCurrentChannel(&id)
	}
	return s.users.Save(ctx, user)
}
