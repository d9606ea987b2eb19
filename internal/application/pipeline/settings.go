package pipeline

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-recon/internal/domain"
	"github.com/jhoicas/Inventario-recon/internal/domain/analytics"
	"github.com/jhoicas/Inventario-recon/internal/domain/dedup"
	"github.com/jhoicas/Inventario-recon/internal/domain/entity"
	"github.com/jhoicas/Inventario-recon/internal/domain/normalize"
	"github.com/jhoicas/Inventario-recon/internal/domain/quality"
	"github.com/jhoicas/Inventario-recon/pkg/config"
)

// Estados de pedido e-commerce.
var (
	saleStatuses    = []string{"completed", "shipped"}
	refundStatus    = "refunded"
	orderStatuses   = []string{"completed", "shipped", "processing", "pending", "cancelled", "refunded"}
	paymentMethods  = []string{"CASH", "CARD", "CREDIT", "DEBIT"}
	defaultMinValid = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
)

// Settings parámetros de una corrida. Se construyen una vez y no cambian durante la corrida.
type Settings struct {
	DateLayouts    []string
	MinValidDate   time.Time
	QuantityBounds quality.Bounds // cantidades de transacción (negativas = devoluciones)
	PriceBounds    quality.Bounds
	PaymentMethods []string // vacío = no se valida el medio de pago
	NamePrefixes   []string // prefijos que se quitan antes de derivar la Identity Key
	Thresholds     analytics.Thresholds
	Policy         dedup.Policy
	RuleNames      RuleNames
}

// RuleNames nombres de las estrategias de agregación, para el reporte.
type RuleNames struct {
	Quantity string
	Reorder  string
	Price    string
}

// DefaultSettings valores por defecto del análisis.
func DefaultSettings() Settings {
	return Settings{
		DateLayouts:    append([]string(nil), config.DefaultDateFormats...),
		MinValidDate:   defaultMinValid,
		QuantityBounds: quality.Between(decimal.NewFromInt(-50), decimal.NewFromInt(100)),
		PriceBounds:    quality.Between(decimal.Zero, decimal.NewFromInt(10000)),
		PaymentMethods: append([]string(nil), paymentMethods...),
		Thresholds:     analytics.DefaultThresholds(),
		Policy:         dedup.DefaultPolicy(),
		RuleNames:      RuleNames{Quantity: "sum", Reorder: "max", Price: "mean"},
	}
}

// SettingsFromConfig traduce la configuración de la aplicación.
func SettingsFromConfig(cfg *config.Config) (Settings, error) {
	a := cfg.Analysis
	policy, err := dedup.PolicyFromNames(cfg.Dedup.QuantityRule, cfg.Dedup.ReorderRule, cfg.Dedup.PriceRule)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	s := DefaultSettings()
	s.DateLayouts = a.DateFormats
	s.NamePrefixes = a.NamePrefixes
	s.MinValidDate = a.MinValidDate
	s.QuantityBounds = quality.Between(a.QuantityMin, a.QuantityMax)
	s.PriceBounds = quality.Between(a.PriceMin, a.PriceMax)
	s.Thresholds.LookbackDays = a.LookbackDays
	s.Thresholds.Critical = a.CriticalDays
	s.Thresholds.High = a.HighDays
	s.Thresholds.DeadMinAgeDays = a.DeadMinAgeDays
	s.Policy = policy
	s.RuleNames = RuleNames{
		Quantity: cfg.Dedup.QuantityRule,
		Reorder:  cfg.Dedup.ReorderRule,
		Price:    cfg.Dedup.PriceRule,
	}
	return s, s.Validate()
}

// identity deriva la Identity Key con los prefijos configurados.
func (s Settings) identity(name string) string {
	return normalize.IdentityWithPrefixes(name, s.NamePrefixes)
}

// Validate rechaza una configuración incoherente antes de tocar ningún registro.
func (s Settings) Validate() error {
	if err := s.Thresholds.Validate(); err != nil {
		return err
	}
	for _, sys := range []entity.SourceSystem{entity.SourceInventory, entity.SourcePOS, entity.SourceEcommerce} {
		if err := s.Rules(sys).Validate(); err != nil {
			return fmt.Errorf("reglas de %s: %w", sys, err)
		}
	}
	return nil
}

// Rules reglas de calidad de cada sistema de origen.
func (s Settings) Rules(sys entity.SourceSystem) quality.Rules {
	switch sys {
	case entity.SourceInventory:
		return quality.Rules{
			DateLayouts:    s.DateLayouts,
			MinValidDate:   s.MinValidDate,
			OptionalDates:  []string{entity.FieldFirstSeen, entity.FieldLastCountDate},
			RequiredFields: []string{entity.FieldName, entity.FieldQuantity},
			NumericBounds: map[string]quality.Bounds{
				entity.FieldQuantity:     quality.AtLeast(decimal.Zero),
				entity.FieldReorderLevel: quality.AtLeast(decimal.Zero),
				entity.FieldPrice:        s.PriceBounds,
			},
		}
	case entity.SourcePOS:
		r := quality.Rules{
			DateField:      entity.FieldDate,
			DateLayouts:    s.DateLayouts,
			MinValidDate:   s.MinValidDate,
			RequiredFields: []string{entity.FieldDate, entity.FieldName, entity.FieldQuantity, entity.FieldPrice},
			NumericBounds: map[string]quality.Bounds{
				entity.FieldQuantity: s.QuantityBounds,
				entity.FieldPrice:    s.PriceBounds,
			},
		}
		if len(s.PaymentMethods) > 0 {
			r.AllowedValues = map[string][]string{entity.FieldPaymentMethod: s.PaymentMethods}
		}
		return r
	default:
		return quality.Rules{
			DateField:      entity.FieldDate,
			DateLayouts:    s.DateLayouts,
			MinValidDate:   s.MinValidDate,
			RequiredFields: []string{entity.FieldDate, entity.FieldName, entity.FieldQuantity, entity.FieldPrice, entity.FieldStatus},
			NumericBounds: map[string]quality.Bounds{
				entity.FieldQuantity: quality.AtLeast(decimal.Zero),
				entity.FieldPrice:    s.PriceBounds,
			},
			AllowedValues: map[string][]string{entity.FieldStatus: orderStatuses},
		}
	}
}
