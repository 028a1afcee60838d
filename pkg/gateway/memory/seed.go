package memory

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/angelmondragon/chieftain/pkg/enums"
	"github.com/angelmondragon/chieftain/pkg/gateway"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the catalog and user set the in-memory gateway starts with.
type Seed struct {
	Categories []gateway.Category `yaml:"categories"`
	Products   []SeedProduct      `yaml:"products"`
	Users      []SeedUser         `yaml:"users"`
}

type SeedProduct struct {
	ID             string            `yaml:"id"`
	Name           string            `yaml:"name"`
	Description    string            `yaml:"description"`
	Price          string            `yaml:"price"`
	OriginalPrice  string            `yaml:"originalPrice"`
	ImageURL       string            `yaml:"imageUrl"`
	Category       string            `yaml:"category"`
	Brand          string            `yaml:"brand"`
	Compatibility  []string          `yaml:"compatibility"`
	Condition      string            `yaml:"condition"`
	Stock          int               `yaml:"stock"`
	Ratings        float64           `yaml:"ratings"`
	ReviewCount    int               `yaml:"reviewCount"`
	Featured       bool              `yaml:"featured"`
	Specifications map[string]string `yaml:"specifications"`
}

type SeedUser struct {
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"firstName"`
	LastName  string `yaml:"lastName"`
	Phone     string `yaml:"phone"`
	Role      string `yaml:"role"`
}

// DefaultSeed returns the bundled demo catalog.
func DefaultSeed() (Seed, error) {
	return ParseSeed(defaultSeed)
}

// LoadSeedFile reads a seed from disk.
func LoadSeedFile(path string) (Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(raw)
}

func ParseSeed(raw []byte) (Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	return seed, nil
}

func (s Seed) products(now time.Time) ([]gateway.Product, map[string]bool, error) {
	categories := make(map[string]gateway.Category, len(s.Categories))
	for _, c := range s.Categories {
		categories[c.ID] = c
	}

	out := make([]gateway.Product, 0, len(s.Products))
	featured := map[string]bool{}
	for _, sp := range s.Products {
		price, err := decimal.NewFromString(sp.Price)
		if err != nil {
			return nil, nil, fmt.Errorf("product %s: invalid price %q", sp.ID, sp.Price)
		}
		if price.IsNegative() {
			return nil, nil, fmt.Errorf("product %s: negative price", sp.ID)
		}
		if sp.Stock < 0 {
			return nil, nil, fmt.Errorf("product %s: negative stock", sp.ID)
		}
		condition, err := enums.ParseProductCondition(sp.Condition)
		if err != nil {
			return nil, nil, fmt.Errorf("product %s: %w", sp.ID, err)
		}
		category, ok := categories[sp.Category]
		if !ok {
			return nil, nil, fmt.Errorf("product %s: unknown category %q", sp.ID, sp.Category)
		}

		p := gateway.Product{
			ID:             sp.ID,
			Name:           sp.Name,
			Description:    sp.Description,
			Price:          price,
			ImageURL:       sp.ImageURL,
			Category:       category,
			Brand:          sp.Brand,
			Compatibility:  append([]string{}, sp.Compatibility...),
			Condition:      condition,
			Stock:          sp.Stock,
			Ratings:        sp.Ratings,
			ReviewCount:    sp.ReviewCount,
			Specifications: sp.Specifications,
			CreatedAt:      now,
		}
		if sp.OriginalPrice != "" {
			orig, err := decimal.NewFromString(sp.OriginalPrice)
			if err != nil {
				return nil, nil, fmt.Errorf("product %s: invalid original price %q", sp.ID, sp.OriginalPrice)
			}
			p.OriginalPrice = &orig
		}
		if sp.Featured {
			featured[sp.ID] = true
		}
		out = append(out, p)
	}
	return out, featured, nil
}
