package catalog

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/chieftain/pkg/enums"
	pkgerrors "github.com/angelmondragon/chieftain/pkg/errors"
	"github.com/angelmondragon/chieftain/pkg/gateway"
	"github.com/angelmondragon/chieftain/pkg/pagination"
)

var sortFields = map[string]bool{"": true, "price": true, "name": true, "ratings": true, "createdAt": true}

// ProductFilter narrows a product listing. Empty fields do not filter.
type ProductFilter struct {
	Categories    []string                 `json:"categories,omitempty"`
	Brands        []string                 `json:"brands,omitempty"`
	MinPrice      *decimal.Decimal         `json:"minPrice,omitempty"`
	MaxPrice      *decimal.Decimal         `json:"maxPrice,omitempty"`
	Conditions    []enums.ProductCondition `json:"conditions,omitempty"`
	Compatibility []string                 `json:"compatibility,omitempty"`
}

// Validate rejects negative or inverted price bounds and unknown conditions.
func (f ProductFilter) Validate() error {
	details := map[string]string{}
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		details["minPrice"] = "must not be negative"
	}
	if f.MaxPrice != nil && f.MaxPrice.IsNegative() {
		details["maxPrice"] = "must not be negative"
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		details["minPrice"] = "must not exceed maxPrice"
	}
	for _, c := range f.Conditions {
		if !c.IsValid() {
			details["conditions"] = "must be NEW, REFURBISHED or USED"
			break
		}
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product filter").WithDetails(details)
	}
	return nil
}

// FilterFromQuery reads a filter from repeated or comma separated query
// values: category, brand, minPrice, maxPrice, condition, compatibility.
func FilterFromQuery(values url.Values) (ProductFilter, error) {
	f := ProductFilter{
		Categories:    listParam(values, "category"),
		Brands:        listParam(values, "brand"),
		Compatibility: listParam(values, "compatibility"),
	}
	for _, c := range listParam(values, "condition") {
		f.Conditions = append(f.Conditions, enums.ProductCondition(strings.ToUpper(c)))
	}

	details := map[string]string{}
	var err error
	if f.MinPrice, err = decimalParam(values, "minPrice"); err != nil {
		details["minPrice"] = "must be a number"
	}
	if f.MaxPrice, err = decimalParam(values, "maxPrice"); err != nil {
		details["maxPrice"] = "must be a number"
	}
	if len(details) > 0 {
		return ProductFilter{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid product filter").WithDetails(details)
	}
	return f, f.Validate()
}

// PageFromQuery reads page, size, sortBy and sortDir.
func PageFromQuery(values url.Values) (pagination.Params, error) {
	p, err := pagination.Parse(values.Get("page"), values.Get("size"), values.Get("sortBy"), values.Get("sortDir"))
	if err != nil {
		return pagination.Params{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	if !sortFields[p.SortBy] {
		return pagination.Params{}, pkgerrors.New(pkgerrors.CodeValidation, "unsupported sort field").
			WithDetails(map[string]string{"sortBy": "must be one of price, name, ratings, createdAt"})
	}
	return p, nil
}

func (f ProductFilter) query(page pagination.Params, search string) gateway.ProductQuery {
	return gateway.ProductQuery{
		Page:          page.Page,
		Size:          page.Size,
		SortBy:        page.SortBy,
		SortDirection: page.Direction,
		Categories:    f.Categories,
		Brands:        f.Brands,
		MinPrice:      f.MinPrice,
		MaxPrice:      f.MaxPrice,
		Conditions:    f.Conditions,
		Compatibility: f.Compatibility,
		Query:         search,
	}
}

func listParam(values url.Values, key string) []string {
	var out []string
	for _, raw := range values[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func decimalParam(values url.Values, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
