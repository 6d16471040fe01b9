package enums

import "fmt"

// ProductFlag names the merchandising badges a product can carry.
type ProductFlag string

const (
	ProductFlagNew        ProductFlag = "new"
	ProductFlagFeatured   ProductFlag = "featured"
	ProductFlagSale       ProductFlag = "sale"
	ProductFlagBestseller ProductFlag = "bestseller"
)

var validProductFlags = []ProductFlag{
	ProductFlagNew,
	ProductFlagFeatured,
	ProductFlagSale,
	ProductFlagBestseller,
}

// String implements fmt.Stringer.
func (f ProductFlag) String() string {
	return string(f)
}

// IsValid reports whether the value is a known ProductFlag.
func (f ProductFlag) IsValid() bool {
	for _, candidate := range validProductFlags {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseProductFlag converts raw input into a ProductFlag.
func ParseProductFlag(value string) (ProductFlag, error) {
	for _, candidate := range validProductFlags {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product flag %q", value)
}
