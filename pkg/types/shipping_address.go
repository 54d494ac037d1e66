package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ShippingAddress is stored as a jsonb column on orders.
type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

func (s ShippingAddress) Validate() error {
	if strings.TrimSpace(s.Address) == "" {
		return fmt.Errorf("shipping address: missing address")
	}
	if strings.TrimSpace(s.City) == "" {
		return fmt.Errorf("shipping address: missing city")
	}
	if strings.TrimSpace(s.PostalCode) == "" {
		return fmt.Errorf("shipping address: missing postal code")
	}
	if strings.TrimSpace(s.Country) == "" {
		return fmt.Errorf("shipping address: missing country")
	}
	return nil
}

func (s ShippingAddress) Value() (driver.Value, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

func (s *ShippingAddress) Scan(value interface{}) error {
	if value == nil {
		*s = ShippingAddress{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("shipping address: unsupported scan type %T", value)
	}
}
