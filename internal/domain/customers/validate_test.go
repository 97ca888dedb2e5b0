package customers_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmpny/customerdataservice/internal/domain/customers"
)

func validCustomer() customers.Customer {
	return customers.Customer{
		ID:           "5b0c8f0e-4f5d-4d44-9f57-6f1c3c8d2a11",
		FirstName:    "firstName",
		LastName:     "lastName",
		EmailAddress: "email@email.com",
		PhoneNumber:  "4255252233",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *customers.Customer)
		create bool
		field  string
	}{
		{name: "valid update", mutate: func(c *customers.Customer) {}},
		{name: "valid create without id", mutate: func(c *customers.Customer) { c.ID = "" }, create: true},
		{name: "update without id", mutate: func(c *customers.Customer) { c.ID = "" }, field: "id"},
		{name: "missing first name", mutate: func(c *customers.Customer) { c.FirstName = "" }, field: "firstName"},
		{name: "first name with digits", mutate: func(c *customers.Customer) { c.FirstName = "J0hn" }, field: "firstName"},
		{name: "missing last name", mutate: func(c *customers.Customer) { c.LastName = "" }, create: true, field: "lastName"},
		{name: "last name with digits", mutate: func(c *customers.Customer) { c.LastName = "Smith2" }, field: "lastName"},
		{name: "missing email", mutate: func(c *customers.Customer) { c.EmailAddress = "" }, field: "emailAddress"},
		{name: "email without tld", mutate: func(c *customers.Customer) { c.EmailAddress = "email@email" }, field: "emailAddress"},
		{name: "missing phone", mutate: func(c *customers.Customer) { c.PhoneNumber = "" }, create: true, field: "phoneNumber"},
		{name: "middle name optional", mutate: func(c *customers.Customer) { c.MiddleName = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCustomer()
			tt.mutate(&c)

			err := customers.Validate(c, tt.create)
			if tt.field == "" {
				require.NoError(t, err)
				return
			}

			var verr *customers.ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"email@email.com", true},
		{"first.last+tag@example.co.uk", true},
		{"user@sub.example.org", true},
		{"email@email", false},
		{"", false},
		{"not-an-email", false},
		{"John <john@example.com>", false},
		{"<john@example.com>", false},
		{"john@example.com.", false},
		{"john@co.uk", false},
		{"john@example.notarealtld", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := customers.ValidateEmail(tt.email)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
